// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"fmt"
	"strings"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

// EV-lost severity cutoffs, in fractions of the pot.
const (
	evLostCriticalAtLeast = 0.25
	evLostModerateAtLeast = 0.10
)

// Mixed-node threshold: when the primary line runs below this frequency
// the node is a genuine mix and a non-matching reasonable action is
// acceptable rather than a mistake.
const mixedNodeBelow = 0.70

// DetectMistakes grades every decision point the hero actually faced
// against the GTO tree. It is fully deterministic: verdicts come from
// matching the hero's action to the primary/alternative lines, EV-lost
// estimates from the equity and pot-odds numbers already computed, leak
// attribution from fixed pattern rules.
func DetectMistakes(
	in datatypes.HandInput,
	strategy datatypes.GTOStrategy,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	spr datatypes.SPRData,
) datatypes.MistakeAnalysis {
	out := datatypes.MistakeAnalysis{LeakBuckets: map[string]float64{}}

	for _, d := range heroDecisions(in, strategy) {
		cls := classifyDecision(d, in, ranges, equity, spr)
		out.Decisions = append(out.Decisions, cls)
		switch cls.Verdict {
		case datatypes.PlayOptimal:
			out.OptimalCount++
		case datatypes.PlayAcceptable:
			out.AcceptableCount++
		case datatypes.PlayMistake:
			out.MistakeCount++
			out.TotalEVLost += cls.EVLost
			out.LeakBuckets[cls.LeakCategory] += cls.EVLost
			switch cls.Severity {
			case datatypes.SeverityCritical:
				out.Severity.Critical++
			case datatypes.SeverityModerate:
				out.Severity.Moderate++
			default:
				out.Severity.Minor++
			}
		}
	}

	worst, worstEV := "", 0.0
	for leak, ev := range out.LeakBuckets {
		if ev > worstEV || (ev == worstEV && leak < worst) {
			worst, worstEV = leak, ev
		}
	}
	out.WorstLeak = worst
	if len(out.LeakBuckets) == 0 {
		out.LeakBuckets = nil
	}
	return out
}

// heroDecision pairs one hero action with the GTO node that governs it.
type heroDecision struct {
	street     datatypes.Street
	point      string
	heroAction string
	node       datatypes.MixedActionRecommendation
}

// heroDecisions walks the hero's per-street action log and maps each act
// to the matching decision point in the tree. Streets or points the hero
// never faced contribute nothing.
func heroDecisions(in datatypes.HandInput, strategy datatypes.GTOStrategy) []heroDecision {
	var out []heroDecision

	if pre := in.HeroActions.Preflop; pre != nil {
		if pre.First != "" {
			out = append(out, heroDecision{
				street: datatypes.StreetPreflop, point: "initial_action",
				heroAction: pre.First, node: strategy.Preflop.InitialAction,
			})
		}
		if pre.Response != "" {
			switch {
			case in.VillainContext == datatypes.VillainFacing3Bet && strategy.Preflop.VsThreeBet != nil:
				out = append(out, heroDecision{
					street: datatypes.StreetPreflop, point: "vs_3bet",
					heroAction: pre.Response, node: *strategy.Preflop.VsThreeBet,
				})
			case in.VillainContext == datatypes.VillainFacing4Bet && strategy.Preflop.VsFourBet != nil:
				out = append(out, heroDecision{
					street: datatypes.StreetPreflop, point: "vs_4bet",
					heroAction: pre.Response, node: *strategy.Preflop.VsFourBet,
				})
			}
		}
	}

	oop := in.HeroOutOfPosition()
	for _, street := range datatypes.PostflopStreets {
		acts := in.HeroActions.ForStreet(street)
		tree := strategy.ForStreet(street)
		if acts == nil || tree == nil {
			continue
		}
		if acts.First != "" {
			point, node := firstActionNode(oop, tree)
			if node != nil {
				out = append(out, heroDecision{street: street, point: point, heroAction: acts.First, node: *node})
			}
		}
		if acts.Response != "" {
			point, node := responseNode(oop, acts, tree)
			if node != nil {
				out = append(out, heroDecision{street: street, point: point, heroAction: acts.Response, node: *node})
			}
		}
	}
	return out
}

func firstActionNode(oop bool, tree *datatypes.DecisionTree) (string, *datatypes.MixedActionRecommendation) {
	if oop {
		return "initial_action", tree.InitialAction
	}
	return "villain_checks", tree.VillainChecks
}

func responseNode(oop bool, acts *datatypes.HeroStreetActions, tree *datatypes.DecisionTree) (string, *datatypes.MixedActionRecommendation) {
	if oop {
		if acts.First == "bet" {
			return "vs_raise_after_bet", tree.VsRaiseAfterBet
		}
		return "vs_bet_after_check", tree.VsBetAfterCheck
	}
	return "villain_bets", tree.VillainBets
}

func classifyDecision(
	d heroDecision,
	in datatypes.HandInput,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	spr datatypes.SPRData,
) datatypes.DecisionClassification {
	cls := datatypes.DecisionClassification{
		Street:         d.street,
		DecisionPoint:  d.point,
		HeroAction:     d.heroAction,
		GTOPrimary:     d.node.Primary,
		GTOAlternative: d.node.Alternative,
	}

	hero := strings.ToLower(d.heroAction)
	switch {
	case actionMatches(hero, d.node.Primary.Action):
		cls.Verdict = datatypes.PlayOptimal
		cls.Reasoning = fmt.Sprintf("%s matches the primary line (%.0f%% frequency)", hero, d.node.Primary.Frequency*100)
	case d.node.Alternative != nil && actionMatches(hero, d.node.Alternative.Action):
		cls.Verdict = datatypes.PlayOptimal
		cls.Reasoning = fmt.Sprintf("%s matches the mixed alternative (%.0f%% frequency)", hero, d.node.Alternative.Frequency*100)
	case d.node.Primary.Frequency < mixedNodeBelow && passiveVariant(hero, d.node.Primary.Action):
		cls.Verdict = datatypes.PlayAcceptable
		cls.Reasoning = fmt.Sprintf("%s is a defensible minority line at a mixed node (primary %s runs %.0f%%)",
			hero, d.node.Primary.Action, d.node.Primary.Frequency*100)
	default:
		cls.Verdict = datatypes.PlayMistake
		cls.EVLost = estimateEVLost(d, equity, ranges)
		cls.Severity = severityFor(cls.EVLost)
		cls.LeakCategory = leakFor(d, in, equity, ranges, spr)
		cls.Reasoning = mistakeReasoning(d, equity)
	}
	return cls
}

// actionMatches treats bet/raise aggression and check/call passivity at
// the verb level, with call distinct from check (one puts money in).
func actionMatches(hero, gto string) bool {
	hero, gto = strings.ToLower(hero), strings.ToLower(gto)
	if hero == gto {
		return true
	}
	aggressive := map[string]bool{"bet": true, "raise": true, "all-in": true, "shove": true}
	return aggressive[hero] && aggressive[gto]
}

// passiveVariant reports whether hero's action is a more passive cousin of
// the recommended one (check vs bet, call vs raise), which is acceptable
// at genuinely mixed nodes.
func passiveVariant(hero, gto string) bool {
	hero, gto = strings.ToLower(hero), strings.ToLower(gto)
	switch gto {
	case "bet":
		return hero == "check"
	case "raise":
		return hero == "call"
	case "call":
		return hero == "check"
	}
	return false
}

// estimateEVLost grades a mistake in pots from the equity and pot-odds
// numbers. Calling without odds or folding with them costs the equity
// shortfall; a missed value bet or a bad bluff costs a fixed fraction
// scaled by hand tier.
func estimateEVLost(d heroDecision, equity []datatypes.EquityData, ranges datatypes.RangeData) float64 {
	eq := equityFor(equity, d.street)
	hero := strings.ToLower(d.heroAction)
	gto := strings.ToLower(d.node.Primary.Action)

	if eq != nil && eq.PotOdds.EquityNeeded > 0 {
		edge := eq.EquityVsRange - eq.PotOdds.EquityNeeded
		switch {
		case hero == "call" && edge < 0:
			return clampEV(-edge * 2)
		case hero == "fold" && edge > 0:
			return clampEV(edge * 2)
		}
	}

	switch {
	case hero == "check" && gto == "bet":
		if ranges.HeroClass.Tier == datatypes.TierMonster {
			return 0.30
		}
		return 0.15
	case (hero == "bet" || hero == "raise") && gto == "check":
		if ranges.HeroClass.Tier == datatypes.TierAir {
			return 0.20
		}
		return 0.12
	case hero == "fold" && gto != "fold":
		return 0.25
	}
	return 0.08
}

func clampEV(ev float64) float64 {
	if ev < 0.05 {
		return 0.05
	}
	if ev > 1.0 {
		return 1.0
	}
	return ev
}

func severityFor(evLost float64) datatypes.Severity {
	switch {
	case evLost >= evLostCriticalAtLeast:
		return datatypes.SeverityCritical
	case evLost >= evLostModerateAtLeast:
		return datatypes.SeverityModerate
	default:
		return datatypes.SeverityMinor
	}
}

// leakFor attributes the mistake to a named leak pattern, with a
// street-fundamentals fallback when nothing specific applies.
func leakFor(d heroDecision, in datatypes.HandInput, equity []datatypes.EquityData, ranges datatypes.RangeData, spr datatypes.SPRData) string {
	hero := strings.ToLower(d.heroAction)
	gto := strings.ToLower(d.node.Primary.Action)
	eq := equityFor(equity, d.street)

	if d.street == datatypes.StreetPreflop {
		return datatypes.LeakPreflopDiscipline
	}
	committed := spr.Zone == datatypes.ZonePotCommitted || spr.Zone == datatypes.ZoneCommitted
	switch {
	case hero == "fold" && committed:
		return datatypes.LeakSPRAwareness
	case hero == "call" && eq != nil && eq.PotOdds.EquityNeeded > 0 && eq.EquityVsRange < eq.PotOdds.EquityNeeded:
		return datatypes.LeakEquityMiscalc
	case hero == "fold" && eq != nil && eq.PotOdds.EquityNeeded > 0 && eq.EquityVsRange > eq.PotOdds.EquityNeeded:
		return datatypes.LeakEquityMiscalc
	case hero == "check" && gto == "bet" && (ranges.HeroClass.Tier == datatypes.TierMonster || ranges.HeroClass.Tier == datatypes.TierStrong):
		return datatypes.LeakPostflopValue
	case (hero == "bet" || hero == "raise") && ranges.HeroClass.Tier == datatypes.TierAir:
		return datatypes.LeakPostflopBluff
	case (hero == "bet" || hero == "raise") && gto == "check":
		return datatypes.LeakRangeAwareness
	default:
		return string(d.street) + datatypes.LeakFallbackSuffix
	}
}

func mistakeReasoning(d heroDecision, equity []datatypes.EquityData) string {
	eq := equityFor(equity, d.street)
	base := fmt.Sprintf("%s deviates from the %s line (%s)",
		d.heroAction, d.node.Primary.Action, d.node.Primary.Reasoning)
	if eq != nil && eq.PotOdds.EquityNeeded > 0 {
		return fmt.Sprintf("%s; equity %.2f against %.2f required", base, eq.EquityVsRange, eq.PotOdds.EquityNeeded)
	}
	return base
}
