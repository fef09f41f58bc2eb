// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

// GenerateStrategy produces the GTO decision tree for every street the
// hand actually reached. The prompt is built exclusively from upstream
// structured output and the positions/stacks scenario; the hero's own
// action log is never included, so the recommendation cannot rationalize
// the play under review. On LLM failure or an invalid response the tree is
// synthesized deterministically from the numeric signals, and the degraded
// return is true.
func GenerateStrategy(
	ctx context.Context,
	client llm.Client,
	in datatypes.HandInput,
	board datatypes.BoardAnalysis,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	advantage datatypes.AdvantageData,
	spr datatypes.SPRData,
) (datatypes.GTOStrategy, bool) {
	fallback := fallbackStrategy(in, ranges, equity, advantage, spr)
	if client == nil {
		return fallback, true
	}

	prompt := gtoPrompt(in, board, ranges, equity, advantage, spr)
	resp, err := client.Complete(ctx, systemPromptGTO, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Error("GTO generator LLM call failed, synthesizing fallback strategy", "error", err)
		return fallback, true
	}
	var parsed datatypes.GTOStrategy
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Error("GTO generator response unparseable, synthesizing fallback strategy", "error", err)
		return fallback, true
	}
	if !sanitizeStrategy(&parsed, in) {
		slog.Warn("GTO generator response failed validation, synthesizing fallback strategy")
		return fallback, true
	}
	return parsed, false
}

// gtoPrompt describes the full situation. It deliberately reads nothing
// from in.HeroActions and lists no hero verbs from the action log.
func gtoPrompt(
	in datatypes.HandInput,
	board datatypes.BoardAnalysis,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	advantage datatypes.AdvantageData,
	spr datatypes.SPRData,
) string {
	var b strings.Builder
	position := "in position"
	if in.HeroOutOfPosition() {
		position = "out of position"
	}
	fmt.Fprintf(&b, "Hero: %s holding %s, %s postflop. Villain: %s (%s).\n",
		in.HeroPosition, in.HeroCards, position, in.VillainPosition, in.VillainContext)
	fmt.Fprintf(&b, "Stacks: hero %.1f, villain %.1f, big blind %.2f. Effective stack %.1f.\n",
		in.HeroStack, in.VillainStack, in.BigBlind, spr.EffectiveStack)
	fmt.Fprintf(&b, "Hero hand class: %s, tier %s, percentile %.2f.\n",
		ranges.HeroClass.Bucket, ranges.HeroClass.Tier, ranges.HeroClass.Percentile)
	fmt.Fprintf(&b, "Preflop ranges: hero %s, villain %s.\n",
		ranges.Preflop.Hero.Spectrum, ranges.Preflop.Villain.Spectrum)

	for _, street := range datatypes.PostflopStreets {
		if !in.StreetsPlayed.Reached(street) {
			continue
		}
		fmt.Fprintf(&b, "--- %s ---\n", street)
		if tex := board.ForStreet(street); tex != nil {
			fmt.Fprintf(&b, "Board: %s (%s). Draws: %s.\n", tex.Cards, tex.Texture, strings.Join(tex.DrawsPossible, ", "))
		}
		if eq := equityFor(equity, street); eq != nil {
			fmt.Fprintf(&b, "Hero equity vs range: %.3f. Pot %.2f, to call %.2f, equity needed %.3f.\n",
				eq.EquityVsRange, eq.PotOdds.PotSize, eq.PotOdds.ToCall, eq.PotOdds.EquityNeeded)
		}
		if adv := advantageFor(advantage, street); adv != nil {
			fmt.Fprintf(&b, "Range advantage: %s. Nut advantage: %s.\n", adv.RangeLeader, adv.NutLeader)
		}
		if s := spr.ForStreet(street); s != nil {
			fmt.Fprintf(&b, "SPR %.2f (%s).\n", s.SPR, s.Zone)
		}
	}

	streets := []string{"preflop"}
	for _, s := range datatypes.PostflopStreets {
		if in.StreetsPlayed.Reached(s) {
			streets = append(streets, string(s))
		}
	}
	fmt.Fprintf(&b, "Generate strategy for these streets only: %s.\n", strings.Join(streets, ", "))
	if in.VillainContext == datatypes.VillainFacing3Bet {
		b.WriteString("Preflop, also cover the response to the 3-bet hero faced.\n")
	}
	if in.VillainContext == datatypes.VillainFacing4Bet {
		b.WriteString("Preflop, also cover the response to the 4-bet hero faced.\n")
	}
	return b.String()
}

func equityFor(equity []datatypes.EquityData, street datatypes.Street) *datatypes.EquityData {
	for i := range equity {
		if equity[i].Street == street {
			return &equity[i]
		}
	}
	if len(equity) > 0 {
		return &equity[len(equity)-1]
	}
	return nil
}

func advantageFor(a datatypes.AdvantageData, street datatypes.Street) *datatypes.StreetAdvantage {
	switch street {
	case datatypes.StreetFlop:
		return a.Flop
	case datatypes.StreetTurn:
		return a.Turn
	case datatypes.StreetRiver:
		return a.River
	}
	return nil
}

// sanitizeStrategy enforces the partial-street and mixed-frequency
// contracts on an LLM response. Returns false when the response cannot be
// repaired into a valid tree.
func sanitizeStrategy(s *datatypes.GTOStrategy, in datatypes.HandInput) bool {
	if !in.StreetsPlayed.Flop {
		s.Flop = nil
	}
	if !in.StreetsPlayed.Turn {
		s.Turn = nil
	}
	if !in.StreetsPlayed.River {
		s.River = nil
	}

	if s.Preflop.InitialAction.Primary.Action == "" {
		return false
	}
	normalizeMixed(&s.Preflop.InitialAction)
	if s.Preflop.VsThreeBet != nil {
		normalizeMixed(s.Preflop.VsThreeBet)
	}
	if s.Preflop.VsFourBet != nil {
		normalizeMixed(s.Preflop.VsFourBet)
	}

	for _, street := range datatypes.PostflopStreets {
		tree := s.ForStreet(street)
		if tree == nil {
			if in.StreetsPlayed.Reached(street) {
				return false
			}
			continue
		}
		points := 0
		for _, m := range []*datatypes.MixedActionRecommendation{
			tree.InitialAction, tree.VsBetAfterCheck, tree.VsRaiseAfterBet,
			tree.VillainChecks, tree.VillainBets,
		} {
			if m == nil {
				continue
			}
			if m.Primary.Action == "" {
				return false
			}
			normalizeMixed(m)
			points++
		}
		if points == 0 {
			return false
		}
	}
	return true
}

// normalizeMixed repairs frequencies: the alternative is dropped below the
// floor, the pair is renormalized toward a sum of 1.0, and primary keeps
// the majority.
func normalizeMixed(m *datatypes.MixedActionRecommendation) {
	if m.Primary.Frequency <= 0 {
		m.Primary.Frequency = 1.0
	}
	if m.Alternative == nil {
		m.Primary.Frequency = 1.0
		return
	}
	if m.Alternative.Frequency < datatypes.AlternativeFrequencyFloor {
		m.Alternative = nil
		m.Primary.Frequency = 1.0
		return
	}
	if m.Alternative.Frequency > m.Primary.Frequency {
		m.Primary, *m.Alternative = *m.Alternative, m.Primary
	}
	sum := m.Primary.Frequency + m.Alternative.Frequency
	if sum > 0.95 && sum < 1.05 {
		return
	}
	m.Primary.Frequency /= sum
	m.Alternative.Frequency /= sum
}

// fallbackStrategy synthesizes a conservative tree from the numeric
// signals already computed: bet with range/nut advantage or a strong
// tier, call when equity clears the pot odds, fold otherwise.
func fallbackStrategy(
	in datatypes.HandInput,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	advantage datatypes.AdvantageData,
	spr datatypes.SPRData,
) datatypes.GTOStrategy {
	out := datatypes.GTOStrategy{Preflop: fallbackPreflop(in, ranges)}
	if !in.StreetsPlayed.Flop {
		return out
	}

	oop := in.HeroOutOfPosition()
	for _, street := range datatypes.PostflopStreets {
		if !in.StreetsPlayed.Reached(street) {
			break
		}
		tree := fallbackStreetTree(street, oop, ranges, equity, advantage, spr)
		switch street {
		case datatypes.StreetFlop:
			out.Flop = &tree
		case datatypes.StreetTurn:
			out.Turn = &tree
		case datatypes.StreetRiver:
			out.River = &tree
		}
	}
	return out
}

func fallbackPreflop(in datatypes.HandInput, ranges datatypes.RangeData) datatypes.PreflopStrategy {
	tier := ranges.HeroClass.Tier
	strong := tier == datatypes.TierMonster || tier == datatypes.TierStrong

	open := datatypes.MixedActionRecommendation{
		Primary: datatypes.ActionRecommendation{
			Action:    "raise",
			Sizing:    "2.5bb",
			Frequency: 1.0,
			Reasoning: "standard open for this position and holding",
		},
	}
	if !strong {
		open.Primary.Frequency = 0.7
		open.Alternative = &datatypes.ActionRecommendation{
			Action:    "fold",
			Frequency: 0.3,
			Reasoning: "marginal holding mixes in folds from early positions",
		}
	}

	ps := datatypes.PreflopStrategy{InitialAction: open}
	switch in.VillainContext {
	case datatypes.VillainFacing3Bet:
		ps.VsThreeBet = fallbackDefense(tier, "3-bet")
	case datatypes.VillainFacing4Bet:
		ps.VsFourBet = fallbackDefense(tier, "4-bet")
	}
	return ps
}

func fallbackDefense(tier datatypes.HandTier, vs string) *datatypes.MixedActionRecommendation {
	switch tier {
	case datatypes.TierMonster:
		return &datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "raise", Sizing: "2.2x", Frequency: 0.7,
				Reasoning: fmt.Sprintf("premium holding re-raises the %s for value", vs),
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.3,
				Reasoning: "slow-playing keeps the villain's bluffs in",
			},
		}
	case datatypes.TierStrong:
		return &datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.8,
				Reasoning: fmt.Sprintf("strong holding continues against the %s in position", vs),
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "fold", Frequency: 0.2,
				Reasoning: "folding is acceptable at the bottom of the continue range",
			},
		}
	default:
		return &datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "fold", Frequency: 1.0,
				Reasoning: fmt.Sprintf("holding too weak to continue against the %s", vs),
			},
		}
	}
}

func fallbackStreetTree(
	street datatypes.Street,
	oop bool,
	ranges datatypes.RangeData,
	equity []datatypes.EquityData,
	advantage datatypes.AdvantageData,
	spr datatypes.SPRData,
) datatypes.DecisionTree {
	tier := ranges.HeroClass.Tier
	strong := tier == datatypes.TierMonster || tier == datatypes.TierStrong
	heroAdvantage := false
	if adv := advantageFor(advantage, street); adv != nil {
		heroAdvantage = adv.RangeLeader == datatypes.LeaderHero || adv.NutLeader == datatypes.LeaderHero
	}

	bet := datatypes.MixedActionRecommendation{
		Primary: datatypes.ActionRecommendation{
			Action: "bet", Sizing: "66% pot", Frequency: 0.75,
			Reasoning: "betting leverages hand strength and range advantage",
		},
		Alternative: &datatypes.ActionRecommendation{
			Action: "check", Frequency: 0.25,
			Reasoning: "checking some strong hands protects the checking range",
		},
	}
	check := datatypes.MixedActionRecommendation{
		Primary: datatypes.ActionRecommendation{
			Action: "check", Frequency: 1.0,
			Reasoning: "without advantage or a strong hand, keep the pot controlled",
		},
	}
	if tier == datatypes.TierDrawStrong {
		check.Primary.Frequency = 0.7
		check.Alternative = &datatypes.ActionRecommendation{
			Action: "bet", Sizing: "50% pot", Frequency: 0.3,
			Reasoning: "strong draws semi-bluff at some frequency",
		}
	}

	act := check
	if strong || heroAdvantage {
		act = bet
	}

	defend := fallbackVsBet(street, tier, equity, spr)

	tree := datatypes.DecisionTree{}
	if oop {
		a, d := act, defend
		tree.InitialAction = &a
		tree.VsBetAfterCheck = &d
		if act.Primary.Action == "bet" {
			r := fallbackVsRaise(tier)
			tree.VsRaiseAfterBet = &r
		}
	} else {
		a, d := act, defend
		tree.VillainChecks = &a
		tree.VillainBets = &d
	}
	return tree
}

func fallbackVsBet(street datatypes.Street, tier datatypes.HandTier, equity []datatypes.EquityData, spr datatypes.SPRData) datatypes.MixedActionRecommendation {
	eq := equityFor(equity, street)
	haveOdds := false
	reason := "no equity data available, defaulting to a tight fold"
	if eq != nil {
		needed := eq.PotOdds.EquityNeeded
		if needed == 0 {
			needed = 0.33 // assume a standard bet when none was observed
		}
		haveOdds = eq.EquityVsRange >= needed
		reason = fmt.Sprintf("equity %.2f vs %.2f required by pot odds", eq.EquityVsRange, needed)
	}

	if tier == datatypes.TierMonster {
		return datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "raise", Sizing: "3x", Frequency: 0.7,
				Reasoning: "monster hands raise for value",
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.3,
				Reasoning: "calling disguises hand strength",
			},
		}
	}
	if haveOdds || spr.IsShoveZone && tier != datatypes.TierAir {
		return datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.85, Reasoning: reason,
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "fold", Frequency: 0.15,
				Reasoning: "folding is acceptable against the strongest sizings",
			},
		}
	}
	return datatypes.MixedActionRecommendation{
		Primary: datatypes.ActionRecommendation{
			Action: "fold", Frequency: 1.0, Reasoning: reason,
		},
	}
}

func fallbackVsRaise(tier datatypes.HandTier) datatypes.MixedActionRecommendation {
	switch tier {
	case datatypes.TierMonster:
		return datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "raise", Sizing: "all-in", Frequency: 0.8,
				Reasoning: "monster hands play for stacks against a raise",
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.2,
				Reasoning: "calling keeps worse hands betting again",
			},
		}
	case datatypes.TierStrong, datatypes.TierDrawStrong:
		return datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "call", Frequency: 0.8,
				Reasoning: "strong hands and draws continue against a raise",
			},
			Alternative: &datatypes.ActionRecommendation{
				Action: "fold", Frequency: 0.2,
				Reasoning: "large raises fold out the weakest of this class",
			},
		}
	default:
		return datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{
				Action: "fold", Frequency: 1.0,
				Reasoning: "weak holdings release against a raise",
			},
		}
	}
}
