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

	"github.com/HandLabAI/HandCoach/services/coach/cards"
	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

// AnalyzeAdvantage judges range and nut advantage per street. It is the
// most narrative stage: the LLM writes the analysis, constrained to the
// shape contract (leader in {hero, villain, even}, flop always populated
// for a postflop hand, turn/river mirroring StreetsPlayed). On LLM failure
// a deterministic analysis is synthesized from the range spectra, and the
// degraded return is true.
func AnalyzeAdvantage(ctx context.Context, client llm.Client, in datatypes.HandInput, board datatypes.BoardAnalysis, ranges datatypes.RangeData) (datatypes.AdvantageData, bool) {
	if !in.StreetsPlayed.Flop {
		return datatypes.AdvantageData{}, false
	}
	fallback := deterministicAdvantage(in, board, ranges)
	if client == nil {
		return fallback, true
	}

	prompt := advantagePrompt(in, board, ranges)
	resp, err := client.Complete(ctx, systemPromptAdvantage, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Error("advantage analyzer LLM call failed, using deterministic fallback", "error", err)
		return fallback, true
	}
	var parsed datatypes.AdvantageData
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Error("advantage analyzer response unparseable, using deterministic fallback", "error", err)
		return fallback, true
	}
	if !validAdvantage(&parsed, in) {
		slog.Warn("advantage analyzer response violated shape contract, using deterministic fallback")
		return fallback, true
	}
	return parsed, false
}

func advantagePrompt(in datatypes.HandInput, board datatypes.BoardAnalysis, ranges datatypes.RangeData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hero: %s holding %s. Villain: %s (%s).\n",
		in.HeroPosition, in.HeroCards, in.VillainPosition, in.VillainContext)
	fmt.Fprintf(&b, "Hero hand class: %s (%s).\n", ranges.HeroClass.Bucket, ranges.HeroClass.Tier)
	for _, street := range datatypes.PostflopStreets {
		tex := board.ForStreet(street)
		if tex == nil {
			continue
		}
		sr := rangeAtStreet(ranges, street)
		fmt.Fprintf(&b, "%s: %s (%s). Hero range %s; villain range %s.\n",
			street, tex.Cards, tex.Texture, sr.Hero.Spectrum, sr.Villain.Spectrum)
	}
	return b.String()
}

// validAdvantage enforces the shape contract on a parsed LLM response.
func validAdvantage(a *datatypes.AdvantageData, in datatypes.HandInput) bool {
	if a.Flop == nil {
		return false
	}
	if !in.StreetsPlayed.Turn {
		a.Turn = nil
	}
	if !in.StreetsPlayed.River {
		a.River = nil
	}
	for _, s := range []*datatypes.StreetAdvantage{a.Flop, a.Turn, a.River} {
		if s == nil {
			continue
		}
		if !validLeader(s.RangeLeader) || !validLeader(s.NutLeader) {
			return false
		}
	}
	return true
}

func validLeader(l datatypes.Leader) bool {
	switch l {
	case datatypes.LeaderHero, datatypes.LeaderVillain, datatypes.LeaderEven:
		return true
	}
	return false
}

// deterministicAdvantage synthesizes advantage from the range spectra: the
// tighter range holds the range advantage, and on high-card boards the
// preflop aggressor holds the nut advantage.
func deterministicAdvantage(in datatypes.HandInput, board datatypes.BoardAnalysis, ranges datatypes.RangeData) datatypes.AdvantageData {
	out := datatypes.AdvantageData{}
	villainAggressor := in.VillainContext == datatypes.VillainFacing3Bet ||
		in.VillainContext == datatypes.VillainFacing4Bet

	var prev *datatypes.StreetAdvantage
	for _, street := range datatypes.PostflopStreets {
		tex := board.ForStreet(street)
		if tex == nil {
			continue
		}
		sr := rangeAtStreet(ranges, street)
		adv := synthStreetAdvantage(sr, tex, villainAggressor)
		if prev != nil && adv.RangeLeader != prev.RangeLeader {
			adv.Shift = fmt.Sprintf("range advantage moved to %s on the %s", adv.RangeLeader, street)
		}
		rec := adv
		switch street {
		case datatypes.StreetFlop:
			out.Flop = &rec
		case datatypes.StreetTurn:
			out.Turn = &rec
		case datatypes.StreetRiver:
			out.River = &rec
		}
		prev = &rec
	}

	out.Blockers = blockerEffects(in, board)
	out.HeroVsRange = fmt.Sprintf("Hero holds %s: %s", in.HeroCards, ranges.HeroClass.Interpretation)
	return out
}

func synthStreetAdvantage(sr datatypes.StreetRanges, tex *datatypes.StreetTexture, villainAggressor bool) datatypes.StreetAdvantage {
	adv := datatypes.StreetAdvantage{
		RangeLeader: datatypes.LeaderEven,
		RangePct:    0.5,
		NutLeader:   datatypes.LeaderEven,
		NutPct:      0.5,
	}
	// Fewer combos means a stronger average holding.
	switch {
	case sr.Hero.Combos*10 < sr.Villain.Combos*8:
		adv.RangeLeader = datatypes.LeaderHero
		adv.RangePct = 0.55
	case sr.Villain.Combos*10 < sr.Hero.Combos*8:
		adv.RangeLeader = datatypes.LeaderVillain
		adv.RangePct = 0.55
	}
	if strings.Contains(tex.Texture, "high-card") {
		if villainAggressor {
			adv.NutLeader = datatypes.LeaderVillain
		} else {
			adv.NutLeader = datatypes.LeaderHero
		}
		adv.NutPct = 0.6
	}
	adv.Reasoning = fmt.Sprintf("On a %s board the tighter range (%s) holds more of the strong hands.",
		tex.Texture, adv.RangeLeader)
	return adv
}

// blockerEffects checks the hero's cards against the draws the board
// makes possible.
func blockerEffects(in datatypes.HandInput, board datatypes.BoardAnalysis) []datatypes.BlockerEffect {
	hole, err := cards.ParseMany(in.HeroCards)
	if err != nil || len(hole) != 2 {
		return nil
	}
	boardCards, err := cards.ParseMany(in.Board)
	if err != nil {
		return nil
	}

	var out []datatypes.BlockerEffect
	suitCounts := cards.SuitCounts(boardCards)
	for _, h := range hole {
		if suitCounts[h.Suit] >= 3 && h.Rank == 14 {
			out = append(out, datatypes.BlockerEffect{
				Card:            h.String(),
				BlockedHands:    "nut flush combos",
				CombosRemoved:   countSuitCombos(h.Suit, hole, boardCards),
				ImpactNarrative: "holding the nut-flush blocker removes villain's strongest flushes",
				Significance:    0.6,
			})
		}
	}
	return out
}

func countSuitCombos(suit byte, hole, board []cards.Card) int {
	dead := append(append([]cards.Card{}, hole...), board...)
	liveSuited := 0
	for _, c := range cards.Remaining(dead) {
		if c.Suit == suit {
			liveSuited++
		}
	}
	return liveSuited
}
