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

// positionOpenPct maps a seat to the fraction of starting hands it opens.
// Standard six-max / full-ring baselines.
var positionOpenPct = map[string]float64{
	"UTG":   0.12,
	"UTG+1": 0.14,
	"UTG+2": 0.15,
	"MP":    0.16,
	"LJ":    0.18,
	"HJ":    0.22,
	"CO":    0.28,
	"BTN":   0.45,
	"SB":    0.36,
	"BB":    0.60, // defends wide against a single raise
}

const defaultOpenPct = 0.20

// Context adjustments: a 3-bettor's range is a tight subset of an opening
// range; a 4-bettor's tighter still.
const (
	threeBetFactor = 0.35
	fourBetFactor  = 0.30
	// Postflop aggression narrows a range; calling narrows it less.
	narrowOnAggression = 0.45
	narrowOnCall       = 0.70
)

// BuildRanges derives both players' ranges street by street and computes
// the canonical hero classification. Range construction is deterministic;
// the LLM is consulted only to phrase the qualitative descriptions and its
// failure is silently ignored.
func BuildRanges(ctx context.Context, client llm.Client, in datatypes.HandInput, board datatypes.BoardAnalysis) (datatypes.RangeData, error) {
	hole, err := heroHole(in)
	if err != nil {
		return datatypes.RangeData{}, fmt.Errorf("range builder: %w", err)
	}
	dead := []cards.Card{hole[0], hole[1]}
	boardCards, err := cards.ParseMany(in.Board)
	if err != nil {
		return datatypes.RangeData{}, fmt.Errorf("range builder: invalid board: %w", err)
	}
	dead = append(dead, boardCards...)

	heroPct, villainPct := preflopSpectra(in)
	out := datatypes.RangeData{
		Preflop: datatypes.StreetRanges{
			Hero:    buildRange(heroPct, dead, fmt.Sprintf("%s %s range", in.HeroPosition, heroRoleLabel(in))),
			Villain: buildRange(villainPct, dead, fmt.Sprintf("%s %s range", in.VillainPosition, villainRoleLabel(in.VillainContext))),
		},
	}

	// Narrow street by street from the observed action of each player.
	hPct, vPct := heroPct, villainPct
	prev := &out.Preflop
	for _, street := range datatypes.PostflopStreets {
		if !in.StreetsPlayed.Reached(street) {
			break
		}
		hPct *= narrowingFor(in.Actions, street, true, in)
		vPct *= narrowingFor(in.Actions, street, false, in)
		sr := datatypes.StreetRanges{
			Hero:    buildRange(hPct, dead, prev.Hero.Description+", continuing"),
			Villain: buildRange(vPct, dead, prev.Villain.Description+", continuing"),
		}
		switch street {
		case datatypes.StreetFlop:
			out.Flop = &sr
			prev = out.Flop
		case datatypes.StreetTurn:
			out.Turn = &sr
			prev = out.Turn
		case datatypes.StreetRiver:
			out.River = &sr
			prev = out.River
		}
	}

	out.HeroClass = classifyHero(hole, boardCards)

	if client != nil {
		describeRanges(ctx, client, &out)
	}
	return out, nil
}

func heroHole(in datatypes.HandInput) ([2]cards.Card, error) {
	cs, err := cards.ParseMany(in.HeroCards)
	if err != nil {
		return [2]cards.Card{}, fmt.Errorf("invalid hero cards %q: %w", in.HeroCards, err)
	}
	if len(cs) != 2 {
		return [2]cards.Card{}, fmt.Errorf("hero must hold exactly 2 cards, got %d", len(cs))
	}
	return [2]cards.Card{cs[0], cs[1]}, nil
}

// preflopSpectra returns the hero and villain range widths implied by
// position and the preflop action context.
func preflopSpectra(in datatypes.HandInput) (hero, villain float64) {
	hero = openPct(in.HeroPosition)
	villain = openPct(in.VillainPosition)

	switch in.VillainContext {
	case datatypes.VillainFacing3Bet:
		// Villain 3-bet; hero's continuing range is also tighter.
		villain *= threeBetFactor
		hero *= 0.6
	case datatypes.VillainFacing4Bet:
		villain *= fourBetFactor
		hero *= 0.4
	case datatypes.VillainBlindVsBlind:
		hero, villain = 0.45, 0.45
	case datatypes.VillainFacingAction:
		villain *= 0.8
	}
	return hero, villain
}

func openPct(position string) float64 {
	if pct, ok := positionOpenPct[strings.ToUpper(position)]; ok {
		return pct
	}
	return defaultOpenPct
}

// narrowingFor returns the multiplicative range reduction for one player's
// observed action on one street. Aggression narrows hardest, calling less,
// checking through barely.
func narrowingFor(actions []datatypes.Action, street datatypes.Street, hero bool, in datatypes.HandInput) float64 {
	actor := in.VillainPosition
	if hero {
		actor = in.HeroPosition
	}
	factor := 0.95
	for _, a := range actions {
		if a.Street != street || !strings.EqualFold(a.Actor, actor) {
			continue
		}
		switch strings.ToLower(a.Verb) {
		case "bets", "raises", "bet", "raise":
			factor = narrowOnAggression
		case "calls", "call":
			if factor > narrowOnCall {
				factor = narrowOnCall
			}
		}
	}
	return factor
}

func buildRange(pct float64, dead []cards.Card, description string) datatypes.PlayerRange {
	combos := cards.TopPercentCombos(pct, dead)
	return datatypes.PlayerRange{
		Description: description,
		Combos:      len(combos),
		Spectrum:    fmt.Sprintf("top %.0f%%", pct*100),
		Hands:       cards.LabelsFor(combos, 20),
	}
}

func heroRoleLabel(in datatypes.HandInput) string {
	switch in.VillainContext {
	case datatypes.VillainFacing3Bet:
		return "open, then facing 3-bet"
	case datatypes.VillainFacing4Bet:
		return "3-bet, then facing 4-bet"
	case datatypes.VillainBlindVsBlind:
		return "blind-vs-blind"
	default:
		return "opening"
	}
}

func villainRoleLabel(vc datatypes.VillainContext) string {
	switch vc {
	case datatypes.VillainOpenedPot:
		return "opening"
	case datatypes.VillainBlindVsBlind:
		return "blind-vs-blind"
	case datatypes.VillainFacing3Bet:
		return "3-betting"
	case datatypes.VillainFacing4Bet:
		return "4-betting"
	default:
		return "continuing"
	}
}

type rangeNarrative struct {
	HeroDescription    string `json:"hero_description"`
	VillainDescription string `json:"villain_description"`
}

// describeRanges asks the model for better qualitative descriptions of the
// latest-street ranges. Purely cosmetic; any failure keeps the
// deterministic text.
func describeRanges(ctx context.Context, client llm.Client, data *datatypes.RangeData) {
	latest := data.Latest()
	prompt := fmt.Sprintf(
		"Hero range: %s (%s, %d combos, e.g. %s)\nVillain range: %s (%s, %d combos, e.g. %s)",
		latest.Hero.Description, latest.Hero.Spectrum, latest.Hero.Combos, strings.Join(latest.Hero.Hands, " "),
		latest.Villain.Description, latest.Villain.Spectrum, latest.Villain.Combos, strings.Join(latest.Villain.Hands, " "))

	resp, err := client.Complete(ctx, systemPromptRangeNarrative, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Debug("range narrative call failed, keeping deterministic text", "error", err)
		return
	}
	var parsed rangeNarrative
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Debug("range narrative unparseable, keeping deterministic text", "error", err)
		return
	}
	apply := func(sr *datatypes.StreetRanges) {
		if sr == nil {
			return
		}
		if parsed.HeroDescription != "" {
			sr.Hero.Description = parsed.HeroDescription
		}
		if parsed.VillainDescription != "" {
			sr.Villain.Description = parsed.VillainDescription
		}
	}
	switch {
	case data.River != nil:
		apply(data.River)
	case data.Turn != nil:
		apply(data.Turn)
	case data.Flop != nil:
		apply(data.Flop)
	default:
		apply(&data.Preflop)
	}
}
