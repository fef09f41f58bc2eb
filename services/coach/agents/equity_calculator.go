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
	"math/rand"
	"sort"
	"strings"

	"github.com/HandLabAI/HandCoach/services/coach/cards"
	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

const (
	// Villain combos above this are stride-subsampled to bound enumeration
	// cost. Subsampling is deterministic, so equity stays reproducible.
	maxVillainCombos = 160
	// Preflop equities enumerate villain combos but sample runouts with a
	// fixed seed instead of enumerating C(48,5) boards.
	preflopRunouts    = 200
	preflopRunoutSeed = 1
)

// CalculateEquity computes the hero's exact equity versus the villain's
// range at every street reached, plus the pot-odds arithmetic for streets
// where the hero faced a bet. Numeric fields are deterministic given
// identical inputs; only the beats/loses narrative may come from the LLM,
// and its failure falls back to deterministic labels.
func CalculateEquity(ctx context.Context, client llm.Client, in datatypes.HandInput, ranges datatypes.RangeData) ([]datatypes.EquityData, error) {
	hole, err := heroHole(in)
	if err != nil {
		return nil, fmt.Errorf("equity calculator: %w", err)
	}
	board, err := cards.ParseBoard(in.Board)
	if err != nil {
		return nil, fmt.Errorf("equity calculator: invalid board: %w", err)
	}

	streets := []datatypes.Street{}
	if !in.StreetsPlayed.Flop {
		streets = append(streets, datatypes.StreetPreflop)
	} else {
		for _, s := range datatypes.PostflopStreets {
			if in.StreetsPlayed.Reached(s) {
				streets = append(streets, s)
			}
		}
	}

	out := make([]datatypes.EquityData, 0, len(streets))
	for _, street := range streets {
		streetBoard := board.Through(boardCount(street))
		villainRange := rangeAtStreet(ranges, street).Villain
		combos := villainCombos(villainRange, hole, streetBoard)

		overall, perCombo := equityVsCombos(hole, streetBoard, combos)
		odds := potOddsFor(in, street)

		ed := datatypes.EquityData{
			Street:        street,
			EquityVsRange: overall,
			PotOdds:       odds,
			Decision:      decisionLabel(overall, odds),
		}
		fillSplitEquity(&ed, combos, perCombo)
		fillBeatsLoses(&ed, combos, perCombo)
		out = append(out, ed)
	}

	if client != nil && len(out) > 0 {
		narrateEquity(ctx, client, ranges, &out[len(out)-1])
	}
	return out, nil
}

func boardCount(street datatypes.Street) int {
	switch street {
	case datatypes.StreetFlop:
		return 3
	case datatypes.StreetTurn:
		return 4
	case datatypes.StreetRiver:
		return 5
	}
	return 0
}

func rangeAtStreet(r datatypes.RangeData, street datatypes.Street) datatypes.StreetRanges {
	switch street {
	case datatypes.StreetFlop:
		if r.Flop != nil {
			return *r.Flop
		}
	case datatypes.StreetTurn:
		if r.Turn != nil {
			return *r.Turn
		}
	case datatypes.StreetRiver:
		if r.River != nil {
			return *r.River
		}
	}
	return r.Preflop
}

// villainCombos reconstructs the villain's concrete combos from the range
// record, removing combos blocked by hero or board cards, and subsamples
// deterministically when the range is very wide.
func villainCombos(pr datatypes.PlayerRange, hole [2]cards.Card, board []cards.Card) []cards.Combo {
	dead := append([]cards.Card{hole[0], hole[1]}, board...)
	total := len(cards.AllCombos(dead))
	if total == 0 {
		return nil
	}
	pct := float64(pr.Combos) / float64(total)
	if pct <= 0 {
		pct = 0.15
	}
	combos := cards.TopPercentCombos(pct, dead)
	if len(combos) <= maxVillainCombos {
		return combos
	}
	stride := float64(len(combos)) / float64(maxVillainCombos)
	out := make([]cards.Combo, 0, maxVillainCombos)
	for i := 0; i < maxVillainCombos; i++ {
		out = append(out, combos[int(float64(i)*stride)])
	}
	return out
}

// equityVsCombos is the exact core: for each villain combo, enumerate (or
// for preflop, sample with a fixed seed) the remaining board cards and
// score showdowns with the seven-card evaluator. Ties count half.
func equityVsCombos(hole [2]cards.Card, board []cards.Card, combos []cards.Combo) (float64, []float64) {
	if len(combos) == 0 {
		return 0.5, nil
	}
	perCombo := make([]float64, len(combos))
	sum := 0.0
	for i, vc := range combos {
		eq := comboEquity(hole, vc, board)
		perCombo[i] = eq
		sum += eq
	}
	return sum / float64(len(combos)), perCombo
}

func comboEquity(hole [2]cards.Card, villain cards.Combo, board []cards.Card) float64 {
	dead := []cards.Card{hole[0], hole[1], villain[0], villain[1]}
	dead = append(dead, board...)
	live := cards.Remaining(dead)

	wins, games := 0.0, 0.0
	score := func(full []cards.Card) {
		games++
		h, errH := cards.Eval7([7]cards.Card{hole[0], hole[1], full[0], full[1], full[2], full[3], full[4]})
		v, errV := cards.Eval7([7]cards.Card{villain[0], villain[1], full[0], full[1], full[2], full[3], full[4]})
		if errH != nil || errV != nil {
			games--
			return
		}
		switch {
		case h > v:
			wins++
		case h == v:
			wins += 0.5
		}
	}

	switch len(board) {
	case 5:
		score(board)
	case 4:
		for _, r := range live {
			score(append(board[:4:4], r))
		}
	case 3:
		for i := 0; i < len(live); i++ {
			for j := i + 1; j < len(live); j++ {
				score(append(board[:3:3], live[i], live[j]))
			}
		}
	case 0:
		rng := rand.New(rand.NewSource(preflopRunoutSeed))
		for n := 0; n < preflopRunouts; n++ {
			idx := rng.Perm(len(live))[:5]
			full := make([]cards.Card, 5)
			for k, ix := range idx {
				full[k] = live[ix]
			}
			score(full)
		}
	}
	if games == 0 {
		return 0.5
	}
	return wins / games
}

// potOddsFor finds the bet the hero faced on the street and computes the
// exact arithmetic: equity_needed = to_call / (pot + to_call).
func potOddsFor(in datatypes.HandInput, street datatypes.Street) datatypes.PotOdds {
	pot := in.Pots.ForStreet(street)
	toCall := 0.0
	for _, a := range in.Actions {
		if a.Street != street || strings.EqualFold(a.Actor, in.HeroPosition) {
			continue
		}
		switch strings.ToLower(a.Verb) {
		case "bets", "bet", "raises", "raise":
			toCall = a.Amount
			pot += a.Amount
		}
	}
	odds := datatypes.PotOdds{PotSize: pot, ToCall: toCall}
	if toCall > 0 {
		odds.EquityNeeded = toCall / (pot + toCall)
		odds.Ratio = fmt.Sprintf("%.1f:1", pot/toCall)
	}
	return odds
}

func decisionLabel(equity float64, odds datatypes.PotOdds) string {
	if odds.ToCall <= 0 {
		switch {
		case equity >= 0.60:
			return "bet for value"
		case equity >= 0.45:
			return "check or bet as a mix"
		default:
			return "check"
		}
	}
	edge := equity - odds.EquityNeeded
	switch {
	case edge >= 0.10:
		return "clear call"
	case edge >= 0:
		return "marginal call"
	case edge >= -0.05:
		return "marginal fold"
	default:
		return "clear fold"
	}
}

// fillSplitEquity reports equity against the strongest and weakest thirds
// of the villain range, the value/bluff split.
func fillSplitEquity(ed *datatypes.EquityData, combos []cards.Combo, perCombo []float64) {
	if len(perCombo) < 6 {
		return
	}
	third := len(perCombo) / 3
	vsValue := mean(perCombo[:third])
	vsBluffs := mean(perCombo[len(perCombo)-third:])
	ed.VsValue = &vsValue
	ed.VsBluffs = &vsBluffs
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// fillBeatsLoses derives deterministic beats / loses-to lists from the
// per-combo results.
func fillBeatsLoses(ed *datatypes.EquityData, combos []cards.Combo, perCombo []float64) {
	type scored struct {
		label string
		eq    float64
	}
	byLabel := map[string]scored{}
	for i, c := range combos {
		l := c.Label()
		if prev, ok := byLabel[l]; !ok || perCombo[i] < prev.eq {
			byLabel[l] = scored{label: l, eq: perCombo[i]}
		}
	}
	all := make([]scored, 0, len(byLabel))
	for _, s := range byLabel {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].label < all[j].label })
	for _, s := range all {
		if s.eq >= 0.55 && len(ed.Beats) < 8 {
			ed.Beats = append(ed.Beats, s.label)
		}
		if s.eq <= 0.45 && len(ed.LosesTo) < 8 {
			ed.LosesTo = append(ed.LosesTo, s.label)
		}
	}
}

type equityNarrative struct {
	Beats   []string `json:"beats"`
	LosesTo []string `json:"loses_to"`
}

// narrateEquity lets the model rephrase the beats/loses lists for the
// final street. The numbers are never touched.
func narrateEquity(ctx context.Context, client llm.Client, ranges datatypes.RangeData, ed *datatypes.EquityData) {
	latest := ranges.Latest()
	prompt := fmt.Sprintf(
		"Street: %s\nHero equity vs range: %.3f\nEquity needed: %.3f\nVillain range: %s (%s)",
		ed.Street, ed.EquityVsRange, ed.PotOdds.EquityNeeded, latest.Villain.Description, latest.Villain.Spectrum)
	resp, err := client.Complete(ctx, systemPromptEquityNarrative, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Debug("equity narrative call failed, keeping deterministic lists", "error", err)
		return
	}
	var parsed equityNarrative
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Debug("equity narrative unparseable, keeping deterministic lists", "error", err)
		return
	}
	if len(parsed.Beats) > 0 {
		ed.Beats = parsed.Beats
	}
	if len(parsed.LosesTo) > 0 {
		ed.LosesTo = parsed.LosesTo
	}
}
