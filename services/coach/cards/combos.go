// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cards

import "sort"

// Combo is one concrete two-card starting hand.
type Combo [2]Card

// Label returns the conventional range label for the combo.
func (c Combo) Label() string { return HandLabel(c[0], c[1]) }

// ChenScore is Bill Chen's starting-hand formula. It gives a deterministic
// total order over the 169 starting-hand classes, which we use to turn a
// "top N%" range spectrum into concrete combos.
func ChenScore(a, b Card) float64 {
	if a.Rank < b.Rank {
		a, b = b, a
	}
	score := chenHigh(a.Rank)
	if a.Rank == b.Rank {
		score *= 2
		if score < 5 {
			score = 5
		}
		return score
	}
	if a.Suit == b.Suit {
		score += 2
	}
	gap := a.Rank - b.Rank - 1
	switch {
	case gap == 0:
	case gap == 1:
		score -= 1
	case gap == 2:
		score -= 2
	case gap == 3:
		score -= 4
	default:
		score -= 5
	}
	// Straight bonus for small connected cards.
	if gap <= 1 && a.Rank < 12 {
		score++
	}
	return score
}

func chenHigh(rank int) float64 {
	switch rank {
	case 14:
		return 10
	case 13:
		return 8
	case 12:
		return 7
	case 11:
		return 6
	default:
		return float64(rank) / 2
	}
}

// AllCombos enumerates every two-card combination not blocked by the dead
// cards, in a fixed deterministic order.
func AllCombos(dead []Card) []Combo {
	deck := Remaining(dead)
	out := make([]Combo, 0, len(deck)*(len(deck)-1)/2)
	for i := 0; i < len(deck); i++ {
		for j := i + 1; j < len(deck); j++ {
			out = append(out, Combo{deck[i], deck[j]})
		}
	}
	return out
}

// TopPercentCombos returns the strongest pct (0..1) of live combos, ranked
// by Chen score with a deterministic label tie-break. This is the concrete
// form of a "top 18%" range spectrum.
func TopPercentCombos(pct float64, dead []Card) []Combo {
	if pct <= 0 {
		return nil
	}
	if pct > 1 {
		pct = 1
	}
	combos := AllCombos(dead)
	sort.SliceStable(combos, func(i, j int) bool {
		si, sj := ChenScore(combos[i][0], combos[i][1]), ChenScore(combos[j][0], combos[j][1])
		if si != sj {
			return si > sj
		}
		return combos[i].Label() < combos[j].Label()
	})
	n := int(float64(len(combos)) * pct)
	if n < 1 {
		n = 1
	}
	return combos[:n]
}

// LabelsFor returns the distinct range labels for a combo list, strongest
// first, capped at limit (0 means no cap).
func LabelsFor(combos []Combo, limit int) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range combos {
		l := c.Label()
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
