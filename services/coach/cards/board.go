// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cards

import (
	"fmt"
	"sort"
	"strings"
)

// Board is a parsed community board: 0, 3, 4 or 5 cards.
type Board struct {
	Cards []Card
}

// ParseBoard parses a board string. Empty input yields an empty board
// (hand ended preflop). Anything other than 0/3/4/5 cards is rejected.
func ParseBoard(s string) (Board, error) {
	cs, err := ParseMany(s)
	if err != nil {
		return Board{}, err
	}
	switch len(cs) {
	case 0, 3, 4, 5:
	default:
		return Board{}, fmt.Errorf("board must have 0, 3, 4 or 5 cards, got %d", len(cs))
	}
	seen := map[Card]bool{}
	for _, c := range cs {
		if seen[c] {
			return Board{}, fmt.Errorf("duplicate board card %s", c)
		}
		seen[c] = true
	}
	return Board{Cards: cs}, nil
}

// Flop returns the first three cards, or nil if the board is empty.
func (b Board) Flop() []Card {
	if len(b.Cards) < 3 {
		return nil
	}
	return b.Cards[:3]
}

// Turn returns the fourth card, or nil.
func (b Board) Turn() *Card {
	if len(b.Cards) < 4 {
		return nil
	}
	c := b.Cards[3]
	return &c
}

// River returns the fifth card, or nil.
func (b Board) River() *Card {
	if len(b.Cards) < 5 {
		return nil
	}
	c := b.Cards[4]
	return &c
}

// Through returns the board truncated to n cards.
func (b Board) Through(n int) []Card {
	if n > len(b.Cards) {
		n = len(b.Cards)
	}
	return b.Cards[:n]
}

// CardString renders cards as a space-separated string.
func CardString(cs []Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// Paired reports whether any rank repeats on the board.
func Paired(cs []Card) bool {
	seen := map[int]bool{}
	for _, c := range cs {
		if seen[c.Rank] {
			return true
		}
		seen[c.Rank] = true
	}
	return false
}

// SuitCounts returns the count of each suit on the board.
func SuitCounts(cs []Card) map[byte]int {
	out := map[byte]int{}
	for _, c := range cs {
		out[c.Suit]++
	}
	return out
}

// MaxSuitCount returns the largest single-suit count.
func MaxSuitCount(cs []Card) int {
	max := 0
	for _, n := range SuitCounts(cs) {
		if n > max {
			max = n
		}
	}
	return max
}

// SortedRanks returns the distinct ranks ascending, treating the ace as
// both high (14) and low (1) for straight detection.
func SortedRanks(cs []Card) []int {
	seen := map[int]bool{}
	for _, c := range cs {
		seen[c.Rank] = true
		if c.Rank == 14 {
			seen[1] = true
		}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// StraightPossible reports whether any three board ranks fit inside a
// five-rank window, meaning some two hole cards complete a straight.
func StraightPossible(cs []Card) bool {
	ranks := SortedRanks(cs)
	if len(ranks) < 3 {
		return false
	}
	for i := 0; i+2 < len(ranks); i++ {
		for j := i + 1; j+1 < len(ranks); j++ {
			for k := j + 1; k < len(ranks); k++ {
				if ranks[k]-ranks[i] <= 4 {
					return true
				}
			}
		}
	}
	return false
}

// HighCardPresent reports whether the board carries a ten or higher.
func HighCardPresent(cs []Card) bool {
	for _, c := range cs {
		if c.IsBroadway() {
			return true
		}
	}
	return false
}
