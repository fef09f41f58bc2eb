// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cards provides the deterministic card and board primitives used
// by the analysis pipeline: parsing "As Td 5c"-style strings, rank/suit
// accessors, deck enumeration, and conversion to the evaluator's card type.
package cards

import (
	"fmt"
	"strings"

	"github.com/paulhankin/poker"
)

// Card is a single playing card. Rank is 2..14 with ace high (14);
// Suit is one of 's', 'h', 'c', 'd'.
type Card struct {
	Rank int
	Suit byte
}

var rankFromChar = map[byte]int{
	'2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'T': 10, 'J': 11, 'Q': 12, 'K': 13, 'A': 14,
}

var rankToChar = map[int]byte{
	2: '2', 3: '3', 4: '4', 5: '5', 6: '6', 7: '7', 8: '8', 9: '9',
	10: 'T', 11: 'J', 12: 'Q', 13: 'K', 14: 'A',
}

// Parse converts a two-character card string like "As" or "td" to a Card.
func Parse(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card string %q", s)
	}
	r := s[0]
	if r >= 'a' && r <= 'z' {
		r &= 0xDF // uppercase letter ranks; digits pass through untouched
	}
	rank, ok := rankFromChar[r]
	if !ok {
		return Card{}, fmt.Errorf("invalid rank in %q", s)
	}
	suit := s[1] | 0x20 // lowercase the suit char
	switch suit {
	case 's', 'h', 'c', 'd':
	default:
		return Card{}, fmt.Errorf("invalid suit in %q", s)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseMany parses a whitespace-separated card list like "As Kd Th".
func ParseMany(s string) ([]Card, error) {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (c Card) String() string {
	return string([]byte{rankToChar[c.Rank], c.Suit})
}

// IsBroadway reports whether the card is a ten or higher.
func (c Card) IsBroadway() bool { return c.Rank >= 10 }

// Deck returns all 52 cards in a fixed order.
func Deck() []Card {
	suits := []byte{'s', 'h', 'c', 'd'}
	out := make([]Card, 0, 52)
	for _, s := range suits {
		for r := 2; r <= 14; r++ {
			out = append(out, Card{Rank: r, Suit: s})
		}
	}
	return out
}

// Contains reports whether cs includes c.
func Contains(cs []Card, c Card) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}

// Remaining returns the deck minus the given dead cards.
func Remaining(dead []Card) []Card {
	out := make([]Card, 0, 52-len(dead))
	for _, c := range Deck() {
		if !Contains(dead, c) {
			out = append(out, c)
		}
	}
	return out
}

// HandLabel returns the conventional starting-hand label for two hole
// cards: "QQ" for pairs, "AKs" suited, "AKo" offsuit. The higher rank
// comes first.
func HandLabel(a, b Card) string {
	if a.Rank < b.Rank {
		a, b = b, a
	}
	if a.Rank == b.Rank {
		return string([]byte{rankToChar[a.Rank], rankToChar[b.Rank]})
	}
	suffix := byte('o')
	if a.Suit == b.Suit {
		suffix = 's'
	}
	return string([]byte{rankToChar[a.Rank], rankToChar[b.Rank], suffix})
}

// ToEval converts a Card to the evaluator's representation. The evaluator
// numbers ranks 1..13 with ace = 1.
func ToEval(c Card) (poker.Card, error) {
	rank := c.Rank
	if rank == 14 {
		rank = 1
	}
	var suit poker.Suit
	switch c.Suit {
	case 's':
		suit = poker.Spade
	case 'h':
		suit = poker.Heart
	case 'c':
		suit = poker.Club
	case 'd':
		suit = poker.Diamond
	}
	return poker.MakeCard(suit, poker.Rank(rank))
}

// Eval7 scores the best five-card hand from seven cards. Higher is
// stronger.
func Eval7(cs [7]Card) (int16, error) {
	var hand [7]poker.Card
	for i, c := range cs {
		pc, err := ToEval(c)
		if err != nil {
			return 0, fmt.Errorf("card %d: %w", i, err)
		}
		hand[i] = pc
	}
	return poker.Eval7(&hand), nil
}
