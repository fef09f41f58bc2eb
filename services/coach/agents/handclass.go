// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"fmt"

	"github.com/HandLabAI/HandCoach/services/coach/cards"
	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

// Made-hand categories, strongest first. These are the first axis of the
// hero classification bucket.
const (
	madeStraightFlush = "straight_flush"
	madeQuads         = "quads"
	madeFullHouse     = "full_house"
	madeFlush         = "flush"
	madeStraight      = "straight"
	madeSet           = "set"
	madeTrips         = "trips"
	madeTwoPair       = "two_pair"
	madeOverpair      = "overpair"
	madeTopPair       = "top_pair"
	madeMiddlePair    = "middle_pair"
	madeWeakPair      = "weak_pair"
	madeHighCard      = "high_card"
)

// Draw categories, the second bucket axis.
const (
	drawFlush   = "flush_draw"
	drawOpen    = "open_ended"
	drawGutshot = "gutshot"
	drawNone    = "none"
)

// classifyHero computes the canonical HeroClassification for the hero's
// exact hand on the given board. It is fully deterministic; every later
// stage reads this one judgment instead of re-deriving hand strength.
func classifyHero(hole [2]cards.Card, board []cards.Card) datatypes.HeroClassification {
	if len(board) == 0 {
		return classifyPreflop(hole)
	}

	made := madeCategory(hole, board)
	draw := drawNone
	if len(board) < 5 {
		draw = drawCategory(hole, board)
	}

	tier := tierFor(made, draw)
	return datatypes.HeroClassification{
		Bucket:         fmt.Sprintf("made:%s/draw:%s", made, draw),
		Tier:           tier,
		Percentile:     percentileFor(made, draw, tier),
		Interpretation: interpret(made, draw, tier),
	}
}

func classifyPreflop(hole [2]cards.Card) datatypes.HeroClassification {
	score := cards.ChenScore(hole[0], hole[1])
	label := cards.HandLabel(hole[0], hole[1])

	var tier datatypes.HandTier
	switch {
	case score >= 12: // AA, KK, QQ, AKs
		tier = datatypes.TierMonster
	case score >= 9: // JJ-99, AK, AQ, KQs
		tier = datatypes.TierStrong
	case score >= 6:
		tier = datatypes.TierMarginal
	default:
		tier = datatypes.TierAir
	}
	pct := score / 20
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	return datatypes.HeroClassification{
		Bucket:         fmt.Sprintf("preflop:%s", label),
		Tier:           tier,
		Percentile:     pct,
		Interpretation: fmt.Sprintf("%s preflop, a %s holding", label, tier),
	}
}

func madeCategory(hole [2]cards.Card, board []cards.Card) string {
	all := append([]cards.Card{hole[0], hole[1]}, board...)

	rankCount := map[int]int{}
	for _, c := range all {
		rankCount[c.Rank]++
	}
	boardTop, boardLow := 0, 15
	boardRanks := map[int]int{}
	for _, c := range board {
		boardRanks[c.Rank]++
		if c.Rank > boardTop {
			boardTop = c.Rank
		}
		if c.Rank < boardLow {
			boardLow = c.Rank
		}
	}
	pocketPair := hole[0].Rank == hole[1].Rank

	flushSuit, hasFlush := flushWith(hole, all)
	_, hasStraight := straightWith(hole, all)
	if hasFlush && hasStraight {
		// Only a true straight flush if five connected cards share the suit.
		if _, sf := straightWith(hole, suited(all, flushSuit)); sf {
			return madeStraightFlush
		}
	}

	trips, pairs := 0, 0
	for _, n := range rankCount {
		switch {
		case n >= 4:
			return madeQuads
		case n == 3:
			trips++
		case n == 2:
			pairs++
		}
	}
	if trips >= 1 && (pairs >= 1 || trips >= 2) {
		return madeFullHouse
	}
	if hasFlush {
		return madeFlush
	}
	if hasStraight {
		return madeStraight
	}
	if trips >= 1 {
		if pocketPair && boardRanks[hole[0].Rank] >= 1 {
			return madeSet
		}
		if rankCount[hole[0].Rank] >= 3 || rankCount[hole[1].Rank] >= 3 {
			return madeTrips
		}
		// Board trips with no hero involvement plays as high card.
		return madeHighCard
	}

	heroPairs := 0
	heroPairRank := 0
	for _, h := range []cards.Card{hole[0], hole[1]} {
		if boardRanks[h.Rank] >= 1 {
			heroPairs++
			if h.Rank > heroPairRank {
				heroPairRank = h.Rank
			}
		}
	}
	if pocketPair && heroPairs == 0 {
		if hole[0].Rank > boardTop {
			return madeOverpair
		}
		if hole[0].Rank > boardLow {
			return madeMiddlePair
		}
		return madeWeakPair
	}
	switch {
	case heroPairs >= 2:
		return madeTwoPair
	case heroPairs == 1:
		switch {
		case heroPairRank == boardTop:
			return madeTopPair
		case heroPairRank > boardLow:
			return madeMiddlePair
		default:
			return madeWeakPair
		}
	}
	return madeHighCard
}

// flushWith reports a five-card flush that uses at least one hole card.
func flushWith(hole [2]cards.Card, all []cards.Card) (byte, bool) {
	counts := cards.SuitCounts(all)
	for suit, n := range counts {
		if n >= 5 && (hole[0].Suit == suit || hole[1].Suit == suit) {
			return suit, true
		}
	}
	return 0, false
}

func suited(cs []cards.Card, suit byte) []cards.Card {
	out := []cards.Card{}
	for _, c := range cs {
		if c.Suit == suit {
			out = append(out, c)
		}
	}
	return out
}

// straightWith reports a five-card straight that uses at least one hole
// card, returning the straight's high rank.
func straightWith(hole [2]cards.Card, all []cards.Card) (int, bool) {
	present := map[int]bool{}
	for _, c := range all {
		present[c.Rank] = true
		if c.Rank == 14 {
			present[1] = true
		}
	}
	holeRanks := map[int]bool{hole[0].Rank: true, hole[1].Rank: true}
	if holeRanks[14] {
		holeRanks[1] = true
	}
	for high := 14; high >= 5; high-- {
		run := true
		usesHole := false
		for r := high; r > high-5; r-- {
			if !present[r] {
				run = false
				break
			}
			if holeRanks[r] {
				usesHole = true
			}
		}
		if run && usesHole {
			return high, true
		}
	}
	return 0, false
}

// drawCategory detects live draws when board cards remain to come.
func drawCategory(hole [2]cards.Card, board []cards.Card) string {
	all := append([]cards.Card{hole[0], hole[1]}, board...)

	for suit, n := range cards.SuitCounts(all) {
		if n == 4 && (hole[0].Suit == suit || hole[1].Suit == suit) {
			return drawFlush
		}
	}

	present := map[int]bool{}
	for _, c := range all {
		present[c.Rank] = true
		if c.Rank == 14 {
			present[1] = true
		}
	}
	holeRanks := map[int]bool{hole[0].Rank: true, hole[1].Rank: true}
	if holeRanks[14] {
		holeRanks[1] = true
	}

	best := drawNone
	for high := 14; high >= 5; high-- {
		have, usesHole := 0, false
		var missing int
		for r := high; r > high-5; r-- {
			if present[r] {
				have++
				if holeRanks[r] {
					usesHole = true
				}
			} else {
				missing = r
			}
		}
		if have != 4 || !usesHole {
			continue
		}
		// Open-ended when the missing card sits at either end of the window
		// and another window shares the four-card run.
		if missing == high || missing == high-4 {
			if missing != 1 && missing != 14 {
				return drawOpen
			}
		}
		best = drawGutshot
	}
	return best
}

var madeTiers = map[string]datatypes.HandTier{
	madeStraightFlush: datatypes.TierMonster,
	madeQuads:         datatypes.TierMonster,
	madeFullHouse:     datatypes.TierMonster,
	madeFlush:         datatypes.TierMonster,
	madeStraight:      datatypes.TierMonster,
	madeSet:           datatypes.TierMonster,
	madeTrips:         datatypes.TierStrong,
	madeTwoPair:       datatypes.TierStrong,
	madeOverpair:      datatypes.TierStrong,
	madeTopPair:       datatypes.TierStrong,
	madeMiddlePair:    datatypes.TierMarginal,
	madeWeakPair:      datatypes.TierMarginal,
	madeHighCard:      datatypes.TierAir,
}

func tierFor(made, draw string) datatypes.HandTier {
	tier := madeTiers[made]
	if tier == datatypes.TierMonster || tier == datatypes.TierStrong {
		return tier
	}
	switch draw {
	case drawFlush, drawOpen:
		return datatypes.TierDrawStrong
	case drawGutshot:
		if tier == datatypes.TierMarginal {
			return tier
		}
		return datatypes.TierDrawWeak
	}
	return tier
}

var madePercentile = map[string]float64{
	madeStraightFlush: 1.0,
	madeQuads:         0.99,
	madeFullHouse:     0.98,
	madeFlush:         0.96,
	madeStraight:      0.94,
	madeSet:           0.93,
	madeTrips:         0.90,
	madeTwoPair:       0.88,
	madeOverpair:      0.84,
	madeTopPair:       0.78,
	madeMiddlePair:    0.55,
	madeWeakPair:      0.42,
	madeHighCard:      0.18,
}

func percentileFor(made, draw string, tier datatypes.HandTier) float64 {
	p := madePercentile[made]
	switch draw {
	case drawFlush, drawOpen:
		if p < 0.55 {
			p = 0.55
		}
	case drawGutshot:
		if p < 0.30 {
			p = 0.30
		}
	}
	return p
}

func interpret(made, draw string, tier datatypes.HandTier) string {
	if draw == drawNone {
		return fmt.Sprintf("%s, a %s holding on this board", made, tier)
	}
	return fmt.Sprintf("%s with a %s, a %s holding on this board", made, draw, tier)
}
