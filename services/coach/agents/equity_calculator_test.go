// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

func TestPotOddsArithmetic(t *testing.T) {
	// Pot 10.50 plus a villain bet of 5.00: hero must call 5 into 15.50.
	in := datatypes.HandInput{
		HeroPosition:    "BTN",
		VillainPosition: "SB",
		Pots:            datatypes.PotSizes{Preflop: 3, Flop: 10.50},
		Actions: []datatypes.Action{
			{Street: datatypes.StreetFlop, Actor: "SB", Verb: "bets", Amount: 5.00},
		},
	}
	odds := potOddsFor(in, datatypes.StreetFlop)

	assert.InDelta(t, 15.50, odds.PotSize, 1e-9)
	assert.InDelta(t, 5.00, odds.ToCall, 1e-9)
	assert.InDelta(t, 5.0/20.5, odds.EquityNeeded, 1e-9)
	assert.Equal(t, "3.1:1", odds.Ratio)
}

func TestPotOddsNoBetFaced(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "BTN",
		VillainPosition: "SB",
		Pots:            datatypes.PotSizes{Flop: 8},
	}
	odds := potOddsFor(in, datatypes.StreetFlop)
	assert.Zero(t, odds.ToCall)
	assert.Zero(t, odds.EquityNeeded)
	assert.Empty(t, odds.Ratio)
}

func TestCalculateEquityNutHand(t *testing.T) {
	// Royal flush on the flop: unbeatable against any range.
	in := datatypes.HandInput{
		HeroCards:       "As Ks",
		Board:           "Qs Js Ts",
		HeroPosition:    "BTN",
		VillainPosition: "SB",
		HeroStack:       100,
		VillainStack:    100,
		Pots:            datatypes.PotSizes{Preflop: 3, Flop: 6},
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
	}
	ranges, err := BuildRanges(context.Background(), nil, in, datatypes.BoardAnalysis{})
	require.NoError(t, err)

	out, err := CalculateEquity(context.Background(), nil, in, ranges)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, datatypes.StreetFlop, out[0].Street)
	assert.Greater(t, out[0].EquityVsRange, 0.99)
}

func TestCalculateEquityDeterministic(t *testing.T) {
	in := datatypes.HandInput{
		HeroCards:       "Ah Kd",
		Board:           "Tc 5s Js Ah",
		HeroPosition:    "BTN",
		VillainPosition: "SB",
		HeroStack:       100,
		VillainStack:    100,
		VillainContext:  datatypes.VillainFacing3Bet,
		Pots:            datatypes.PotSizes{Preflop: 18, Flop: 18, Turn: 18},
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true, Turn: true},
	}
	ranges, err := BuildRanges(context.Background(), nil, in, datatypes.BoardAnalysis{})
	require.NoError(t, err)

	a, err := CalculateEquity(context.Background(), nil, in, ranges)
	require.NoError(t, err)
	b, err := CalculateEquity(context.Background(), nil, in, ranges)
	require.NoError(t, err)
	assert.Equal(t, a, b, "equity must be exact and reproducible for identical inputs")

	require.Len(t, a, 2)
	assert.Equal(t, datatypes.StreetFlop, a[0].Street)
	assert.Equal(t, datatypes.StreetTurn, a[1].Street)
	for _, ed := range a {
		assert.GreaterOrEqual(t, ed.EquityVsRange, 0.0)
		assert.LessOrEqual(t, ed.EquityVsRange, 1.0)
	}
}

func TestCalculateEquityRejectsBadInput(t *testing.T) {
	in := datatypes.HandInput{HeroCards: "only-one"}
	_, err := CalculateEquity(context.Background(), nil, in, datatypes.RangeData{})
	assert.Error(t, err)
}
