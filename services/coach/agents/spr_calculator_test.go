// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

func TestCalculateSPRExactFlop(t *testing.T) {
	in := datatypes.HandInput{
		HeroStack:     100,
		VillainStack:  87.5,
		Pots:          datatypes.PotSizes{Preflop: 3, Flop: 10},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out := CalculateSPR(in)

	assert.Equal(t, 87.5, out.EffectiveStack)
	require.NotNil(t, out.Flop)
	assert.Equal(t, 8.75, out.Flop.SPR)
	assert.Equal(t, datatypes.ZoneDeep, out.Flop.Zone)
	assert.Nil(t, out.Turn)
	assert.Nil(t, out.River)
}

func TestCalculateSPRDeterministic(t *testing.T) {
	in := datatypes.HandInput{
		HeroStack:     42.25,
		VillainStack:  61,
		Pots:          datatypes.PotSizes{Preflop: 5, Flop: 12, Turn: 30},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true, Turn: true},
	}
	a := CalculateSPR(in)
	b := CalculateSPR(in)
	assert.Equal(t, a, b)
}

func TestCalculateSPRTurnSubtractsContribution(t *testing.T) {
	// Pot grows 12 -> 30 between flop and turn; each player put in 9.
	in := datatypes.HandInput{
		HeroStack:     100,
		VillainStack:  100,
		Pots:          datatypes.PotSizes{Preflop: 5, Flop: 12, Turn: 30},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true, Turn: true},
	}
	out := CalculateSPR(in)
	require.NotNil(t, out.Turn)
	assert.InDelta(t, 91.0, out.Turn.StackRemaining, 1e-9)
	assert.InDelta(t, 91.0/30.0, out.Turn.SPR, 1e-9)
}

func TestCalculateSPRZones(t *testing.T) {
	cases := []struct {
		spr  float64
		zone datatypes.CommitmentZone
	}{
		{0.5, datatypes.ZonePotCommitted},
		{2.0, datatypes.ZoneCommitted},
		{4.5, datatypes.ZoneMedium},
		{9.0, datatypes.ZoneDeep},
		{20.0, datatypes.ZoneVeryDeep},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.zone, zoneFor(tc.spr), "spr %.1f", tc.spr)
	}
}

func TestCalculateSPRCommitmentFlags(t *testing.T) {
	in := datatypes.HandInput{
		HeroStack:     10,
		VillainStack:  10,
		Pots:          datatypes.PotSizes{Preflop: 4, Flop: 8},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out := CalculateSPR(in)
	// SPR = 10/8 = 1.25: shove zone, cannot fold top pair or overpair.
	assert.True(t, out.IsShoveZone)
	assert.False(t, out.CanFoldTopPair)
	assert.False(t, out.CanFoldOverpair)
	assert.Equal(t, datatypes.ZoneCommitted, out.Zone)

	deep := datatypes.HandInput{
		HeroStack:     200,
		VillainStack:  200,
		Pots:          datatypes.PotSizes{Preflop: 3, Flop: 6},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	dout := CalculateSPR(deep)
	assert.False(t, dout.IsShoveZone)
	assert.True(t, dout.CanFoldTopPair)
	assert.True(t, dout.CanFoldOverpair)
}

func TestCalculateSPRFutureProjection(t *testing.T) {
	in := datatypes.HandInput{
		HeroStack:     50,
		VillainStack:  50,
		Pots:          datatypes.PotSizes{Preflop: 4, Flop: 10},
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out := CalculateSPR(in)
	require.NotNil(t, out.Future)
	// Half pot: bet 5, pot 20, remaining 45 -> 2.25.
	assert.InDelta(t, 2.25, out.Future.AfterHalfPot, 1e-9)
	// Full pot: bet 10, pot 30, remaining 40 -> 4/3.
	assert.InDelta(t, 40.0/30.0, out.Future.AfterFullPot, 1e-9)
}
