// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("As")
	require.NoError(t, err)
	assert.Equal(t, 14, c.Rank)
	assert.Equal(t, byte('s'), c.Suit)
	assert.Equal(t, "As", c.String())

	// Case-insensitive on both characters.
	c, err = Parse("tD")
	require.NoError(t, err)
	assert.Equal(t, 10, c.Rank)
	assert.Equal(t, byte('d'), c.Suit)

	// Digit ranks at both ends of the range.
	c, err = Parse("2s")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Rank)
	assert.Equal(t, "2s", c.String())

	c, err = Parse("9c")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Rank)

	for r := 2; r <= 9; r++ {
		s := string([]byte{byte('0' + r), 'h'})
		c, err := Parse(s)
		require.NoError(t, err, "input %q", s)
		assert.Equal(t, r, c.Rank)
	}

	for _, bad := range []string{"", "A", "1s", "0s", "Ax", "AsK"} {
		_, err := Parse(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseMany(t *testing.T) {
	cs, err := ParseMany("As Kd  Th")
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "Kd", cs[1].String())

	_, err = ParseMany("As zz")
	assert.Error(t, err)
}

func TestDeckAndRemaining(t *testing.T) {
	deck := Deck()
	assert.Len(t, deck, 52)

	dead, err := ParseMany("As Kd")
	require.NoError(t, err)
	rest := Remaining(dead)
	assert.Len(t, rest, 50)
	for _, d := range dead {
		assert.False(t, Contains(rest, d))
	}
}

func TestHandLabel(t *testing.T) {
	mk := func(s string) Card {
		c, err := Parse(s)
		require.NoError(t, err)
		return c
	}
	assert.Equal(t, "QQ", HandLabel(mk("Qs"), mk("Qd")))
	assert.Equal(t, "AKs", HandLabel(mk("Ks"), mk("As")))
	assert.Equal(t, "AKo", HandLabel(mk("Ah"), mk("Ks")))
	assert.Equal(t, "T9s", HandLabel(mk("9c"), mk("Tc")))
}

func TestEval7Ordering(t *testing.T) {
	parse7 := func(s string) [7]Card {
		cs, err := ParseMany(s)
		require.NoError(t, err)
		require.Len(t, cs, 7)
		var out [7]Card
		copy(out[:], cs)
		return out
	}
	flush, err := Eval7(parse7("Ah Kh Qh Jh 9h 2c 3d"))
	require.NoError(t, err)
	pair, err := Eval7(parse7("Ah Ad Qs Jc 9h 2c 3d"))
	require.NoError(t, err)
	assert.Greater(t, flush, pair, "a flush must outrank a pair")
}

func TestParseBoard(t *testing.T) {
	b, err := ParseBoard("")
	require.NoError(t, err)
	assert.Empty(t, b.Cards)

	b, err = ParseBoard("Tc 5s Js Ah")
	require.NoError(t, err)
	assert.Len(t, b.Cards, 4)
	assert.Equal(t, []Card{b.Cards[0], b.Cards[1], b.Cards[2]}, b.Flop())
	require.NotNil(t, b.Turn())
	assert.Equal(t, "Ah", b.Turn().String())
	assert.Nil(t, b.River())

	_, err = ParseBoard("Tc 5s")
	assert.Error(t, err, "two cards is not a legal board")

	_, err = ParseBoard("Tc Tc Js")
	assert.Error(t, err, "duplicate cards rejected")
}

func TestBoardTextureHelpers(t *testing.T) {
	cs, err := ParseMany("Tc Td 2s")
	require.NoError(t, err)
	assert.True(t, Paired(cs))
	assert.Equal(t, 1, MaxSuitCount(cs))

	cs, err = ParseMany("9h 8h 7c")
	require.NoError(t, err)
	assert.False(t, Paired(cs))
	assert.Equal(t, 2, MaxSuitCount(cs))
	assert.True(t, StraightPossible(cs))
	assert.False(t, HighCardPresent(cs))

	// Wheel texture: ace plays low.
	cs, err = ParseMany("Ah 2c 3d")
	require.NoError(t, err)
	assert.True(t, StraightPossible(cs))
}

func TestChenScore(t *testing.T) {
	mk := func(s string) Card {
		c, err := Parse(s)
		require.NoError(t, err)
		return c
	}
	aa := ChenScore(mk("As"), mk("Ad"))
	aks := ChenScore(mk("As"), mk("Ks"))
	t7o := ChenScore(mk("Th"), mk("7c"))
	assert.Equal(t, 20.0, aa)
	assert.Greater(t, aks, t7o)
}

func TestTopPercentCombos(t *testing.T) {
	top := TopPercentCombos(0.05, nil)
	require.NotEmpty(t, top)
	all := AllCombos(nil)
	assert.Len(t, all, 52*51/2)
	assert.InDelta(t, float64(len(all))*0.05, float64(len(top)), 1.0)

	// The strongest hands come first.
	assert.Equal(t, "AA", top[0].Label())

	// Deterministic for repeated calls.
	again := TopPercentCombos(0.05, nil)
	assert.Equal(t, top, again)

	dead, err := ParseMany("As Ad Ac")
	require.NoError(t, err)
	blocked := TopPercentCombos(0.05, dead)
	for _, c := range blocked {
		assert.NotEqual(t, "AA", c.Label())
	}
}
