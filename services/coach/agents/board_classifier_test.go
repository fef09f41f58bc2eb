// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

func failingLLM() llm.Client {
	return llm.CompleteFunc(func(ctx context.Context, system, prompt string, params llm.GenerationParams) (string, error) {
		return "", errors.New("backend down")
	})
}

func TestClassifyBoardPreflopOnly(t *testing.T) {
	in := datatypes.HandInput{Board: "", StreetsPlayed: datatypes.StreetsPlayed{}}
	out, degraded := ClassifyBoard(context.Background(), nil, in)

	assert.False(t, degraded)
	assert.Nil(t, out.Flop)
	assert.Nil(t, out.Turn)
	assert.Nil(t, out.River)
	assert.False(t, out.Summary.Paired)
	assert.False(t, out.Summary.FlushPossible)
}

func TestClassifyBoardDeterministicFlop(t *testing.T) {
	in := datatypes.HandInput{
		Board:         "Tc 5s Js",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out, degraded := ClassifyBoard(context.Background(), nil, in)

	assert.False(t, degraded)
	require.NotNil(t, out.Flop)
	assert.Equal(t, "Tc 5s Js", out.Flop.Cards)
	assert.Contains(t, out.Flop.Texture, "two-tone")
	assert.Contains(t, out.Flop.Texture, "high-card heavy")
	assert.Nil(t, out.Turn)
	assert.Nil(t, out.River)
	assert.False(t, out.Summary.Paired)
	assert.False(t, out.Summary.FlushPossible)
	assert.True(t, out.Summary.HighCard)
}

func TestClassifyBoardPartialStreets(t *testing.T) {
	// Full five-card board string, but the hand ended on the turn.
	in := datatypes.HandInput{
		Board:         "Tc 5s Js Ah 2d",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true, Turn: true},
	}
	out, _ := ClassifyBoard(context.Background(), nil, in)

	require.NotNil(t, out.Flop)
	require.NotNil(t, out.Turn)
	assert.Nil(t, out.River, "river texture must not exist for a hand that ended on the turn")
	assert.Equal(t, "Tc 5s Js Ah", out.Turn.Cards)
}

func TestClassifyBoardIdenticalInputIdenticalOutput(t *testing.T) {
	in := datatypes.HandInput{
		Board:         "9h 8h 7h",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	a, _ := ClassifyBoard(context.Background(), nil, in)
	b, _ := ClassifyBoard(context.Background(), nil, in)
	assert.Equal(t, a, b)
}

func TestClassifyBoardMonotoneConnected(t *testing.T) {
	in := datatypes.HandInput{
		Board:         "9h 8h 7h",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out, _ := ClassifyBoard(context.Background(), nil, in)
	require.NotNil(t, out.Flop)
	assert.Contains(t, out.Flop.Texture, "monotone")
	assert.Contains(t, out.Flop.Texture, "connected")
	assert.True(t, out.Summary.FlushPossible)
	assert.True(t, out.Summary.StraightPossible)
}

func TestClassifyBoardFallbackOnLLMFailure(t *testing.T) {
	// An unparseable board forces the LLM path; a failing LLM must still
	// yield a structurally valid analysis.
	in := datatypes.HandInput{
		Board:         "not real cards",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out, degraded := ClassifyBoard(context.Background(), failingLLM(), in)

	assert.True(t, degraded)
	require.NotNil(t, out.Flop)
	assert.Equal(t, "unable to analyze", out.Flop.Texture)
	assert.NotNil(t, out.Flop.DrawsPossible)
	assert.Empty(t, out.Flop.DrawsPossible)
}

func TestClassifyBoardFallbackOnUnparseableLLMResponse(t *testing.T) {
	junk := llm.CompleteFunc(func(ctx context.Context, system, prompt string, params llm.GenerationParams) (string, error) {
		return "sorry, I cannot help with that", nil
	})
	in := datatypes.HandInput{
		Board:         "Xx Yy Zz",
		StreetsPlayed: datatypes.StreetsPlayed{Flop: true},
	}
	out, degraded := ClassifyBoard(context.Background(), junk, in)
	assert.True(t, degraded)
	require.NotNil(t, out.Flop)
	assert.Equal(t, "unable to analyze", out.Flop.Texture)
}
