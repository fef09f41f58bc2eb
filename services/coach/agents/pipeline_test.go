// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

// BTN opens, SB 3-bets, BTN calls. Flop checked through, villain checks
// the turn and hero bets. River never dealt.
func endToEndInput() datatypes.HandInput {
	in := turnHandInput()
	in.HeroActions = datatypes.HeroActionLog{
		Preflop: &datatypes.HeroStreetActions{First: "raise", FirstSize: 2.5, Response: "call", ResponseSize: 9},
		Flop:    &datatypes.HeroStreetActions{First: "check"},
		Turn:    &datatypes.HeroStreetActions{First: "bet", FirstSize: 12},
	}
	return in
}

func TestPipelineEndToEnd(t *testing.T) {
	p := NewPipeline(nil) // all LLM stages run their deterministic fallbacks

	out, err := p.Analyze(context.Background(), endToEndInput())
	require.NoError(t, err)

	assert.Equal(t, "h-1", out.HandID)
	assert.Equal(t, "BTN", out.HeroPosition)

	// Strategy truncated to played streets.
	assert.NotEmpty(t, out.Strategy.Preflop.InitialAction.Primary.Action)
	require.NotNil(t, out.Strategy.Flop)
	require.NotNil(t, out.Strategy.Turn)
	assert.Nil(t, out.Strategy.River, "no river strategy for a hand that ended on the turn")

	// Board analysis mirrors the same invariant.
	require.NotNil(t, out.Board.Flop)
	require.NotNil(t, out.Board.Turn)
	assert.Nil(t, out.Board.River)

	// Decisions cover only points the hero actually faced.
	require.NotEmpty(t, out.Mistakes.Decisions)
	for _, d := range out.Mistakes.Decisions {
		assert.NotEqual(t, datatypes.StreetRiver, d.Street)
	}

	// Hero turned a straight; the canonical classification must say so.
	assert.Equal(t, datatypes.TierMonster, out.HeroClassification.Tier)

	// Output is structurally complete even though LLM stages degraded.
	assert.NotEmpty(t, out.GTOStrategyText)
	assert.NotEmpty(t, out.ExploitDeviation)
	assert.NotZero(t, out.SPR.EffectiveStack)
	assert.NotEmpty(t, out.StructuredData.Equity)
	assert.Contains(t, out.Degraded, StageStrategy)
	assert.Contains(t, out.Degraded, StageAdvantage)
}

func TestPipelinePreflopOnlyHand(t *testing.T) {
	in := datatypes.HandInput{
		HandID:          "h-2",
		HeroCards:       "7d 2c",
		HeroPosition:    "UTG",
		VillainPosition: "BB",
		HeroStack:       100,
		VillainStack:    100,
		Pots:            datatypes.PotSizes{Preflop: 1.5},
		HeroActions: datatypes.HeroActionLog{
			Preflop: &datatypes.HeroStreetActions{First: "fold"},
		},
	}
	p := NewPipeline(nil)
	out, err := p.Analyze(context.Background(), in)
	require.NoError(t, err)

	assert.Nil(t, out.Board.Flop, "no hypothetical flop texture for a preflop fold")
	assert.Nil(t, out.Strategy.Flop)
	assert.Nil(t, out.Strategy.Turn)
	assert.Nil(t, out.Strategy.River)
	assert.NotEmpty(t, out.Strategy.Preflop.InitialAction.Primary.Action)
	for _, d := range out.Mistakes.Decisions {
		assert.Equal(t, datatypes.StreetPreflop, d.Street)
	}
}

func TestPipelineRejectsMalformedInput(t *testing.T) {
	p := NewPipeline(nil)
	_, err := p.Analyze(context.Background(), datatypes.HandInput{
		HeroCards: "zz yy",
		Board:     "Tc 5s Js",
	})
	assert.Error(t, err)

	_, err = p.Analyze(context.Background(), datatypes.HandInput{
		HeroCards: "As Kd",
		Board:     "Tc 5s", // two cards is not a legal board
	})
	assert.Error(t, err)
}

func TestPipelineSurvivesFailingLLM(t *testing.T) {
	p := NewPipeline(failingLLM())
	out, err := p.Analyze(context.Background(), endToEndInput())
	require.NoError(t, err)

	assert.NotEmpty(t, out.Strategy.Preflop.InitialAction.Primary.Action)
	assert.NotEmpty(t, out.GTOStrategyText)
	assert.Contains(t, out.Degraded, StageStrategy)
	assert.Contains(t, out.Degraded, StageNarrative)
}

func TestRenderNarrativeIsDeterministic(t *testing.T) {
	mixed := func(action string) *datatypes.MixedActionRecommendation {
		return &datatypes.MixedActionRecommendation{
			Primary: datatypes.ActionRecommendation{Action: action, Frequency: 1.0, Reasoning: "line"},
		}
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: *mixed("raise")},
		Flop: &datatypes.DecisionTree{
			InitialAction:   mixed("check"),
			VsBetAfterCheck: mixed("call"),
			VsRaiseAfterBet: mixed("fold"),
		},
	}
	mistakes := datatypes.MistakeAnalysis{
		MistakeCount: 2,
		TotalEVLost:  0.5,
		WorstLeak:    "spr_awareness",
		LeakBuckets: map[string]float64{
			"spr_awareness":   0.3,
			"postflop_value":  0.1,
			"range_awareness": 0.1,
		},
	}

	first := renderNarrative(strategy, mistakes)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, renderNarrative(strategy, mistakes))
	}

	// Decision points render in action order, not map order.
	checkIdx := strings.Index(first.GTOStrategy, "flop initial_action")
	callIdx := strings.Index(first.GTOStrategy, "flop vs_bet_after_check")
	foldIdx := strings.Index(first.GTOStrategy, "flop vs_raise_after_bet")
	require.NotEqual(t, -1, checkIdx)
	assert.Less(t, checkIdx, callIdx)
	assert.Less(t, callIdx, foldIdx)

	// Tags lead with the worst leak, then costliest first, name-tied
	// buckets alphabetical.
	assert.Equal(t, []string{"spr_awareness", "postflop_value", "range_awareness"}, first.LearningTags)
}

type recordingObserver struct {
	mu     sync.Mutex
	stages map[string]time.Duration
}

func (r *recordingObserver) StageCompleted(stage string, elapsed time.Duration, degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages == nil {
		r.stages = map[string]time.Duration{}
	}
	r.stages[stage] = elapsed
}

func TestPipelineReportsStageTimings(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(nil)
	p.Observer = obs

	_, err := p.Analyze(context.Background(), endToEndInput())
	require.NoError(t, err)

	for _, stage := range []string{StageBoard, StageSPR, StageRanges, StageEquity, StageAdvantage, StageStrategy, StageMistakes, StageNarrative} {
		_, ok := obs.stages[stage]
		assert.True(t, ok, "missing timing for stage %s", stage)
	}
}
