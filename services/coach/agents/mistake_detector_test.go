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

func mixedRec(primary, alternative string, pFreq, aFreq float64) datatypes.MixedActionRecommendation {
	m := datatypes.MixedActionRecommendation{
		Primary: datatypes.ActionRecommendation{Action: primary, Frequency: pFreq, Reasoning: "test line"},
	}
	if alternative != "" {
		m.Alternative = &datatypes.ActionRecommendation{Action: alternative, Frequency: aFreq, Reasoning: "test mix"}
	}
	return m
}

func TestDetectMistakesOptimalPlay(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "BTN",
		VillainPosition: "SB",
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
		HeroActions: datatypes.HeroActionLog{
			Preflop: &datatypes.HeroStreetActions{First: "raise"},
			Flop:    &datatypes.HeroStreetActions{First: "bet", FirstSize: 5},
		},
	}
	flopTree := datatypes.DecisionTree{
		VillainChecks: ptrMixed(mixedRec("bet", "check", 0.75, 0.25)),
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: mixedRec("raise", "", 1, 0)},
		Flop:    &flopTree,
	}

	out := DetectMistakes(in, strategy, datatypes.RangeData{}, nil, datatypes.SPRData{})

	require.Len(t, out.Decisions, 2)
	assert.Equal(t, 2, out.OptimalCount)
	assert.Zero(t, out.MistakeCount)
	assert.Zero(t, out.TotalEVLost)
	assert.Empty(t, out.WorstLeak)
}

func TestDetectMistakesBadCall(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "BB", // OOP
		VillainPosition: "BTN",
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
		HeroActions: datatypes.HeroActionLog{
			Flop: &datatypes.HeroStreetActions{First: "check", Response: "call", ResponseSize: 10},
		},
	}
	flopTree := datatypes.DecisionTree{
		InitialAction:   ptrMixed(mixedRec("check", "", 1, 0)),
		VsBetAfterCheck: ptrMixed(mixedRec("fold", "", 1, 0)),
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: mixedRec("raise", "", 1, 0)},
		Flop:    &flopTree,
	}
	equity := []datatypes.EquityData{{
		Street:        datatypes.StreetFlop,
		EquityVsRange: 0.15,
		PotOdds:       datatypes.PotOdds{PotSize: 20, ToCall: 10, EquityNeeded: 10.0 / 30.0},
	}}

	out := DetectMistakes(in, strategy, datatypes.RangeData{}, equity, datatypes.SPRData{Zone: datatypes.ZoneDeep})

	require.Len(t, out.Decisions, 2)
	call := out.Decisions[1]
	assert.Equal(t, datatypes.PlayMistake, call.Verdict)
	assert.Equal(t, datatypes.LeakEquityMiscalc, call.LeakCategory)
	// Shortfall 0.333-0.15 = 0.183, doubled = 0.367 => critical.
	assert.InDelta(t, 0.367, call.EVLost, 0.01)
	assert.Equal(t, datatypes.SeverityCritical, call.Severity)
	assert.Equal(t, datatypes.LeakEquityMiscalc, out.WorstLeak)
	assert.Equal(t, 1, out.Severity.Critical)
}

func TestDetectMistakesMissedValue(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "SB", // OOP
		VillainPosition: "BTN",
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
		HeroActions: datatypes.HeroActionLog{
			Flop: &datatypes.HeroStreetActions{First: "check"},
		},
	}
	flopTree := datatypes.DecisionTree{
		InitialAction: ptrMixed(mixedRec("bet", "", 0.9, 0)),
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: mixedRec("raise", "", 1, 0)},
		Flop:    &flopTree,
	}
	ranges := datatypes.RangeData{
		HeroClass: datatypes.HeroClassification{Tier: datatypes.TierMonster},
	}

	out := DetectMistakes(in, strategy, ranges, nil, datatypes.SPRData{Zone: datatypes.ZoneDeep})

	require.Len(t, out.Decisions, 1)
	m := out.Decisions[0]
	assert.Equal(t, datatypes.PlayMistake, m.Verdict)
	assert.Equal(t, datatypes.LeakPostflopValue, m.LeakCategory)
	assert.InDelta(t, 0.30, m.EVLost, 1e-9)
	assert.Equal(t, datatypes.SeverityCritical, m.Severity)
}

func TestDetectMistakesAcceptableAtMixedNode(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "SB",
		VillainPosition: "BTN",
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
		HeroActions: datatypes.HeroActionLog{
			Flop: &datatypes.HeroStreetActions{First: "check"},
		},
	}
	// A genuine mix: bet 55%, no listed alternative. Checking is a
	// defensible minority line, not a mistake.
	flopTree := datatypes.DecisionTree{
		InitialAction: ptrMixed(mixedRec("bet", "", 0.55, 0)),
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: mixedRec("raise", "", 1, 0)},
		Flop:    &flopTree,
	}

	out := DetectMistakes(in, strategy, datatypes.RangeData{}, nil, datatypes.SPRData{})
	require.Len(t, out.Decisions, 1)
	assert.Equal(t, datatypes.PlayAcceptable, out.Decisions[0].Verdict)
	assert.Zero(t, out.MistakeCount)
}

func TestDetectMistakesSPRLeak(t *testing.T) {
	in := datatypes.HandInput{
		HeroPosition:    "BB",
		VillainPosition: "BTN",
		StreetsPlayed:   datatypes.StreetsPlayed{Flop: true},
		HeroActions: datatypes.HeroActionLog{
			Flop: &datatypes.HeroStreetActions{First: "check", Response: "fold"},
		},
	}
	flopTree := datatypes.DecisionTree{
		InitialAction:   ptrMixed(mixedRec("check", "", 1, 0)),
		VsBetAfterCheck: ptrMixed(mixedRec("call", "", 1, 0)),
	}
	strategy := datatypes.GTOStrategy{
		Preflop: datatypes.PreflopStrategy{InitialAction: mixedRec("raise", "", 1, 0)},
		Flop:    &flopTree,
	}

	out := DetectMistakes(in, strategy, datatypes.RangeData{}, nil,
		datatypes.SPRData{Zone: datatypes.ZonePotCommitted})

	require.Len(t, out.Decisions, 2)
	fold := out.Decisions[1]
	assert.Equal(t, datatypes.PlayMistake, fold.Verdict)
	assert.Equal(t, datatypes.LeakSPRAwareness, fold.LeakCategory)
}

func ptrMixed(m datatypes.MixedActionRecommendation) *datatypes.MixedActionRecommendation {
	return &m
}
