// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// HandTier is the canonical strength tier for the hero's hand on the
// current board. It is computed once by the range builder and reused by
// every later stage so the same hand is never characterized two ways.
type HandTier string

const (
	TierMonster    HandTier = "MONSTER"
	TierStrong     HandTier = "STRONG"
	TierMarginal   HandTier = "MARGINAL"
	TierDrawStrong HandTier = "DRAW_STRONG"
	TierDrawWeak   HandTier = "DRAW_WEAK"
	TierAir        HandTier = "AIR"
)

// HeroClassification is the unified judgment of the hero's hand strength:
// a 2-axis bucket (made-hand strength x draw strength), a named tier, and
// a percentile within the hero's own range.
type HeroClassification struct {
	Bucket         string   `json:"bucket"` // e.g. "made:two_pair/draw:none"
	Tier           HandTier `json:"tier"`
	Percentile     float64  `json:"percentile"` // 0..1, 1 = nuts
	Interpretation string   `json:"interpretation"`
}

// PlayerRange is one player's estimated range at one street.
type PlayerRange struct {
	Description string `json:"description"`
	Combos      int    `json:"combos"`
	Spectrum    string `json:"spectrum"` // percentile label, e.g. "top 18%"
	// Hands optionally lists the constituent combos, e.g. ["AKs", "QQ"].
	Hands []string `json:"hands,omitempty"`
	// TierDistribution optionally breaks the range down by strength tier.
	TierDistribution map[HandTier]float64 `json:"tier_distribution,omitempty"`
}

// StreetRanges pairs hero and villain range estimates for one street.
type StreetRanges struct {
	Hero    PlayerRange `json:"hero"`
	Villain PlayerRange `json:"villain"`
}

// RangeData is the range builder's output: preflop ranges always, postflop
// ranges only for streets reached, plus the canonical hero classification.
type RangeData struct {
	Preflop   StreetRanges       `json:"preflop"`
	Flop      *StreetRanges      `json:"flop,omitempty"`
	Turn      *StreetRanges      `json:"turn,omitempty"`
	River     *StreetRanges      `json:"river,omitempty"`
	HeroClass HeroClassification `json:"hero_classification"`
}

// Latest returns the ranges at the furthest street reached.
func (r RangeData) Latest() StreetRanges {
	if r.River != nil {
		return *r.River
	}
	if r.Turn != nil {
		return *r.Turn
	}
	if r.Flop != nil {
		return *r.Flop
	}
	return r.Preflop
}
