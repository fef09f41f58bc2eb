// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Leader identifies which player a range or nut advantage belongs to.
type Leader string

const (
	LeaderHero    Leader = "hero"
	LeaderVillain Leader = "villain"
	LeaderEven    Leader = "even"
)

// StreetAdvantage classifies range and nut advantage on one street.
type StreetAdvantage struct {
	RangeLeader Leader  `json:"range_leader"`
	RangePct    float64 `json:"range_pct"` // leader's share of range equity
	NutLeader   Leader  `json:"nut_leader"`
	NutPct      float64 `json:"nut_pct"`
	Reasoning   string  `json:"reasoning"`
	// Shift describes how the advantage moved relative to the prior street.
	// Only populated on turn/river, and only when the leader changed.
	Shift string `json:"shift,omitempty"`
}

// BlockerEffect describes how one of the hero's cards removes strong
// combinations from the villain's range.
type BlockerEffect struct {
	Card            string  `json:"card"`
	BlockedHands    string  `json:"blocked_hands"` // e.g. "nut flush combos"
	CombosRemoved   int     `json:"combos_removed"`
	ImpactNarrative string  `json:"impact,omitempty"`
	Significance    float64 `json:"significance"` // 0..1
}

// AdvantageData is the advantage analyzer's output. Flop is always present
// when the hand went postflop; turn/river mirror StreetsPlayed.
type AdvantageData struct {
	Flop     *StreetAdvantage `json:"flop,omitempty"`
	Turn     *StreetAdvantage `json:"turn,omitempty"`
	River    *StreetAdvantage `json:"river,omitempty"`
	Blockers []BlockerEffect  `json:"blockers,omitempty"`
	// HeroVsRange narrates the hero's specific holding against the
	// villain's range at the latest street.
	HeroVsRange string `json:"hero_vs_range,omitempty"`
}
