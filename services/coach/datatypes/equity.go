// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// PotOdds is the exact pot-odds arithmetic for one decision point.
// EquityNeeded = ToCall / (PotSize + ToCall).
type PotOdds struct {
	PotSize      float64 `json:"pot_size"`
	ToCall       float64 `json:"to_call"`
	Ratio        string  `json:"ratio"` // e.g. "3.1:1"
	EquityNeeded float64 `json:"equity_needed"`
}

// EquityData is the equity calculator's snapshot for one street. The
// numeric fields are exact and deterministic; Decision, Beats and LosesTo
// are narrative and may be LLM-derived from the numbers.
type EquityData struct {
	Street        Street   `json:"street"`
	EquityVsRange float64  `json:"equity_vs_range"` // 0..1
	PotOdds       PotOdds  `json:"pot_odds"`
	Decision      string   `json:"decision"` // categorical label
	VsValue       *float64 `json:"vs_value,omitempty"`
	VsBluffs      *float64 `json:"vs_bluffs,omitempty"`
	Beats         []string `json:"beats,omitempty"`
	LosesTo       []string `json:"loses_to,omitempty"`
}
