// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// StreetTexture describes the board texture at one street.
type StreetTexture struct {
	Cards         string   `json:"cards"`
	Texture       string   `json:"texture"` // prose label, e.g. "two-tone, connected"
	DrawsPossible []string `json:"draws_possible"`
	ScaryFor      string   `json:"scary_for,omitempty"`
}

// BoardSummary is the boolean digest of the full board.
type BoardSummary struct {
	Paired           bool `json:"paired"`
	FlushPossible    bool `json:"flush_possible"`
	StraightPossible bool `json:"straight_possible"`
	HighCard         bool `json:"high_card"` // T or higher present
}

// BoardAnalysis is the board classifier's output. Per-street fields are
// nil for streets the hero never saw; the classifier must not invent
// texture for an unplayed street.
type BoardAnalysis struct {
	Flop    *StreetTexture `json:"flop,omitempty"`
	Turn    *StreetTexture `json:"turn,omitempty"`
	River   *StreetTexture `json:"river,omitempty"`
	Summary BoardSummary   `json:"summary"`
}

// ForStreet returns the texture for the given postflop street, or nil.
func (b BoardAnalysis) ForStreet(street Street) *StreetTexture {
	switch street {
	case StreetFlop:
		return b.Flop
	case StreetTurn:
		return b.Turn
	case StreetRiver:
		return b.River
	}
	return nil
}
