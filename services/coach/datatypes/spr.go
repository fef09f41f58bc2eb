// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// CommitmentZone is the discrete stack-to-pot-ratio band.
type CommitmentZone string

const (
	ZonePotCommitted CommitmentZone = "POT_COMMITTED"
	ZoneCommitted    CommitmentZone = "COMMITTED"
	ZoneMedium       CommitmentZone = "MEDIUM"
	ZoneDeep         CommitmentZone = "DEEP"
	ZoneVeryDeep     CommitmentZone = "VERY_DEEP"
)

// StreetSPR is the stack-to-pot ratio at the start of one street.
type StreetSPR struct {
	SPR            float64        `json:"spr"`
	PotSize        float64        `json:"pot_size"`
	StackRemaining float64        `json:"stack_remaining"`
	Zone           CommitmentZone `json:"zone"`
}

// FutureSPR projects the SPR after a hypothetical bet on the current
// street, for forward-looking sizing guidance.
type FutureSPR struct {
	AfterHalfPot float64 `json:"after_half_pot"`
	AfterFullPot float64 `json:"after_full_pot"`
}

// SPRData is the SPR calculator's output. It is pure arithmetic over
// HandInput and must be bit-exact for identical stacks and pots.
type SPRData struct {
	EffectiveStack float64    `json:"effective_stack"`
	Flop           *StreetSPR `json:"flop,omitempty"`
	Turn           *StreetSPR `json:"turn,omitempty"`
	River          *StreetSPR `json:"river,omitempty"`

	// Commitment judgment at the latest street reached.
	Zone             CommitmentZone `json:"zone"`
	CanFoldTopPair   bool           `json:"can_fold_top_pair"`
	CanFoldOverpair  bool           `json:"can_fold_overpair"`
	IsShoveZone      bool           `json:"is_shove_zone"`
	PotOddsAfterCall float64        `json:"pot_odds_after_call,omitempty"`
	PercentInvested  float64        `json:"percent_invested"` // of starting effective stack
	SizingGuidance   string         `json:"sizing_guidance"`
	Future           *FutureSPR     `json:"future,omitempty"`
}

// ForStreet returns the SPR record for the given postflop street, or nil.
func (s SPRData) ForStreet(street Street) *StreetSPR {
	switch street {
	case StreetFlop:
		return s.Flop
	case StreetTurn:
		return s.Turn
	case StreetRiver:
		return s.River
	}
	return nil
}
