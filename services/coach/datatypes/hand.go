// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the shared type contracts for the hand-analysis
// pipeline. Each stage of the pipeline produces exactly one of these records
// and treats every upstream record as immutable input.
//
// Streets that the hero never reached are modeled as nil pointers, never as
// zero-valued structs: a nil Turn means "the hand ended before the turn",
// and downstream stages must not fabricate analysis for it.
package datatypes

// Street identifies one betting round of a hold'em hand.
type Street string

const (
	StreetPreflop Street = "preflop"
	StreetFlop    Street = "flop"
	StreetTurn    Street = "turn"
	StreetRiver   Street = "river"
)

// PostflopStreets lists the streets that have community cards, in order.
var PostflopStreets = []Street{StreetFlop, StreetTurn, StreetRiver}

// VillainContext describes how the villain for the analysis was determined
// from the preflop action.
type VillainContext string

const (
	VillainOpenedPot    VillainContext = "opened_pot"
	VillainBlindVsBlind VillainContext = "blind_vs_blind"
	VillainFacingAction VillainContext = "facing_action"
	VillainFacing3Bet   VillainContext = "facing_3bet"
	VillainFacing4Bet   VillainContext = "facing_4bet"
)

// StreetsPlayed records which postflop streets the hero actually saw.
type StreetsPlayed struct {
	Flop  bool `json:"flop"`
	Turn  bool `json:"turn"`
	River bool `json:"river"`
}

// Reached reports whether the given street was played. Preflop is always
// played by definition.
func (s StreetsPlayed) Reached(street Street) bool {
	switch street {
	case StreetPreflop:
		return true
	case StreetFlop:
		return s.Flop
	case StreetTurn:
		return s.Turn
	case StreetRiver:
		return s.River
	}
	return false
}

// Action is one chronological entry in the hand's action log.
type Action struct {
	Street Street  `json:"street"`
	Actor  string  `json:"actor"` // player name or position label
	Verb   string  `json:"verb"`  // folds, checks, calls, bets, raises, posts
	Amount float64 `json:"amount,omitempty"`
}

// HeroStreetActions captures what the hero actually did on one street,
// distinguishing a first action (check/bet) from a later response to the
// villain (call/fold/raise).
type HeroStreetActions struct {
	First        string  `json:"first,omitempty"` // check or bet
	FirstSize    float64 `json:"first_size,omitempty"`
	Response     string  `json:"response,omitempty"` // call, fold, raise
	ResponseSize float64 `json:"response_size,omitempty"`
}

// HeroActionLog holds the hero's per-street actual actions. A nil street
// entry means the hero never faced a decision on that street.
type HeroActionLog struct {
	Preflop *HeroStreetActions `json:"preflop,omitempty"`
	Flop    *HeroStreetActions `json:"flop,omitempty"`
	Turn    *HeroStreetActions `json:"turn,omitempty"`
	River   *HeroStreetActions `json:"river,omitempty"`
}

// ForStreet returns the hero's actions for the given street, or nil.
func (l HeroActionLog) ForStreet(street Street) *HeroStreetActions {
	switch street {
	case StreetPreflop:
		return l.Preflop
	case StreetFlop:
		return l.Flop
	case StreetTurn:
		return l.Turn
	case StreetRiver:
		return l.River
	}
	return nil
}

// PotSizes holds the pot at the start of each street, in the hand's
// currency. Streets never reached are zero and guarded by StreetsPlayed.
type PotSizes struct {
	Preflop float64 `json:"preflop"`
	Flop    float64 `json:"flop,omitempty"`
	Turn    float64 `json:"turn,omitempty"`
	River   float64 `json:"river,omitempty"`
}

// ForStreet returns the pot size at the given street.
func (p PotSizes) ForStreet(street Street) float64 {
	switch street {
	case StreetPreflop:
		return p.Preflop
	case StreetFlop:
		return p.Flop
	case StreetTurn:
		return p.Turn
	case StreetRiver:
		return p.River
	}
	return 0
}

// HandInput is the immutable description of one played hand. It is built
// once per analysis request (by the API layer or the hand-history parser)
// and consumed read-only by every pipeline stage.
type HandInput struct {
	HandID          string         `json:"hand_id"`
	HeroCards       string         `json:"hero_cards"`              // e.g. "As Kd"
	VillainCards    string         `json:"villain_cards,omitempty"` // only if shown down
	Board           string         `json:"board,omitempty"`         // e.g. "Tc 5s Js Ah"
	HeroPosition    string         `json:"hero_position"`
	VillainPosition string         `json:"villain_position"`
	TableSize       int            `json:"table_size,omitempty"`
	BigBlind        float64        `json:"big_blind,omitempty"`
	HeroStack       float64        `json:"hero_stack"`
	VillainStack    float64        `json:"villain_stack"`
	Pots            PotSizes       `json:"pots"`
	Actions         []Action       `json:"actions"`
	HeroActions     HeroActionLog  `json:"hero_actions"`
	StreetsPlayed   StreetsPlayed  `json:"streets_played"`
	VillainContext  VillainContext `json:"villain_context,omitempty"`
}

// blindPositions are the seats that act first postflop.
var blindPositions = map[string]bool{"SB": true, "BB": true}

// HeroOutOfPosition reports whether the hero acts first postflop. Players
// in the blinds are out of position against everyone else; blind-vs-blind
// the small blind acts first.
func (h HandInput) HeroOutOfPosition() bool {
	if blindPositions[h.HeroPosition] && blindPositions[h.VillainPosition] {
		return h.HeroPosition == "SB"
	}
	return blindPositions[h.HeroPosition]
}
