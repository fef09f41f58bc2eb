// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// ActionRecommendation is one concrete line at a decision point.
type ActionRecommendation struct {
	Action    string  `json:"action"` // bet, check, call, raise, fold
	Sizing    string  `json:"sizing,omitempty"`
	Frequency float64 `json:"frequency"` // 0..1
	Reasoning string  `json:"reasoning"`
}

// MixedActionRecommendation is the GTO answer for one decision point: a
// mandatory majority line plus an optional secondary mixed-strategy line.
// Alternative is absent (nil) when no secondary line reaches meaningful
// frequency; it is never a zero-frequency placeholder.
type MixedActionRecommendation struct {
	Primary     ActionRecommendation  `json:"primary"`
	Alternative *ActionRecommendation `json:"alternative,omitempty"`
}

// AlternativeFrequencyFloor is the frequency below which a secondary line
// is dropped rather than reported.
const AlternativeFrequencyFloor = 0.10

// PreflopStrategy is the preflop sub-tree: the initial action plus
// responses to a 3-bet / 4-bet when those branches were in play.
type PreflopStrategy struct {
	InitialAction MixedActionRecommendation  `json:"initial_action"`
	VsThreeBet    *MixedActionRecommendation `json:"vs_3bet,omitempty"`
	VsFourBet     *MixedActionRecommendation `json:"vs_4bet,omitempty"`
}

// DecisionTree is the postflop decision tree for one street. Which fields
// are populated depends on whether the hero is out of position (acts
// first) or in position (reacts to the villain).
type DecisionTree struct {
	// Out-of-position decision points.
	InitialAction   *MixedActionRecommendation `json:"initial_action,omitempty"`
	VsBetAfterCheck *MixedActionRecommendation `json:"vs_bet_after_check,omitempty"`
	VsRaiseAfterBet *MixedActionRecommendation `json:"vs_raise_after_bet,omitempty"`
	// In-position decision points.
	VillainChecks *MixedActionRecommendation `json:"villain_checks,omitempty"`
	VillainBets   *MixedActionRecommendation `json:"villain_bets,omitempty"`
}

// DecisionPointOrder is the action order of the DecisionPoints keys: the
// out-of-position points first, then the in-position ones.
var DecisionPointOrder = []string{
	"initial_action",
	"vs_bet_after_check",
	"vs_raise_after_bet",
	"villain_checks",
	"villain_bets",
}

// DecisionPoints returns the populated decision points keyed by name.
func (t DecisionTree) DecisionPoints() map[string]MixedActionRecommendation {
	out := make(map[string]MixedActionRecommendation, 3)
	if t.InitialAction != nil {
		out["initial_action"] = *t.InitialAction
	}
	if t.VsBetAfterCheck != nil {
		out["vs_bet_after_check"] = *t.VsBetAfterCheck
	}
	if t.VsRaiseAfterBet != nil {
		out["vs_raise_after_bet"] = *t.VsRaiseAfterBet
	}
	if t.VillainChecks != nil {
		out["villain_checks"] = *t.VillainChecks
	}
	if t.VillainBets != nil {
		out["villain_bets"] = *t.VillainBets
	}
	return out
}

// GTOStrategy is the strategy generator's decision-tree output. Postflop
// trees exist only for streets the hand actually reached.
type GTOStrategy struct {
	Preflop PreflopStrategy `json:"preflop"`
	Flop    *DecisionTree   `json:"flop,omitempty"`
	Turn    *DecisionTree   `json:"turn,omitempty"`
	River   *DecisionTree   `json:"river,omitempty"`
}

// ForStreet returns the decision tree for the given postflop street.
func (g GTOStrategy) ForStreet(street Street) *DecisionTree {
	switch street {
	case StreetFlop:
		return g.Flop
	case StreetTurn:
		return g.Turn
	case StreetRiver:
		return g.River
	}
	return nil
}
