// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// PlayQuality is the tri-state verdict for one decision point.
type PlayQuality string

const (
	PlayOptimal    PlayQuality = "optimal"
	PlayAcceptable PlayQuality = "acceptable"
	PlayMistake    PlayQuality = "mistake"
)

// Severity grades how costly a mistake was.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// Leak category keys. Street-specific fallbacks are derived as
// "<street>_fundamentals" when no specific pattern applies.
const (
	LeakSPRAwareness        = "spr_awareness"
	LeakEquityMiscalc       = "equity_miscalculation"
	LeakRangeAwareness      = "range_awareness"
	LeakPostflopValue       = "postflop_value"
	LeakPostflopBluff       = "postflop_bluff"
	LeakPreflopDiscipline   = "preflop_discipline"
	LeakFallbackSuffix      = "_fundamentals"
)

// DecisionClassification grades one decision point the hero actually faced
// against the GTO recommendation for that point.
type DecisionClassification struct {
	Street         Street                `json:"street"`
	DecisionPoint  string                `json:"decision_point"`
	HeroAction     string                `json:"hero_action"`
	GTOPrimary     ActionRecommendation  `json:"gto_primary"`
	GTOAlternative *ActionRecommendation `json:"gto_alternative,omitempty"`
	Verdict        PlayQuality           `json:"verdict"`
	Reasoning      string                `json:"reasoning"`
	EVLost         float64               `json:"ev_lost"` // in pots, 0 unless mistake
	Severity       Severity              `json:"severity,omitempty"`
	LeakCategory   string                `json:"leak_category,omitempty"`
}

// SeverityBreakdown counts mistakes per severity band.
type SeverityBreakdown struct {
	Minor    int `json:"minor"`
	Moderate int `json:"moderate"`
	Critical int `json:"critical"`
}

// MistakeAnalysis is the mistake detector's aggregate output.
type MistakeAnalysis struct {
	Decisions       []DecisionClassification `json:"decisions"`
	TotalEVLost     float64                  `json:"total_ev_lost"`
	OptimalCount    int                      `json:"optimal_count"`
	AcceptableCount int                      `json:"acceptable_count"`
	MistakeCount    int                      `json:"mistake_count"`
	Severity        SeverityBreakdown        `json:"severity"`
	WorstLeak       string                   `json:"worst_leak,omitempty"`
	LeakBuckets     map[string]float64       `json:"leak_buckets,omitempty"` // category -> EV lost
}
