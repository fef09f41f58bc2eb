// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// StructuredData carries the raw stage outputs for programmatic and UI
// consumption alongside the formatted coaching text.
type StructuredData struct {
	Mistakes   []DecisionClassification `json:"mistakes"`
	Ranges     RangeData                `json:"ranges"`
	Equity     []EquityData             `json:"equity"`
	Advantages AdvantageData            `json:"advantages"`
}

// CoachOutput is the pipeline's end-to-end result. It is always
// structurally complete: stages that failed contribute degraded sections
// and an entry in Degraded, never a missing field.
type CoachOutput struct {
	HandID             string             `json:"hand_id"`
	HeroPosition       string             `json:"hero_position,omitempty"`
	GTOStrategyText    string             `json:"gto_strategy"`
	ExploitDeviation   string             `json:"exploit_deviation"`
	LearningTags       []string           `json:"learning_tag"`
	HeroClassification HeroClassification `json:"hero_classification"`
	SPR                SPRData            `json:"spr"`
	Mistakes           MistakeAnalysis    `json:"mistakes"`
	Strategy           GTOStrategy        `json:"strategy"`
	Board              BoardAnalysis      `json:"board"`
	StructuredData     StructuredData     `json:"structured_data"`
	// Degraded lists stages that fell back or failed, e.g. ["advantage"].
	Degraded []string `json:"degraded,omitempty"`
}
