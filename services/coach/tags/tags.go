// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tags normalizes learning-tag vocabulary into the stable
// snake_case keys the dashboards aggregate on.
package tags

import (
	"regexp"
	"strings"
)

// aliasMap folds known phrasing variants onto one canonical key.
var aliasMap = map[string]string{
	"call 3bet too wide":    "call_3bet_too_wide",
	"call3bet_too_wide":     "call_3bet_too_wide",
	"miss value river":      "miss_value_river",
	"check back frequency":  "check_back_frequency",
	"trip hands management": "trips_management",
	"trip_hands_management": "trips_management",
}

var nonKeyChars = regexp.MustCompile(`[^a-z0-9_]+`)

// Normalize lowercases, snake_cases and de-aliases each tag, dropping
// empties and de-duplicating while preserving order.
func Normalize(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range in {
		raw := strings.ToLower(strings.TrimSpace(t))
		key := strings.Trim(nonKeyChars.ReplaceAllString(raw, "_"), "_")
		norm, ok := aliasMap[raw]
		if !ok {
			if mapped, ok2 := aliasMap[key]; ok2 {
				norm = mapped
			} else {
				norm = key
			}
		}
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
