// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handparse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	seatLineRe   = regexp.MustCompile(`(?im)^Seat\s+(\d+):\s*(\S+)\s*\(\s*\$?(\d+(?:\.\d+)?)(?:\s+in chips)?\s*\)(.*)$`)
	buttonLineRe = regexp.MustCompile(`(?i)Seat\s*#?\s*(\d+)\s+is\s+the\s+button`)
	sbPostRe     = regexp.MustCompile(`(?im)^(\S+?)\s*:\s*posts\s+(?:the\s+)?small blind`)
	summaryTag   = regexp.MustCompile(`(?i)\*\*\*\s*summ?ary\s*\*\*\*`)

	inactiveMarks = []string{"sits out", "sitting out", "is sitting out", "waits for big blind", "will be allowed to play"}
)

// preflopOrder gives position labels in preflop acting order for each
// table size, starting from the seat left of the button's left (UTG for
// full tables). Labels are rotated so the button comes first before
// assignment.
var preflopOrder = map[int][]string{
	2: {"SB/BTN", "BB"},
	3: {"BTN", "SB", "BB"},
	4: {"CO", "BTN", "SB", "BB"},
	5: {"HJ", "CO", "BTN", "SB", "BB"},
	6: {"UTG", "HJ", "CO", "BTN", "SB", "BB"},
	7: {"UTG", "MP", "HJ", "CO", "BTN", "SB", "BB"},
	8: {"UTG", "UTG+1", "MP", "HJ", "CO", "BTN", "SB", "BB"},
	9: {"UTG", "UTG+1", "UTG+2", "MP", "HJ", "CO", "BTN", "SB", "BB"},
}

var positionAliases = map[string]string{
	"DEALER": "BTN", "BUTTON": "BTN", "BU": "BTN", "SB/BTN": "BTN",
	"SMALL BLIND": "SB", "BIG BLIND": "BB",
	"UTG+3": "MP", "LJ": "HJ", "MP1": "MP", "MP2": "MP",
	"CUTOFF": "CO", "HIJACK": "HJ",
}

// NormalizePosition maps site and shorthand labels onto the canonical
// set (UTG, UTG+1, UTG+2, MP, HJ, CO, BTN, SB, BB).
func NormalizePosition(pos string) string {
	p := strings.ToUpper(strings.TrimSpace(pos))
	if mapped, ok := positionAliases[p]; ok {
		return mapped
	}
	return p
}

type seat struct {
	number   int
	name     string
	stack    float64
	inactive bool
}

// parseSeats reads the seat table above the action, with the SUMMARY
// section stripped so its recap seat lines do not double-count.
func parseSeats(raw string) []seat {
	if loc := summaryTag.FindStringIndex(raw); loc != nil {
		raw = raw[:loc[0]]
	}
	var seats []seat
	for _, m := range seatLineRe.FindAllStringSubmatch(raw, -1) {
		num, _ := strconv.Atoi(m[1])
		stack, _ := strconv.ParseFloat(m[3], 64)
		s := seat{number: num, name: m[2], stack: stack}
		tail := strings.ToLower(m[4])
		for _, mark := range inactiveMarks {
			if strings.Contains(tail, mark) {
				s.inactive = true
				break
			}
		}
		seats = append(seats, s)
	}
	// Waiting players also announce themselves on their own lines.
	lower := strings.ToLower(raw)
	for i := range seats {
		name := strings.ToLower(seats[i].name)
		for _, mark := range inactiveMarks {
			if strings.Contains(lower, name+" "+mark) || strings.Contains(lower, name+": "+mark) {
				seats[i].inactive = true
			}
		}
	}
	return seats
}

// InferPositions maps player names to canonical position labels using
// the seat table and the button marker. When the button seat is empty
// or sitting out (a dead button), the button is taken to be the active
// seat before the small-blind poster.
func InferPositions(raw string) map[string]string {
	seats := parseSeats(raw)
	active := make([]seat, 0, len(seats))
	for _, s := range seats {
		if !s.inactive {
			active = append(active, s)
		}
	}
	order, ok := preflopOrder[len(active)]
	if !ok || len(active) < 2 {
		return map[string]string{}
	}

	btnIdx := buttonIndex(raw, active)
	if btnIdx < 0 {
		return map[string]string{}
	}

	labels := labelsAroundButton(order)
	out := make(map[string]string, len(active))
	for i := range active {
		s := active[(btnIdx+i)%len(active)]
		out[s.name] = NormalizePosition(labels[i])
	}
	return out
}

// buttonIndex locates the button within the active seats. Dead-button
// fallback: walk back one active seat from whoever posted the small blind.
func buttonIndex(raw string, active []seat) int {
	if m := buttonLineRe.FindStringSubmatch(raw); m != nil {
		btnSeat, _ := strconv.Atoi(m[1])
		for i, s := range active {
			if s.number == btnSeat {
				return i
			}
		}
	}
	if m := sbPostRe.FindStringSubmatch(raw); m != nil {
		for i, s := range active {
			if s.name == m[1] {
				return (i - 1 + len(active)) % len(active)
			}
		}
	}
	return -1
}

// labelsAroundButton rotates the acting-order labels so the button's
// label comes first, matching the seat walk that starts at the button.
func labelsAroundButton(order []string) []string {
	btn := 0
	for i, l := range order {
		if l == "BTN" || l == "SB/BTN" {
			btn = i
			break
		}
	}
	out := make([]string, len(order))
	for i := range order {
		out[i] = order[(btn+i)%len(order)]
	}
	return out
}

// Stacks returns each seated player's starting stack.
func Stacks(raw string) map[string]float64 {
	out := map[string]float64{}
	for _, s := range parseSeats(raw) {
		out[s.name] = s.stack
	}
	return out
}
