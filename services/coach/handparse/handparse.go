// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handparse converts raw hand-history text into the pipeline's
// HandInput. It tolerates the text formats of the sites we ingest from
// (ACR, PokerStars, GGPoker, ClubGG, PokerBros); lines it cannot interpret
// are skipped rather than fatal.
package handparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

var (
	stakesStrict = regexp.MustCompile(`-\s*\$?(\d+(?:\.\d+)?)\s*/\s*\$?(\d+(?:\.\d+)?)\s*-`)
	stakesLoose  = regexp.MustCompile(`\$?\s*(\d+(?:\.\d+)?)\s*/\s*\$?\s*(\d+(?:\.\d+)?)`)

	heroCardsRe = regexp.MustCompile(`(?i)Dealt to\s+\S+\s*\[([2-9TJQKA][cdhs])\s+([2-9TJQKA][cdhs])\]`)
	flopRe      = regexp.MustCompile(`(?i)\*\*\*\s*FLOP\s*\*\*\*\s*\[([2-9TJQKA][cdhs])\s+([2-9TJQKA][cdhs])\s+([2-9TJQKA][cdhs])\]`)
	turnRe      = regexp.MustCompile(`(?i)\*\*\*\s*TURN\s*\*\*\*.*?\[([2-9TJQKA][cdhs])\]`)
	riverRe     = regexp.MustCompile(`(?i)\*\*\*\s*RIVER\s*\*\*\*.*?\[([2-9TJQKA][cdhs])\]`)

	siteRe = regexp.MustCompile(`(?i)(americas?\s+cardroom|(?:^|[^a-z])acr(?:$|[^a-z])|pokerstars|ggpoker|clubgg|pokerbros)`)

	tableMaxRe     = regexp.MustCompile(`(?i)(\d+)\s*-\s*max`)
	tablePlayersRe = regexp.MustCompile(`(?i)\b(\d+)\s*players?\b`)

	flopTag     = regexp.MustCompile(`(?i)\*\*\*\s*flop\s*\*\*\*`)
	turnTag     = regexp.MustCompile(`(?i)\*\*\*\s*turn\s*\*\*\*`)
	riverTag    = regexp.MustCompile(`(?i)\*\*\*\s*river\s*\*\*\*`)
	showdownTag = regexp.MustCompile(`(?i)\bshow\s*down|showdown\b`)

	openRe   = regexp.MustCompile(`(?i)\b(hero|you)\s*:\s*(raises|opens)\b`)
	threeBRe = regexp.MustCompile(`(?i)\b(3[- ]?bet|re[- ]?raise)\b`)
	fourBRe  = regexp.MustCompile(`(?i)\b(4[- ]?bet)\b`)

	actionLine = regexp.MustCompile(`(?m)^(\S+?)\s*:\s*(posts|checks|bets|calls|raises|folds)(?:\s+(?:the\s+)?(?:small blind|big blind)?\s*(?:to\s+)?\$?\s*(\d+(?:\.\d+)?))?`)
)

// Parse converts one raw hand history into a HandInput. The hero's hole
// cards are the only hard requirement; everything else degrades to zero
// values the pipeline can live with.
func Parse(handID, raw string) (datatypes.HandInput, error) {
	m := heroCardsRe.FindStringSubmatch(raw)
	if m == nil {
		return datatypes.HandInput{}, fmt.Errorf("handparse: no hero cards in hand %s", handID)
	}
	in := datatypes.HandInput{
		HandID:    handID,
		HeroCards: strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:]) + " " + strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:]),
	}

	in.Board = extractBoard(raw)
	_, bb := Stakes(raw)
	in.BigBlind = bb
	in.TableSize = TableSize(raw)
	in.StreetsPlayed = streetsPlayed(raw)

	positions := InferPositions(raw)
	heroName := "Hero"
	in.HeroPosition = positions[heroName]

	actions, heroLog := parseActions(raw, heroName)
	in.Actions = relabelActors(actions, positions)
	in.HeroActions = heroLog

	villainName := pickVillain(actions, heroName)
	in.VillainPosition = positions[villainName]
	in.VillainContext = villainContext(raw, in.HeroPosition, in.VillainPosition)

	stacks := Stacks(raw)
	in.HeroStack = stacks[heroName]
	in.VillainStack = stacks[villainName]
	in.Pots = estimatePots(actions, in.StreetsPlayed)
	return in, nil
}

func extractBoard(raw string) string {
	parts := []string{}
	if m := flopRe.FindStringSubmatch(raw); m != nil {
		parts = append(parts, normCard(m[1]), normCard(m[2]), normCard(m[3]))
	}
	if m := turnRe.FindStringSubmatch(raw); m != nil {
		parts = append(parts, normCard(m[1]))
	}
	if m := riverRe.FindStringSubmatch(raw); m != nil {
		parts = append(parts, normCard(m[1]))
	}
	return strings.Join(parts, " ")
}

func normCard(c string) string {
	return strings.ToUpper(c[:1]) + strings.ToLower(c[1:])
}

// Stakes extracts small and big blind, preferring the strict header form
// "- $0.25/$0.50 -" and falling back to any "x/y" pair.
func Stakes(raw string) (sb, bb float64) {
	m := stakesStrict.FindStringSubmatch(raw)
	if m == nil {
		m = stakesLoose.FindStringSubmatch(raw)
	}
	if m == nil {
		return 0, 0
	}
	sb, _ = strconv.ParseFloat(m[1], 64)
	bb, _ = strconv.ParseFloat(m[2], 64)
	return sb, bb
}

// Site detects the originating site label.
func Site(raw string) string {
	m := siteRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	val := strings.ToLower(strings.TrimSpace(m[1]))
	switch {
	case strings.Contains(val, "acr") || strings.Contains(val, "americas"):
		return "ACR"
	case val == "pokerstars":
		return "PokerStars"
	case val == "ggpoker":
		return "GGPoker"
	case val == "clubgg":
		return "ClubGG"
	case val == "pokerbros":
		return "PokerBros"
	}
	return val
}

// GameType reports cash or tournament from keyword sniffing.
func GameType(raw string) string {
	s := strings.ToLower(raw)
	for _, w := range []string{"tournament", "mtt", "icm", "players left", "bubble", "payout"} {
		if strings.Contains(s, w) {
			return "tournament"
		}
	}
	return "cash"
}

// TableSize reads "6-max" style markers or an explicit player count.
func TableSize(raw string) int {
	m := tableMaxRe.FindStringSubmatch(raw)
	if m == nil {
		m = tablePlayersRe.FindStringSubmatch(raw)
	}
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// StreetReached reports the deepest point the hand got to, for silver
// row bookkeeping: "showdown", "river", "turn", "flop" or "preflop".
func StreetReached(raw string) string {
	switch {
	case showdownTag.MatchString(raw):
		return "showdown"
	case riverTag.MatchString(raw):
		return "river"
	case turnTag.MatchString(raw):
		return "turn"
	case flopTag.MatchString(raw):
		return "flop"
	}
	return "preflop"
}

func streetsPlayed(raw string) datatypes.StreetsPlayed {
	return datatypes.StreetsPlayed{
		Flop:  flopTag.MatchString(raw),
		Turn:  turnTag.MatchString(raw),
		River: riverTag.MatchString(raw),
	}
}

// parseActions walks the text street by street, collecting the raw action
// log and the hero's per-street first/response pairs.
func parseActions(raw, heroName string) ([]datatypes.Action, datatypes.HeroActionLog) {
	street := datatypes.StreetPreflop
	var actions []datatypes.Action
	log := datatypes.HeroActionLog{}

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case flopTag.MatchString(line):
			street = datatypes.StreetFlop
			continue
		case turnTag.MatchString(line):
			street = datatypes.StreetTurn
			continue
		case riverTag.MatchString(line):
			street = datatypes.StreetRiver
			continue
		}
		m := actionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		actor, verb := m[1], strings.ToLower(m[2])
		amount := 0.0
		if m[3] != "" {
			amount, _ = strconv.ParseFloat(m[3], 64)
		}
		if verb == "posts" {
			continue
		}
		actions = append(actions, datatypes.Action{
			Street: street, Actor: actor, Verb: verb, Amount: amount,
		})
		if actor == heroName {
			recordHeroAction(&log, street, verb, amount)
		}
	}
	return actions, log
}

func recordHeroAction(log *datatypes.HeroActionLog, street datatypes.Street, verb string, amount float64) {
	entry := heroEntry(log, street)
	verb = normalizeVerb(verb)
	if entry.First == "" {
		entry.First = verb
		entry.FirstSize = amount
		return
	}
	entry.Response = verb
	entry.ResponseSize = amount
}

func heroEntry(log *datatypes.HeroActionLog, street datatypes.Street) *datatypes.HeroStreetActions {
	var slot **datatypes.HeroStreetActions
	switch street {
	case datatypes.StreetPreflop:
		slot = &log.Preflop
	case datatypes.StreetFlop:
		slot = &log.Flop
	case datatypes.StreetTurn:
		slot = &log.Turn
	default:
		slot = &log.River
	}
	if *slot == nil {
		*slot = &datatypes.HeroStreetActions{}
	}
	return *slot
}

func normalizeVerb(verb string) string {
	switch verb {
	case "raises":
		return "raise"
	case "bets":
		return "bet"
	case "calls":
		return "call"
	case "checks":
		return "check"
	case "folds":
		return "fold"
	}
	return verb
}

// relabelActors swaps player names for position labels where known, so
// downstream narrowing can match actors against positions.
func relabelActors(actions []datatypes.Action, positions map[string]string) []datatypes.Action {
	out := make([]datatypes.Action, len(actions))
	for i, a := range actions {
		if pos, ok := positions[a.Actor]; ok && pos != "" {
			a.Actor = pos
		}
		out[i] = a
	}
	return out
}

// pickVillain selects the analysis villain: the last non-hero player who
// showed preflop aggression, falling back to the last non-hero actor.
func pickVillain(actions []datatypes.Action, heroName string) string {
	villain := ""
	for _, a := range actions {
		if a.Actor == heroName {
			continue
		}
		if a.Street == datatypes.StreetPreflop && (a.Verb == "raises" || a.Verb == "bets") {
			villain = a.Actor
		}
		if villain == "" && a.Verb != "folds" {
			villain = a.Actor
		}
	}
	return villain
}

func villainContext(raw, heroPos, villainPos string) datatypes.VillainContext {
	blinds := map[string]bool{"SB": true, "BB": true}
	heroOpened := openRe.MatchString(raw)
	switch {
	case blinds[heroPos] && blinds[villainPos]:
		return datatypes.VillainBlindVsBlind
	case fourBRe.MatchString(raw):
		return datatypes.VillainFacing4Bet
	case threeBRe.MatchString(raw) && heroOpened:
		return datatypes.VillainFacing3Bet
	case !heroOpened && villainPos != "":
		return datatypes.VillainOpenedPot
	default:
		return datatypes.VillainFacingAction
	}
}

// estimatePots accumulates street contributions into start-of-street pot
// sizes. "raises to" semantics are approximated as incremental amounts,
// good enough for SPR banding.
func estimatePots(actions []datatypes.Action, played datatypes.StreetsPlayed) datatypes.PotSizes {
	streetTotal := map[datatypes.Street]float64{}
	for _, a := range actions {
		streetTotal[a.Street] += a.Amount
	}
	pots := datatypes.PotSizes{Preflop: 0}
	running := streetTotal[datatypes.StreetPreflop]
	if played.Flop {
		pots.Flop = running
		running += streetTotal[datatypes.StreetFlop]
	}
	if played.Turn {
		pots.Turn = running
		running += streetTotal[datatypes.StreetTurn]
	}
	if played.River {
		pots.River = running
	}
	return pots
}
