// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agents

import (
	"math"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

// Commitment-zone thresholds, in stack-to-pot ratio.
const (
	sprPotCommittedBelow = 1.0
	sprCommittedBelow    = 3.0
	sprMediumBelow       = 6.0
	sprDeepBelow         = 13.0

	sprShoveZoneBelow       = 1.5
	sprCanFoldTopPairAbove  = 4.0
	sprCanFoldOverpairAbove = 7.0
)

// CalculateSPR computes the stack-to-pot ratio picture for the hand. It is
// pure arithmetic over HandInput: no LLM, no context, and bit-exact output
// for identical inputs.
//
// Stack inputs are the chips behind at the start of postflop play. The
// flop SPR divides the effective stack by the flop pot directly; later
// streets subtract half of each pot growth from the effective stack, the
// heads-up share each player put in.
func CalculateSPR(in datatypes.HandInput) datatypes.SPRData {
	eff := math.Min(in.HeroStack, in.VillainStack)
	out := datatypes.SPRData{EffectiveStack: eff}

	remaining := eff
	prevPot := 0.0
	var latest *datatypes.StreetSPR
	for _, street := range datatypes.PostflopStreets {
		if !in.StreetsPlayed.Reached(street) {
			break
		}
		pot := in.Pots.ForStreet(street)
		if pot <= 0 {
			break
		}
		if prevPot > 0 {
			remaining -= (pot - prevPot) / 2
			if remaining < 0 {
				remaining = 0
			}
		}
		prevPot = pot

		rec := datatypes.StreetSPR{
			SPR:            ratio(remaining, pot),
			PotSize:        pot,
			StackRemaining: remaining,
			Zone:           zoneFor(ratio(remaining, pot)),
		}
		switch street {
		case datatypes.StreetFlop:
			out.Flop = &rec
			latest = out.Flop
		case datatypes.StreetTurn:
			out.Turn = &rec
			latest = out.Turn
		case datatypes.StreetRiver:
			out.River = &rec
			latest = out.River
		}
	}

	if latest == nil {
		// Hand ended preflop: judge commitment on the preflop pot.
		pot := in.Pots.Preflop
		spr := ratio(eff, pot)
		out.Zone = zoneFor(spr)
		out.IsShoveZone = pot > 0 && spr < sprShoveZoneBelow
		out.CanFoldTopPair = spr > sprCanFoldTopPairAbove
		out.CanFoldOverpair = spr > sprCanFoldOverpairAbove
		out.SizingGuidance = guidanceFor(out.Zone)
		return out
	}

	spr := latest.SPR
	out.Zone = latest.Zone
	out.IsShoveZone = spr < sprShoveZoneBelow
	out.CanFoldTopPair = spr > sprCanFoldTopPairAbove
	out.CanFoldOverpair = spr > sprCanFoldOverpairAbove
	out.SizingGuidance = guidanceFor(out.Zone)

	pot := latest.PotSize
	rem := latest.StackRemaining
	// Equity needed to call off the remaining stack.
	if rem > 0 {
		out.PotOddsAfterCall = rem / (pot + 2*rem)
	}
	// Hero's share of the pot is half, heads-up.
	if pot/2+rem > 0 {
		out.PercentInvested = (pot / 2) / (pot/2 + rem)
	}
	out.Future = &datatypes.FutureSPR{
		AfterHalfPot: futureSPR(rem, pot, 0.5),
		AfterFullPot: futureSPR(rem, pot, 1.0),
	}
	return out
}

func ratio(stack, pot float64) float64 {
	if pot <= 0 {
		return 0
	}
	return stack / pot
}

// futureSPR projects the SPR after a bet of fraction*pot is made and
// called.
func futureSPR(remaining, pot, fraction float64) float64 {
	bet := fraction * pot
	if bet > remaining {
		bet = remaining
	}
	newPot := pot + 2*bet
	newRemaining := remaining - bet
	if newRemaining < 0 {
		newRemaining = 0
	}
	return ratio(newRemaining, newPot)
}

func zoneFor(spr float64) datatypes.CommitmentZone {
	switch {
	case spr < sprPotCommittedBelow:
		return datatypes.ZonePotCommitted
	case spr < sprCommittedBelow:
		return datatypes.ZoneCommitted
	case spr < sprMediumBelow:
		return datatypes.ZoneMedium
	case spr < sprDeepBelow:
		return datatypes.ZoneDeep
	default:
		return datatypes.ZoneVeryDeep
	}
}

func guidanceFor(zone datatypes.CommitmentZone) string {
	switch zone {
	case datatypes.ZonePotCommitted:
		return "Stack is pot committed; get the money in with any reasonable equity."
	case datatypes.ZoneCommitted:
		return "One bet commits the stack; size up with value, avoid bloating the pot with marginal hands."
	case datatypes.ZoneMedium:
		return "Two streets of betting reach all-in; plan sizing across streets before betting."
	case datatypes.ZoneDeep:
		return "Deep enough that implied odds matter; favor hands that make nutted five-card holdings."
	default:
		return "Very deep; position and nut potential dominate raw hand strength."
	}
}
