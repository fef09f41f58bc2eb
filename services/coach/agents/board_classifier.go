// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agents implements the seven hand-analysis stages and the
// orchestrator that runs them. Each stage is a standalone typed transform
// over the datatypes records; there is no shared base type. Stages that
// consult a language model take an llm.Client and carry a deterministic
// fallback so the pipeline always completes.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HandLabAI/HandCoach/services/coach/cards"
	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

// ClassifyBoard analyzes the community-card texture per street. It never
// returns an error: a hand with no board yields a minimal analysis, a board
// the deterministic rules cannot categorize goes to the LLM, and an LLM
// failure yields a conservative "unable to analyze" result. The degraded
// return is true only on that last path.
//
// # Inputs
//   - client: LLM backend, consulted only when the deterministic
//     classifier signals unknown. May be nil if that path is unreachable
//     for the caller's inputs.
//   - in: the hand under analysis. Only Board and StreetsPlayed are read.
//
// # Outputs
//   - BoardAnalysis with per-street textures for streets actually played
//     and a boolean summary of the full board.
func ClassifyBoard(ctx context.Context, client llm.Client, in datatypes.HandInput) (datatypes.BoardAnalysis, bool) {
	if strings.TrimSpace(in.Board) == "" || !in.StreetsPlayed.Flop {
		// Preflop-only hand: no hypothetical postflop texture.
		return datatypes.BoardAnalysis{}, false
	}

	board, err := cards.ParseBoard(in.Board)
	if err != nil || len(board.Cards) < 3 {
		// Deterministic path cannot categorize; ask the model.
		slog.Warn("board not deterministically classifiable, falling back to LLM",
			"board", in.Board, "error", err)
		return classifyBoardLLM(ctx, client, in)
	}

	out := datatypes.BoardAnalysis{
		Summary: datatypes.BoardSummary{
			Paired:           cards.Paired(board.Cards),
			FlushPossible:    cards.MaxSuitCount(board.Cards) >= 3,
			StraightPossible: cards.StraightPossible(board.Cards),
			HighCard:         cards.HighCardPresent(board.Cards),
		},
	}

	flop := classifyStreet(board.Through(3), nil)
	out.Flop = &flop
	if in.StreetsPlayed.Turn && len(board.Cards) >= 4 {
		turn := classifyStreet(board.Through(4), board.Through(3))
		out.Turn = &turn
	}
	if in.StreetsPlayed.River && len(board.Cards) >= 5 {
		river := classifyStreet(board.Through(5), board.Through(4))
		out.River = &river
	}
	return out, false
}

// classifyStreet derives the texture of one street from fixed rules.
// prior is the board as of the previous street (nil for the flop) and is
// used to describe what the new card changed.
func classifyStreet(cs, prior []cards.Card) datatypes.StreetTexture {
	var parts []string
	if cards.Paired(cs) {
		parts = append(parts, "paired")
	}
	switch cards.MaxSuitCount(cs) {
	case len(cs):
		parts = append(parts, "monotone")
	case 1:
		parts = append(parts, "rainbow")
	default:
		if n := cards.MaxSuitCount(cs); n >= 3 {
			parts = append(parts, "three to a flush")
		} else {
			parts = append(parts, "two-tone")
		}
	}
	if cards.StraightPossible(cs) {
		parts = append(parts, "connected")
	} else {
		parts = append(parts, "disconnected")
	}
	if cards.HighCardPresent(cs) {
		parts = append(parts, "high-card heavy")
	} else {
		parts = append(parts, "low")
	}

	tex := datatypes.StreetTexture{
		Cards:         cards.CardString(cs),
		Texture:       strings.Join(parts, ", "),
		DrawsPossible: drawsOn(cs),
		ScaryFor:      scaryFor(cs, prior),
	}
	return tex
}

func drawsOn(cs []cards.Card) []string {
	draws := []string{}
	switch n := cards.MaxSuitCount(cs); {
	case n >= 3:
		draws = append(draws, "flush possible")
	case n == 2 && len(cs) < 5:
		draws = append(draws, "flush draw")
	}
	if cards.StraightPossible(cs) {
		draws = append(draws, "straight possible")
	} else if straightDrawPossible(cs) && len(cs) < 5 {
		draws = append(draws, "straight draw")
	}
	return draws
}

// straightDrawPossible reports whether two board ranks sit close enough
// that hole cards can hold an open-ended or gutshot draw.
func straightDrawPossible(cs []cards.Card) bool {
	ranks := cards.SortedRanks(cs)
	for i := 0; i+1 < len(ranks); i++ {
		for j := i + 1; j < len(ranks); j++ {
			if ranks[j]-ranks[i] <= 4 {
				return true
			}
		}
	}
	return false
}

func scaryFor(cs, prior []cards.Card) string {
	wet := cards.MaxSuitCount(cs) >= 3 || cards.StraightPossible(cs)
	paired := cards.Paired(cs)
	switch {
	case paired && wet:
		return "everything short of the nuts"
	case paired:
		return "flushes and straights"
	case wet:
		return "one-pair hands and overpairs"
	case prior != nil && newOvercard(cs, prior):
		return "previous-street top pair"
	default:
		return ""
	}
}

// newOvercard reports whether the newest card outranks everything on the
// prior board.
func newOvercard(cs, prior []cards.Card) bool {
	if len(cs) <= len(prior) {
		return false
	}
	newest := cs[len(cs)-1]
	for _, c := range prior {
		if c.Rank >= newest.Rank {
			return false
		}
	}
	return true
}

// boardResponse mirrors BoardAnalysis for LLM parsing.
type boardResponse struct {
	Flop    *datatypes.StreetTexture `json:"flop"`
	Turn    *datatypes.StreetTexture `json:"turn"`
	River   *datatypes.StreetTexture `json:"river"`
	Summary datatypes.BoardSummary   `json:"summary"`
}

func classifyBoardLLM(ctx context.Context, client llm.Client, in datatypes.HandInput) (datatypes.BoardAnalysis, bool) {
	fallback := conservativeBoardFallback(in)
	if client == nil {
		return fallback, true
	}

	prompt := fmt.Sprintf("Community cards: %s\nStreets played: flop=%t turn=%t river=%t",
		in.Board, in.StreetsPlayed.Flop, in.StreetsPlayed.Turn, in.StreetsPlayed.River)
	resp, err := client.Complete(ctx, systemPromptBoard, prompt, llm.GenerationParams{JSONMode: true})
	if err != nil {
		slog.Error("board classifier LLM fallback failed", "error", err)
		return fallback, true
	}
	var parsed boardResponse
	if err := llm.ExtractJSON(resp, &parsed); err != nil {
		slog.Error("board classifier LLM response unparseable", "error", err)
		return fallback, true
	}

	out := datatypes.BoardAnalysis{
		Flop:    parsed.Flop,
		Turn:    parsed.Turn,
		River:   parsed.River,
		Summary: parsed.Summary,
	}
	// The model must not invent streets the hand never reached.
	if !in.StreetsPlayed.Turn {
		out.Turn = nil
	}
	if !in.StreetsPlayed.River {
		out.River = nil
	}
	if out.Flop == nil {
		return fallback, true
	}
	return out, false
}

// conservativeBoardFallback is the terminal fallback: structurally valid,
// explicitly marked unable to analyze.
func conservativeBoardFallback(in datatypes.HandInput) datatypes.BoardAnalysis {
	out := datatypes.BoardAnalysis{}
	if in.StreetsPlayed.Flop {
		out.Flop = &datatypes.StreetTexture{
			Cards:         in.Board,
			Texture:       "unable to analyze",
			DrawsPossible: []string{},
		}
	}
	return out
}
