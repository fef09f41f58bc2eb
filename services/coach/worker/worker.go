// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package worker runs the batch coaching loop: fetch hands that have no
// strategy yet, parse the raw text, run the analysis pipeline, and write
// the results back.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/coach/handparse"
	"github.com/HandLabAI/HandCoach/services/coach/store"
)

// HandStore is the slice of the persistence layer the worker needs.
type HandStore interface {
	FetchPending(ctx context.Context, limit int) ([]store.PendingHand, error)
	SaveAnalysis(ctx context.Context, handID string, out datatypes.CoachOutput) error
	MarkFailed(ctx context.Context, handID, reason string) error
	UpsertSilver(ctx context.Context, row store.SilverRow) error
}

// Analyzer runs the multi-stage hand analysis.
type Analyzer interface {
	Analyze(ctx context.Context, in datatypes.HandInput) (datatypes.CoachOutput, error)
}

// RunStats aggregates what a run accomplished.
type RunStats struct {
	Batches          int
	Fetched          int
	Coached          int
	ParseFailures    int
	AnalysisFailures int
	Degraded         int
}

// Worker drains the pending-hand queue in batches.
type Worker struct {
	Store      HandStore
	Analyzer   Analyzer
	Log        *slog.Logger
	BatchSize  int
	Interval   time.Duration
	MaxBatches int
}

// New builds a worker from config. Store and analyzer are injected so
// the loop can be tested without Postgres.
func New(st HandStore, an Analyzer, log *slog.Logger, cfg Config) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		Store:      st,
		Analyzer:   an,
		Log:        log,
		BatchSize:  cfg.BatchSize,
		Interval:   cfg.Interval,
		MaxBatches: cfg.MaxBatches,
	}
}

// Run processes batches until the queue drains, MaxBatches is reached,
// or the context is cancelled. With a positive Interval it sleeps
// between batches instead of stopping on an empty fetch.
func (w *Worker) Run(ctx context.Context) (RunStats, error) {
	var stats RunStats
	for {
		if w.MaxBatches > 0 && stats.Batches >= w.MaxBatches {
			return stats, nil
		}
		n, err := w.RunBatch(ctx, &stats)
		if err != nil {
			return stats, err
		}
		stats.Batches++
		if n == 0 {
			if w.Interval <= 0 {
				w.Log.Info("queue drained", "batches", stats.Batches, "coached", stats.Coached)
				return stats, nil
			}
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(w.Interval):
			}
		}
	}
}

// RunBatch fetches and processes one batch, returning how many hands it
// fetched.
func (w *Worker) RunBatch(ctx context.Context, stats *RunStats) (int, error) {
	hands, err := w.Store.FetchPending(ctx, w.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("worker: %w", err)
	}
	stats.Fetched += len(hands)
	for _, h := range hands {
		if err := ctx.Err(); err != nil {
			return len(hands), err
		}
		w.processHand(ctx, h, stats)
	}
	return len(hands), nil
}

func (w *Worker) processHand(ctx context.Context, h store.PendingHand, stats *RunStats) {
	in, err := handparse.Parse(h.ID, h.RawText)
	if err != nil {
		stats.ParseFailures++
		w.Log.Warn("hand text unparseable", "hand_id", h.ID, "error", err)
		if mErr := w.Store.MarkFailed(ctx, h.ID, "unparseable"); mErr != nil {
			w.Log.Error("mark failed", "hand_id", h.ID, "error", mErr)
		}
		return
	}
	fillFromRow(&in, h)

	out, err := w.Analyzer.Analyze(ctx, in)
	if err != nil {
		// Leave the row NULL so a later run can retry; only the text
		// being unparseable is terminal.
		stats.AnalysisFailures++
		w.Log.Error("analysis failed", "hand_id", h.ID, "error", err)
		return
	}

	if err := w.Store.SaveAnalysis(ctx, h.ID, out); err != nil {
		stats.AnalysisFailures++
		w.Log.Error("save analysis", "hand_id", h.ID, "error", err)
		return
	}
	if err := w.Store.UpsertSilver(ctx, silverRow(h, in, out)); err != nil {
		// The hands row is already updated; the projection can lag.
		w.Log.Warn("upsert silver row", "hand_id", h.ID, "error", err)
	}

	stats.Coached++
	if len(out.Degraded) > 0 {
		stats.Degraded++
	}
	w.Log.Info("hand coached",
		"hand_id", h.ID,
		"position", out.HeroPosition,
		"mistakes", out.Mistakes.MistakeCount,
		"severity", overallSeverity(out.Mistakes.Severity),
		"degraded_stages", out.Degraded,
	)
}

// fillFromRow lets stored columns stand in for anything the raw text
// did not yield.
func fillFromRow(in *datatypes.HandInput, h store.PendingHand) {
	if in.HeroPosition == "" && h.Position != "" {
		in.HeroPosition = handparse.NormalizePosition(h.Position)
	}
	if in.Board == "" && h.Board != "" {
		in.Board = h.Board
	}
}

func silverRow(h store.PendingHand, in datatypes.HandInput, out datatypes.CoachOutput) store.SilverRow {
	stakes := h.Stakes
	if stakes == "" {
		if sb, bb := handparse.Stakes(h.RawText); bb > 0 {
			stakes = fmt.Sprintf("$%g/$%g", sb, bb)
		}
	}
	return store.SilverRow{
		HandID:        h.ID,
		UserID:        h.UserID,
		Site:          handparse.Site(h.RawText),
		GameType:      handparse.GameType(h.RawText),
		Stakes:        stakes,
		TableSize:     in.TableSize,
		HeroPosition:  out.HeroPosition,
		HeroCards:     in.HeroCards,
		Board:         in.Board,
		StreetReached: handparse.StreetReached(h.RawText),
		GTOStrategy:   out.GTOStrategyText,
		LearningTags:  out.LearningTags,
		Severity:      overallSeverity(out.Mistakes.Severity),
		TotalEVLost:   out.Mistakes.TotalEVLost,
	}
}

// overallSeverity collapses the per-band counts into the worst band hit.
func overallSeverity(b datatypes.SeverityBreakdown) string {
	switch {
	case b.Critical > 0:
		return string(datatypes.SeverityCritical)
	case b.Moderate > 0:
		return string(datatypes.SeverityModerate)
	case b.Minor > 0:
		return string(datatypes.SeverityMinor)
	}
	return "clean"
}
