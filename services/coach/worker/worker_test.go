// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/coach/store"
)

const rawHand = `PokerStars Hand #1: Hold'em No Limit ($0.50/$1.00 USD)
Table 'test' 6-max Seat #3 is the button
Seat 3: Hero ($100 in chips)
Seat 4: villain ($100 in chips)
villain: posts small blind $0.50
Dealt to Hero [As Kd]
Hero: raises $2.50
villain: folds
`

type fakeStore struct {
	pending  []store.PendingHand
	saved    map[string]datatypes.CoachOutput
	failed   map[string]string
	silver   map[string]store.SilverRow
	saveErr  error
	fetchErr error
}

func newFakeStore(hands ...store.PendingHand) *fakeStore {
	return &fakeStore{
		pending: hands,
		saved:   map[string]datatypes.CoachOutput{},
		failed:  map[string]string{},
		silver:  map[string]store.SilverRow{},
	}
}

func (f *fakeStore) FetchPending(ctx context.Context, limit int) ([]store.PendingHand, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	batch := f.pending[:limit]
	f.pending = f.pending[limit:]
	return batch, nil
}

func (f *fakeStore) SaveAnalysis(ctx context.Context, handID string, out datatypes.CoachOutput) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[handID] = out
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, handID, reason string) error {
	f.failed[handID] = reason
	return nil
}

func (f *fakeStore) UpsertSilver(ctx context.Context, row store.SilverRow) error {
	f.silver[row.HandID] = row
	return nil
}

type fakeAnalyzer struct {
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in datatypes.HandInput) (datatypes.CoachOutput, error) {
	f.calls++
	if f.err != nil {
		return datatypes.CoachOutput{}, f.err
	}
	return datatypes.CoachOutput{
		HandID:          in.HandID,
		HeroPosition:    in.HeroPosition,
		GTOStrategyText: "open 2.5bb",
		LearningTags:    []string{"preflop_discipline"},
	}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DatabaseURL = "postgres://test"
	cfg.Interval = 0 // stop when drained
	return cfg
}

func TestWorkerDrainsQueue(t *testing.T) {
	st := newFakeStore(
		store.PendingHand{ID: "h-1", UserID: "u-1", RawText: rawHand},
		store.PendingHand{ID: "h-2", UserID: "u-1", RawText: rawHand},
	)
	an := &fakeAnalyzer{}
	w := New(st, an, nil, testConfig())

	stats, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 2, stats.Coached)
	assert.Zero(t, stats.ParseFailures)
	assert.Equal(t, 2, an.calls)
	assert.Contains(t, st.saved, "h-1")
	assert.Contains(t, st.saved, "h-2")
	assert.Empty(t, st.pending)
}

func TestWorkerMarksUnparseableHands(t *testing.T) {
	st := newFakeStore(
		store.PendingHand{ID: "bad", UserID: "u-1", RawText: "no cards here"},
		store.PendingHand{ID: "good", UserID: "u-1", RawText: rawHand},
	)
	an := &fakeAnalyzer{}
	w := New(st, an, nil, testConfig())

	stats, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.ParseFailures)
	assert.Equal(t, 1, stats.Coached)
	assert.Equal(t, "unparseable", st.failed["bad"])
	assert.NotContains(t, st.saved, "bad")
	assert.Contains(t, st.saved, "good")
}

func TestWorkerLeavesRowForRetryOnAnalysisError(t *testing.T) {
	st := newFakeStore(store.PendingHand{ID: "h-1", UserID: "u-1", RawText: rawHand})
	an := &fakeAnalyzer{err: errors.New("llm exploded")}
	w := New(st, an, nil, testConfig())

	stats, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.AnalysisFailures)
	assert.Empty(t, st.saved)
	assert.Empty(t, st.failed, "analysis errors are retryable, not terminal")
}

func TestWorkerWritesSilverProjection(t *testing.T) {
	st := newFakeStore(store.PendingHand{ID: "h-1", UserID: "u-9", RawText: rawHand})
	w := New(st, &fakeAnalyzer{}, nil, testConfig())

	_, err := w.Run(context.Background())
	require.NoError(t, err)

	row, ok := st.silver["h-1"]
	require.True(t, ok)
	assert.Equal(t, "u-9", row.UserID)
	assert.Equal(t, "PokerStars", row.Site)
	assert.Equal(t, "cash", row.GameType)
	assert.Equal(t, "$0.5/$1", row.Stakes)
	assert.Equal(t, "preflop", row.StreetReached)
	assert.Equal(t, []string{"preflop_discipline"}, row.LearningTags)
}

func TestWorkerHonorsMaxBatches(t *testing.T) {
	var hands []store.PendingHand
	for i := 0; i < 10; i++ {
		hands = append(hands, store.PendingHand{ID: string(rune('a' + i)), RawText: rawHand})
	}
	st := newFakeStore(hands...)
	cfg := testConfig()
	cfg.BatchSize = 2
	cfg.MaxBatches = 3
	w := New(st, &fakeAnalyzer{}, nil, cfg)

	stats, err := w.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 6, stats.Coached)
	assert.Len(t, st.pending, 4)
}

func TestWorkerStopsOnContextCancel(t *testing.T) {
	st := newFakeStore() // always empty
	cfg := testConfig()
	cfg.Interval = time.Hour // would sleep forever
	w := New(st, &fakeAnalyzer{}, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"database_url: postgres://file\nbatch_size: 7\ninterval: 10s\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file", cfg.DatabaseURL)
	assert.Equal(t, 7, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Interval)

	// Environment wins over the file.
	t.Setenv("COACH_BATCH_SIZE", "3")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BatchSize)
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := LoadConfig("")
	assert.Error(t, err)
}
