// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the Postgres persistence layer for the coaching
// worker. It reads pending hands, writes analysis results back onto the
// hands table, and maintains the enriched hands_silver projection used
// by study tooling.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

// PendingHand is one row waiting for coaching.
type PendingHand struct {
	ID       string
	UserID   string
	RawText  string
	Position string
	Cards    string
	Board    string
	Stakes   string
}

// Store wraps a Postgres connection.
type Store struct {
	db *sql.DB
}

// New opens and pings a Postgres connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: postgres DSN is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection, for tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

// FetchPending returns hands that have raw text but no strategy yet,
// oldest first.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]PendingHand, error) {
	const query = `
	SELECT id, user_id, raw_text,
	       COALESCE(position, ''), COALESCE(cards, ''),
	       COALESCE(board, ''), COALESCE(stakes, '')
	FROM public.hands
	WHERE gto_strategy IS NULL
	  AND raw_text IS NOT NULL
	ORDER BY COALESCE(date, created_at::date), id
	LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: fetch pending hands: %w", err)
	}
	defer rows.Close()

	var hands []PendingHand
	for rows.Next() {
		var h PendingHand
		if err := rows.Scan(&h.ID, &h.UserID, &h.RawText, &h.Position, &h.Cards, &h.Board, &h.Stakes); err != nil {
			return nil, fmt.Errorf("store: scan pending hand: %w", err)
		}
		hands = append(hands, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate pending hands: %w", err)
	}
	return hands, nil
}

// SaveAnalysis writes a finished coaching result onto the hands row.
// Position is only overwritten when the pipeline inferred one.
func (s *Store) SaveAnalysis(ctx context.Context, handID string, out datatypes.CoachOutput) error {
	structured, err := json.Marshal(out.StructuredData)
	if err != nil {
		return fmt.Errorf("store: marshal structured data for hand %s: %w", handID, err)
	}
	var position sql.NullString
	if out.HeroPosition != "" {
		position = sql.NullString{String: out.HeroPosition, Valid: true}
	}

	const query = `
	UPDATE public.hands
	SET gto_strategy = $1,
	    exploit_deviation = $2,
	    learning_tag = $3,
	    structured_data = $4,
	    position = COALESCE($5, position)
	WHERE id = $6`

	res, err := s.db.ExecContext(ctx, query,
		out.GTOStrategyText,
		out.ExploitDeviation,
		pq.Array(out.LearningTags),
		structured,
		position,
		handID,
	)
	if err != nil {
		return fmt.Errorf("store: update hand %s: %w", handID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("store: hand %s not found", handID)
	}
	return nil
}

// MarkFailed stamps a sentinel so a permanently unparseable hand is not
// refetched forever.
func (s *Store) MarkFailed(ctx context.Context, handID, reason string) error {
	const query = `
	UPDATE public.hands
	SET gto_strategy = $1
	WHERE id = $2 AND gto_strategy IS NULL`

	if _, err := s.db.ExecContext(ctx, query, "ANALYSIS_FAILED: "+reason, handID); err != nil {
		return fmt.Errorf("store: mark hand %s failed: %w", handID, err)
	}
	return nil
}

// SilverRow is the denormalized projection kept in hands_silver.
type SilverRow struct {
	HandID        string
	UserID        string
	Site          string
	GameType      string
	Stakes        string
	TableSize     int
	HeroPosition  string
	HeroCards     string
	Board         string
	StreetReached string
	GTOStrategy   string
	LearningTags  []string
	Severity      string
	TotalEVLost   float64
}

// UpsertSilver inserts or refreshes one hands_silver row.
func (s *Store) UpsertSilver(ctx context.Context, row SilverRow) error {
	const query = `
	INSERT INTO public.hands_silver (
		hand_id, user_id, site, game_type, stakes, table_size,
		hero_position, hero_cards, board, street_reached,
		gto_strategy, learning_tag, severity, total_ev_lost, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	ON CONFLICT (hand_id) DO UPDATE SET
		gto_strategy   = EXCLUDED.gto_strategy,
		learning_tag   = EXCLUDED.learning_tag,
		severity       = EXCLUDED.severity,
		total_ev_lost  = EXCLUDED.total_ev_lost,
		street_reached = EXCLUDED.street_reached,
		updated_at     = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		row.HandID, row.UserID, row.Site, row.GameType, row.Stakes, row.TableSize,
		row.HeroPosition, row.HeroCards, row.Board, row.StreetReached,
		row.GTOStrategy, pq.Array(row.LearningTags), row.Severity, row.TotalEVLost,
	)
	if err != nil {
		return fmt.Errorf("store: upsert silver row for hand %s: %w", row.HandID, err)
	}
	return nil
}

// CountPending reports how many hands still need coaching.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM public.hands WHERE gto_strategy IS NULL AND raw_text IS NOT NULL`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count pending hands: %w", err)
	}
	return n, nil
}
