// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// CachedClient memoizes completions in an embedded Badger store keyed on a
// hash of (system, prompt, params). Re-analyzing the same hand is common in
// batch enrichment runs, and completions for identical prompts at the low
// temperatures the pipeline uses are stable enough to reuse.
type CachedClient struct {
	inner Client
	db    *badger.DB
	ttl   time.Duration
}

// NewCachedClient opens (or creates) a Badger store at dir. A zero ttl means
// entries never expire.
func NewCachedClient(inner Client, dir string, ttl time.Duration) (*CachedClient, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &CachedClient{inner: inner, db: db, ttl: ttl}, nil
}

// Close releases the underlying store.
func (c *CachedClient) Close() error {
	return c.db.Close()
}

func cacheKey(system, prompt string, params GenerationParams) []byte {
	h := sha256.New()
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	if params.Temperature != nil {
		h.Write([]byte{byte(*params.Temperature * 100)})
	}
	if params.JSONMode {
		h.Write([]byte{1})
	}
	sum := h.Sum(nil)
	return []byte("llm:" + hex.EncodeToString(sum))
}

// Complete implements Client.
func (c *CachedClient) Complete(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
	key := cacheKey(system, prompt, params)

	var cached string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cached = string(val)
			return nil
		})
	})
	if err == nil {
		slog.Debug("LLM cache hit")
		return cached, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		slog.Warn("LLM cache read failed, falling through to backend", "error", err)
	}

	out, err := c.inner.Complete(ctx, system, prompt, params)
	if err != nil {
		return "", err
	}

	// Cache write failures are not fatal; the completion already succeeded.
	if werr := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, []byte(out))
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	}); werr != nil {
		slog.Warn("LLM cache write failed", "error", werr)
	}
	return out, nil
}
