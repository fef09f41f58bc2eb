// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Texture string  `json:"texture"`
		Score   float64 `json:"score"`
	}

	t.Run("plain object", func(t *testing.T) {
		var p payload
		err := ExtractJSON(`{"texture":"wet","score":0.8}`, &p)
		require.NoError(t, err)
		assert.Equal(t, "wet", p.Texture)
		assert.InDelta(t, 0.8, p.Score, 1e-9)
	})

	t.Run("wrapped in prose and fences", func(t *testing.T) {
		resp := "Sure! Here is the analysis:\n```json\n{\"texture\":\"dry\",\"score\":0.2}\n```\nLet me know if you need more."
		var p payload
		err := ExtractJSON(resp, &p)
		require.NoError(t, err)
		assert.Equal(t, "dry", p.Texture)
	})

	t.Run("no object present", func(t *testing.T) {
		var p payload
		err := ExtractJSON("the board is very wet", &p)
		assert.Error(t, err)
	})

	t.Run("malformed object", func(t *testing.T) {
		var p payload
		err := ExtractJSON(`{"texture": wet}`, &p)
		assert.Error(t, err)
	})
}

func TestCompleteFunc(t *testing.T) {
	var gotSystem, gotPrompt string
	c := CompleteFunc(func(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
		gotSystem, gotPrompt = system, prompt
		return "ok", nil
	})
	out, err := c.Complete(context.Background(), "sys", "user", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "sys", gotSystem)
	assert.Equal(t, "user", gotPrompt)
}

func TestRateLimitedClientPassesThrough(t *testing.T) {
	inner := CompleteFunc(func(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
		return "answer", nil
	})
	rl := NewRateLimitedClient(inner, 100, 1)
	out, err := rl.Complete(context.Background(), "", "q", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

func TestRateLimitedClientRespectsContext(t *testing.T) {
	inner := CompleteFunc(func(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
		return "answer", nil
	})
	// 1 rps, burst 1: the second call must wait ~1s, far past the deadline.
	rl := NewRateLimitedClient(inner, 1, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := rl.Complete(ctx, "", "first", GenerationParams{})
	require.NoError(t, err)
	_, err = rl.Complete(ctx, "", "second", GenerationParams{})
	assert.Error(t, err)
}

func TestCachedClient(t *testing.T) {
	calls := 0
	inner := CompleteFunc(func(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
		calls++
		return "computed", nil
	})
	cc, err := NewCachedClient(inner, t.TempDir(), 0)
	require.NoError(t, err)
	defer cc.Close()

	out, err := cc.Complete(context.Background(), "sys", "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "computed", out)
	assert.Equal(t, 1, calls)

	out, err = cc.Complete(context.Background(), "sys", "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "computed", out)
	assert.Equal(t, 1, calls, "second identical call should be served from cache")

	_, err = cc.Complete(context.Background(), "sys", "different prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "different prompt must miss the cache")
}
