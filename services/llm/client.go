// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm is the language-model capability boundary for the analysis
// pipeline. Stages depend only on the Client interface; backend selection,
// rate limiting and caching live here so the pipeline's data-flow logic
// stays free of transport concerns.
package llm

import "context"

// GenerationParams tunes a single completion call.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
	// JSONMode asks the backend for a JSON object response where the
	// backend supports it. Callers must still parse defensively.
	JSONMode bool `json:"json_mode"`
}

// Client is the narrow interface every LLM-backed pipeline stage consumes:
// submit a system prompt plus a user prompt, get back text.
type Client interface {
	Complete(ctx context.Context, system, prompt string, params GenerationParams) (string, error)
}

// CompleteFunc adapts a plain function to the Client interface. Handy for
// tests and for wrapping closures.
type CompleteFunc func(ctx context.Context, system, prompt string, params GenerationParams) (string, error)

// Complete implements Client.
func (f CompleteFunc) Complete(ctx context.Context, system, prompt string, params GenerationParams) (string, error) {
	return f(ctx, system, prompt, params)
}

// NewFromEnv builds the backend selected by the given name
// (openai | ollama | anthropic/claude). Defaults to openai.
func NewFromEnv(backend string) (Client, error) {
	switch backend {
	case "ollama":
		return NewOllamaClient()
	case "claude", "anthropic":
		return NewAnthropicClient()
	default:
		return NewOpenAIClient()
	}
}
