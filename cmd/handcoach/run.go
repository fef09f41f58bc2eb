// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/HandLabAI/HandCoach/pkg/logging"
	"github.com/HandLabAI/HandCoach/services/coach/agents"
	"github.com/HandLabAI/HandCoach/services/coach/handparse"
	"github.com/HandLabAI/HandCoach/services/coach/middleware"
	"github.com/HandLabAI/HandCoach/services/coach/observability"
	"github.com/HandLabAI/HandCoach/services/coach/routes"
	"github.com/HandLabAI/HandCoach/services/coach/store"
	"github.com/HandLabAI/HandCoach/services/coach/worker"
	"github.com/HandLabAI/HandCoach/services/llm"
)

func newLogger(service string) *logging.Logger {
	return logging.New(logging.Config{
		Level:   logging.LevelInfo,
		LogDir:  logDir,
		Service: service,
	})
}

// llmFromEnv builds the LLM client unless the run is offline, in which
// case every pipeline stage uses its deterministic fallback.
func llmFromEnv() (llm.Client, error) {
	if offline {
		return nil, nil
	}
	return llm.NewFromEnv(os.Getenv("LLM_BACKEND_TYPE"))
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger("cli")
	defer logger.Close()

	path := args[0]
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read hand history: %w", err)
	}

	handID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	in, err := handparse.Parse(handID, string(raw))
	if err != nil {
		return err
	}

	client, err := llmFromEnv()
	if err != nil {
		return fmt.Errorf("initialize LLM client: %w", err)
	}
	pipeline := agents.NewPipeline(client)

	out, err := pipeline.Analyze(cmd.Context(), in)
	if err != nil {
		return err
	}
	if len(out.Degraded) > 0 {
		logger.Warn("some stages used deterministic fallbacks", "stages", out.Degraded)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runWorkerCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger("worker")
	defer logger.Close()

	cfg, err := worker.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := workerLLMClient(cfg)
	if err != nil {
		return fmt.Errorf("initialize LLM client: %w", err)
	}
	pipeline := agents.NewPipeline(client)

	w := worker.New(st, pipeline, logger.Slog(), cfg)
	stats, err := w.Run(ctx)
	logger.Info("worker run finished",
		"batches", stats.Batches,
		"fetched", stats.Fetched,
		"coached", stats.Coached,
		"parse_failures", stats.ParseFailures,
		"analysis_failures", stats.AnalysisFailures,
		"degraded", stats.Degraded,
	)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// workerLLMClient assembles the backend with the cache and rate-limit
// decorators the worker config asks for.
func workerLLMClient(cfg worker.Config) (llm.Client, error) {
	client, err := llm.NewFromEnv(cfg.LLMBackend)
	if err != nil {
		return nil, err
	}
	if cfg.CacheDir != "" {
		cached, err := llm.NewCachedClient(client, cfg.CacheDir, 0)
		if err != nil {
			return nil, fmt.Errorf("open LLM cache at %s: %w", cfg.CacheDir, err)
		}
		client = cached
	}
	if cfg.RateLimit > 0 {
		client = llm.NewRateLimitedClient(client, cfg.RateLimit, 1)
	}
	return client, nil
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger("serve")
	defer logger.Close()

	client, err := llmFromEnv()
	if err != nil {
		return fmt.Errorf("initialize LLM client: %w", err)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	pipeline := agents.NewPipeline(client)
	pipeline.Observer = metrics

	appToken := middleware.AppTokenFromEnv()
	router := gin.Default()
	routes.SetupRoutes(router, pipeline, metrics, prometheus.DefaultGatherer, appToken)

	logger.Info("serving the coach API", "port", servePort)
	return router.Run(":" + servePort)
}
