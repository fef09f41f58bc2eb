// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "handcoach",
		Short: "A CLI for the HandCoach poker analysis service",
		Long: `HandCoach analyzes no-limit hold'em hand histories with a
multi-stage pipeline (board texture, ranges, equity, SPR, strategy,
mistakes) and produces coaching output.`,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [hand history file]",
		Short: "Analyze a single hand history file and print the coaching JSON",
		Long: `Parses the given hand history text file, runs the full analysis
pipeline in-process, and prints the CoachOutput as JSON on stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCommand,
	}
	offline bool

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "Run the batch coaching worker against Postgres",
		Long: `Fetches hands with no strategy yet, analyzes them, and writes the
results back. Configure with a YAML file and/or environment variables
(DATABASE_URL, COACH_BATCH_SIZE, LLM_BACKEND_TYPE, ...).`,
		RunE: runWorkerCommand,
	}
	configPath string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the coach HTTP API locally",
		RunE:  runServeCommand,
	}
	servePort string

	logDir string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"also write JSON logs to this directory")

	analyzeCmd.Flags().BoolVar(&offline, "offline", false,
		"skip the LLM backend and use deterministic fallbacks only")
	rootCmd.AddCommand(analyzeCmd)

	workerCmd.Flags().StringVar(&configPath, "config", "",
		"path to the worker YAML config")
	rootCmd.AddCommand(workerCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "12310", "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
