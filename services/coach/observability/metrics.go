// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the coach
// service: per-stage pipeline latencies, fallback counts, and request
// totals. All operations are thread-safe via Prometheus's internal
// locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "handcoach"
	coachSubsystem   = "coach"
)

// CoachMetrics holds the pipeline and request metrics. It satisfies
// agents.StageObserver so it can be plugged straight into the pipeline.
type CoachMetrics struct {
	// StageDurationSeconds measures each analysis stage.
	// Labels: stage (board, ranges, equity, ...), degraded (true/false)
	StageDurationSeconds *prometheus.HistogramVec

	// StageFallbacksTotal counts stages that fell back to their
	// deterministic path. Labels: stage
	StageFallbacksTotal *prometheus.CounterVec

	// HandsAnalyzedTotal counts analyzed hands by outcome.
	// Labels: status (success, error)
	HandsAnalyzedTotal *prometheus.CounterVec

	// AnalyzeDurationSeconds measures the whole pipeline end to end.
	AnalyzeDurationSeconds prometheus.Histogram
}

// NewMetrics registers the coach metrics on the given registerer.
// Registering twice on the same registerer panics, so call once per
// process (tests use their own prometheus.NewRegistry).
func NewMetrics(reg prometheus.Registerer) *CoachMetrics {
	factory := promauto.With(reg)
	return &CoachMetrics{
		StageDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: coachSubsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each analysis pipeline stage",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"stage", "degraded"},
		),
		StageFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: coachSubsystem,
				Name:      "stage_fallbacks_total",
				Help:      "Stages that produced a deterministic fallback instead of an LLM result",
			},
			[]string{"stage"},
		),
		HandsAnalyzedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: coachSubsystem,
				Name:      "hands_analyzed_total",
				Help:      "Analyzed hands by outcome",
			},
			[]string{"status"},
		),
		AnalyzeDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: coachSubsystem,
				Name:      "analyze_duration_seconds",
				Help:      "End-to-end hand analysis duration",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
		),
	}
}

// StageCompleted implements agents.StageObserver.
func (m *CoachMetrics) StageCompleted(stage string, elapsed time.Duration, degraded bool) {
	label := "false"
	if degraded {
		label = "true"
		m.StageFallbacksTotal.WithLabelValues(stage).Inc()
	}
	m.StageDurationSeconds.WithLabelValues(stage, label).Observe(elapsed.Seconds())
}

// RecordAnalysis records one completed analyze request.
func (m *CoachMetrics) RecordAnalysis(elapsed time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.HandsAnalyzedTotal.WithLabelValues(status).Inc()
	m.AnalyzeDurationSeconds.Observe(elapsed.Seconds())
}
