// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageCompletedCountsFallbacks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.StageCompleted("strategy", 10*time.Millisecond, true)
	m.StageCompleted("strategy", 10*time.Millisecond, false)
	m.StageCompleted("equity", time.Millisecond, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFallbacksTotal.WithLabelValues("strategy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.StageFallbacksTotal.WithLabelValues("equity")))
}

func TestRecordAnalysis(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordAnalysis(time.Second, true)
	m.RecordAnalysis(2*time.Second, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandsAnalyzedTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandsAnalyzedTotal.WithLabelValues("error")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "handcoach_coach_analyze_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found)
}
