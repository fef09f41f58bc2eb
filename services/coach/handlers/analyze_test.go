// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
)

type fakeAnalyzer struct {
	got datatypes.HandInput
	err error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in datatypes.HandInput) (datatypes.CoachOutput, error) {
	f.got = in
	if f.err != nil {
		return datatypes.CoachOutput{}, f.err
	}
	return datatypes.CoachOutput{HandID: in.HandID, HeroPosition: in.HeroPosition}, nil
}

func newTestRouter(an Analyzer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/coach/analyze-hand", AnalyzeHand(an, nil))
	router.GET("/health", HealthCheck)
	return router
}

func post(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/coach/analyze-hand", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHandWithStructuredInput(t *testing.T) {
	an := &fakeAnalyzer{}
	router := newTestRouter(an)

	rec := post(t, router, AnalyzeHandRequest{
		HandID: "h-7",
		Hand: &datatypes.HandInput{
			HeroCards:       "As Kd",
			HeroPosition:    "button",
			VillainPosition: "BB",
			HeroStack:       100,
			VillainStack:    100,
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "h-7", an.got.HandID)
	assert.Equal(t, "BTN", an.got.HeroPosition, "position labels are normalized")

	var out datatypes.CoachOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "h-7", out.HandID)
}

func TestAnalyzeHandWithRawText(t *testing.T) {
	an := &fakeAnalyzer{}
	router := newTestRouter(an)

	raw := `Table 'x' 2-max Seat #1 is the button
Seat 1: Hero ($50 in chips)
Seat 2: villain ($50 in chips)
Hero: posts small blind $0.25
villain: posts big blind $0.50
Dealt to Hero [As Kd]
Hero: raises $1.50
villain: folds
`
	rec := post(t, router, AnalyzeHandRequest{HandID: "h-raw", RawText: raw})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "As Kd", an.got.HeroCards)
	assert.Equal(t, "BTN", an.got.HeroPosition)
}

func TestAnalyzeHandStructuredOverridesParsed(t *testing.T) {
	an := &fakeAnalyzer{}
	router := newTestRouter(an)

	raw := `Table 'x' 2-max Seat #1 is the button
Seat 1: Hero ($50 in chips)
Seat 2: villain ($50 in chips)
Hero: posts small blind $0.25
Dealt to Hero [As Kd]
`
	rec := post(t, router, AnalyzeHandRequest{
		HandID:  "h-mix",
		RawText: raw,
		Hand:    &datatypes.HandInput{HeroStack: 250},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "As Kd", an.got.HeroCards, "parsed fields survive")
	assert.Equal(t, 250.0, an.got.HeroStack, "structured fields win")
}

func TestAnalyzeHandRejectsEmptyRequest(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{})
	rec := post(t, router, AnalyzeHandRequest{HandID: "h-0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandRejectsUnparseableText(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{})
	rec := post(t, router, AnalyzeHandRequest{RawText: "not a hand history"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeHandReportsAnalyzerFailure(t *testing.T) {
	an := &fakeAnalyzer{err: errors.New("boom")}
	router := newTestRouter(an)

	rec := post(t, router, AnalyzeHandRequest{
		Hand: &datatypes.HandInput{HeroCards: "As Kd", HeroPosition: "BTN"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyzeHandGeneratesHandID(t *testing.T) {
	an := &fakeAnalyzer{}
	router := newTestRouter(an)

	rec := post(t, router, AnalyzeHandRequest{
		Hand: &datatypes.HandInput{HeroCards: "As Kd", HeroPosition: "BTN"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, an.got.HandID)
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
