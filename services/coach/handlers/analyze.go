// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP handlers for the coach service.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/HandLabAI/HandCoach/services/coach/datatypes"
	"github.com/HandLabAI/HandCoach/services/coach/handparse"
	"github.com/HandLabAI/HandCoach/services/coach/observability"
)

// Analyzer runs the multi-stage hand analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, in datatypes.HandInput) (datatypes.CoachOutput, error)
}

var validate = validator.New()

// AnalyzeHandRequest accepts either raw hand-history text, an already
// structured hand, or both. When both are present the structured fields
// win over what the parser extracted.
type AnalyzeHandRequest struct {
	HandID  string               `json:"hand_id" validate:"omitempty,max=64"`
	RawText string               `json:"raw_text" validate:"required_without=Hand"`
	Hand    *datatypes.HandInput `json:"hand" validate:"required_without=RawText"`
}

// AnalyzeHand handles POST /v1/coach/analyze-hand.
func AnalyzeHand(analyzer Analyzer, metrics *observability.CoachMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeHandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		in, err := buildInput(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		start := time.Now()
		out, err := analyzer.Analyze(c.Request.Context(), in)
		if metrics != nil {
			metrics.RecordAnalysis(time.Since(start), err == nil)
		}
		if err != nil {
			slog.Error("hand analysis failed", "hand_id", in.HandID, "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "analysis failed: " + err.Error(),
				"hand_id": in.HandID,
			})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// buildInput assembles the pipeline input from the request parts.
func buildInput(req AnalyzeHandRequest) (datatypes.HandInput, error) {
	handID := req.HandID
	if handID == "" && req.Hand != nil {
		handID = req.Hand.HandID
	}
	if handID == "" {
		handID = uuid.NewString()
	}

	var in datatypes.HandInput
	if req.RawText != "" {
		parsed, err := handparse.Parse(handID, req.RawText)
		if err != nil {
			if req.Hand == nil {
				return datatypes.HandInput{}, err
			}
			// Structured data can carry an unparseable transcript.
			parsed = datatypes.HandInput{HandID: handID}
		}
		in = parsed
	}
	if req.Hand != nil {
		overlay(&in, *req.Hand)
	}
	in.HandID = handID
	return in, nil
}

// overlay copies the caller's structured fields over the parsed hand.
// Zero values leave the parsed value in place.
func overlay(in *datatypes.HandInput, h datatypes.HandInput) {
	if h.HeroCards != "" {
		in.HeroCards = h.HeroCards
	}
	if h.VillainCards != "" {
		in.VillainCards = h.VillainCards
	}
	if h.Board != "" {
		in.Board = h.Board
	}
	if h.HeroPosition != "" {
		in.HeroPosition = handparse.NormalizePosition(h.HeroPosition)
	}
	if h.VillainPosition != "" {
		in.VillainPosition = handparse.NormalizePosition(h.VillainPosition)
	}
	if h.TableSize != 0 {
		in.TableSize = h.TableSize
	}
	if h.BigBlind != 0 {
		in.BigBlind = h.BigBlind
	}
	if h.HeroStack != 0 {
		in.HeroStack = h.HeroStack
	}
	if h.VillainStack != 0 {
		in.VillainStack = h.VillainStack
	}
	if h.VillainContext != "" {
		in.VillainContext = h.VillainContext
	}
	if h.Pots != (datatypes.PotSizes{}) {
		in.Pots = h.Pots
	}
	if len(h.Actions) > 0 {
		in.Actions = h.Actions
	}
	if h.HeroActions != (datatypes.HeroActionLog{}) {
		in.HeroActions = h.HeroActions
	}
	if h.StreetsPlayed != (datatypes.StreetsPlayed{}) {
		in.StreetsPlayed = h.StreetsPlayed
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "coach"})
}
