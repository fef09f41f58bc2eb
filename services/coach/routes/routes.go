// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HandLabAI/HandCoach/services/coach/handlers"
	"github.com/HandLabAI/HandCoach/services/coach/middleware"
	"github.com/HandLabAI/HandCoach/services/coach/observability"
)

// SetupRoutes wires the coach service endpoints. Health and metrics are
// open; the v1 API requires the app token when one is configured.
func SetupRoutes(router *gin.Engine, analyzer handlers.Analyzer,
	metrics *observability.CoachMetrics, gatherer prometheus.Gatherer, appToken string) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	v1.Use(middleware.AppTokenAuth(appToken))
	{
		v1.POST("/coach/analyze-hand", handlers.AnalyzeHand(analyzer, metrics))
	}
}
