// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/HandLabAI/HandCoach/services/coach/agents"
	"github.com/HandLabAI/HandCoach/services/coach/middleware"
	"github.com/HandLabAI/HandCoach/services/coach/observability"
	"github.com/HandLabAI/HandCoach/services/coach/routes"
	"github.com/HandLabAI/HandCoach/services/llm"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "handcoach-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("coach-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildLLMClient assembles the configured backend with the optional
// cache and rate-limit decorators.
func buildLLMClient() (llm.Client, error) {
	client, err := llm.NewFromEnv(os.Getenv("LLM_BACKEND_TYPE"))
	if err != nil {
		return nil, err
	}
	if dir := os.Getenv("COACH_CACHE_DIR"); dir != "" {
		cached, err := llm.NewCachedClient(client, dir, 7*24*time.Hour)
		if err != nil {
			slog.Warn("LLM cache disabled", "dir", dir, "error", err)
		} else {
			client = cached
		}
	}
	if v := os.Getenv("COACH_RATE_LIMIT"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			client = llm.NewRateLimitedClient(client, rps, 1)
		}
	}
	return client, nil
}

func main() {
	port := os.Getenv("COACH_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	llmClient, err := buildLLMClient()
	if err != nil {
		log.Fatalf("failed to initialize LLM client: %v", err)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	pipeline := agents.NewPipeline(llmClient)
	pipeline.Observer = metrics

	appToken := middleware.AppTokenFromEnv()
	if appToken == "" {
		slog.Warn("APP_API_TOKEN not set, v1 API is unauthenticated")
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("coach-service"))
	routes.SetupRoutes(router, pipeline, metrics, prometheus.DefaultGatherer, appToken)

	slog.Info("starting the coach server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
