// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for search operations.
var (
	tracer = otel.Tracer("aleutian.planner")
	meter  = otel.Meter("aleutian.planner")
)

var (
	solvesTotal     metric.Int64Counter
	solveLatency    metric.Float64Histogram
	expansionsTotal metric.Int64Counter
	extractTotal    metric.Int64Counter
	nogoodHits      metric.Int64Counter
	nogoodsRecorded metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		solvesTotal, err = meter.Int64Counter(
			"plan_solves_total",
			metric.WithDescription("Total solve calls by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		solveLatency, err = meter.Float64Histogram(
			"plan_solve_duration_seconds",
			metric.WithDescription("Duration of solve calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		expansionsTotal, err = meter.Int64Counter(
			"plan_expansions_total",
			metric.WithDescription("Total planning graph expansions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		extractTotal, err = meter.Int64Counter(
			"plan_extract_calls_total",
			metric.WithDescription("Total solution extraction calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nogoodHits, err = meter.Int64Counter(
			"plan_nogood_hits_total",
			metric.WithDescription("Queries answered from the nogood cache"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nogoodsRecorded, err = meter.Int64Counter(
			"plan_nogoods_recorded_total",
			metric.WithDescription("Nogoods recorded"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordSolveMetrics(ctx context.Context, duration time.Duration, status string) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	solvesTotal.Add(ctx, 1, attrs)
	solveLatency.Record(ctx, duration.Seconds(), attrs)
}

func recordExpansion(ctx context.Context) {
	if err := initMetrics(); err != nil {
		return
	}
	expansionsTotal.Add(ctx, 1)
}

// recordExtractMetrics adds the counter deltas of one extraction.
func recordExtractMetrics(ctx context.Context, before, after ExtractStats) {
	if err := initMetrics(); err != nil {
		return
	}
	extractTotal.Add(ctx, 1)
	nogoodHits.Add(ctx, after.NogoodHits-before.NogoodHits)
	nogoodsRecorded.Add(ctx, after.NogoodsRecorded-before.NogoodsRecorded)
}
