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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Solve outcome labels used in logs and metrics.
const (
	StatusSolved     = "solved"
	StatusLeveledOff = "leveled_off"
	StatusNotReady   = "not_ready"
	StatusLimit      = "level_limit"
	StatusCancelled  = "cancelled"
	StatusError      = "error"
)

// Solver drives expansion, extraction and level-off detection for one
// problem.
//
// Thread Safety: NOT safe for concurrent use. Create one Solver per
// session.
type Solver struct {
	graph     PlanningGraph
	goals     Goals
	cfg       Config
	extractor *Extractor
	logger    *slog.Logger
}

// NewSolver creates a solver over graph.
//
// Inputs:
//   - graph: The planning graph, usually holding only level 0.
//   - goals: The goals to reach.
//   - cfg: Search configuration.
//
// Outputs:
//   - *Solver: The solver.
//   - error: ErrNilGraph if graph is nil.
func NewSolver(graph PlanningGraph, goals Goals, cfg Config) (*Solver, error) {
	if graph == nil {
		return nil, &SearchError{Component: "Solver", Operation: "New", Err: ErrNilGraph}
	}
	return &Solver{
		graph:     graph,
		goals:     goals,
		cfg:       cfg,
		extractor: NewExtractor(graph, cfg),
		logger:    cfg.logger("solver"),
	}, nil
}

// Solve searches for plans.
//
// Description:
//
//	Each round checks whether the frontier level satisfies the goal test
//	with non-mutex goals and, if so, extracts from it. On success the
//	solutions are returned. Otherwise, when autoExpand is set, one level
//	is added, caches are reset and the level-off detector is consulted;
//	a fixpoint ends the search with no solution. Without autoExpand a
//	single round is run.
//
// Inputs:
//   - ctx: Cancellation and span parent.
//   - autoExpand: Whether to grow the graph until success or fixpoint.
//
// Outputs:
//   - []Solution: The plans found. Empty (not nil) when there is none.
//   - error: ctx.Err() on cancellation, ErrLevelLimit past MaxLevels.
func (s *Solver) Solve(ctx context.Context, autoExpand bool) ([]Solution, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "planner.solve",
		attribute.Bool("planner.auto_expand", autoExpand),
		attribute.Int("planner.goals", len(s.goals.Pos)+len(s.goals.Neg)))
	defer span.End()

	solutions, status, err := s.solve(ctx, autoExpand)

	span.SetAttributes(
		attribute.String("planner.status", status),
		attribute.Int("planner.levels", s.graph.LevelCount()),
		attribute.Int("planner.solutions", len(solutions)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	recordSolveMetrics(ctx, time.Since(start), status)

	s.logger.Info("solve finished",
		slog.String("status", status),
		slog.Int("levels", s.graph.LevelCount()),
		slog.Int("solutions", len(solutions)),
		slog.Duration("elapsed", time.Since(start)))
	return solutions, err
}

func (s *Solver) solve(ctx context.Context, autoExpand bool) ([]Solution, string, error) {
	for {
		last := s.graph.LevelCount() - 1
		if s.goalsReachable(last) {
			res, err := s.extract(ctx, last)
			if err != nil {
				return []Solution{}, statusFor(err), err
			}
			if res.Found() {
				return res.Solutions, StatusSolved, nil
			}
		}

		if !autoExpand {
			return []Solution{}, StatusNotReady, nil
		}
		if s.cfg.MaxLevels > 0 && last >= s.cfg.MaxLevels {
			return []Solution{}, StatusLimit, &SearchError{
				Component: "Solver",
				Operation: "Solve",
				Err:       fmt.Errorf("%w: %d levels", ErrLevelLimit, s.cfg.MaxLevels),
			}
		}
		if err := s.Expand(ctx); err != nil {
			return []Solution{}, statusFor(err), err
		}
		if IsFixpoint(s.graph) {
			s.logger.Debug("graph leveled off", slog.Int("levels", s.graph.LevelCount()))
			return []Solution{}, StatusLeveledOff, nil
		}
	}
}

func statusFor(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return StatusCancelled
	}
	return StatusError
}

// goalsReachable reports whether the goal test holds at level and the goals
// are pairwise non-mutex there.
func (s *Solver) goalsReachable(level int) bool {
	if !s.goals.satisfied(s.graph.PositiveLiterals(level), s.graph.NegativeLiterals(level)) {
		return false
	}
	return s.graph.NonMutexGoals(level, s.goals.Pos, s.goals.Neg)
}

func (s *Solver) extract(ctx context.Context, level int) (Result, error) {
	ctx, span := startSpan(ctx, "planner.extract", attribute.Int("planner.level", level))
	defer span.End()

	before := s.extractor.Stats()
	res, err := s.extractor.Extract(ctx, s.goals.Pos, s.goals.Neg, level)
	after := s.extractor.Stats()
	recordExtractMetrics(ctx, before, after)

	span.SetAttributes(
		attribute.Bool("planner.found", res.Found()),
		attribute.Int64("planner.enumerations", after.Enumerations-before.Enumerations))
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// Expand adds one level to the graph and invalidates the search caches.
func (s *Solver) Expand(ctx context.Context) error {
	ctx, span := startSpan(ctx, "planner.expand",
		attribute.Int("planner.level", s.graph.LevelCount()))
	defer span.End()

	if err := s.graph.ExpandGraph(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("expanding level %d: %w", s.graph.LevelCount(), err)
	}
	s.extractor.Reset()
	recordExpansion(ctx)
	return nil
}

// Reset discards the current graph and caches and starts over on a new
// graph and goals, as when another problem is loaded.
func (s *Solver) Reset(graph PlanningGraph, goals Goals) error {
	if graph == nil {
		return &SearchError{Component: "Solver", Operation: "Reset", Err: ErrNilGraph}
	}
	s.graph = graph
	s.goals = goals
	s.extractor = NewExtractor(graph, s.cfg)
	return nil
}

// IsMutex answers a mutex query by node names at level. It is a pure query
// and does not affect the search.
func (s *Solver) IsMutex(level int, a, b string) (bool, error) {
	q, ok := s.graph.(MutexQuerier)
	if !ok {
		return false, &SearchError{Component: "Solver", Operation: "IsMutex", Err: ErrMutexUnsupported}
	}
	return q.MutexByName(level, a, b)
}

// Graph returns the graph being searched.
func (s *Solver) Graph() PlanningGraph {
	return s.graph
}

// Levels returns the number of action levels built so far.
func (s *Solver) Levels() int {
	return s.graph.LevelCount() - 1
}

// Stats returns the extraction counters of the current graph.
func (s *Solver) Stats() ExtractStats {
	return s.extractor.Stats()
}
