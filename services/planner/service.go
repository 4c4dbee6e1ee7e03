// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner exposes GraphPlan solving as a service.
//
// Service owns the per-request lifecycle: it builds a fresh planning graph
// and solver for every call, consults and fills the optional plan store,
// and bounds work with a timeout and a level cap. The HTTP handlers and the
// graphplan CLI both go through it.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianPlan/services/planner/engine"
	"github.com/AleutianAI/AleutianPlan/services/planner/graph"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
	"github.com/AleutianAI/AleutianPlan/services/planner/planstore"
)

// ServiceVersion is reported by the health endpoint and the CLI.
const ServiceVersion = "0.1.0"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// MaxSolutions is the default bound on collected alternatives. 0 means
	// unbounded.
	MaxSolutions int `validate:"gte=0"`

	// MaxLevels caps graph growth for every operation. 0 means unbounded,
	// which is only sensible for trusted callers.
	MaxLevels int `validate:"gte=0"`

	// StrictNegativeBase is passed to the engine.
	StrictNegativeBase bool

	// MaxSolveDuration bounds a single solve. 0 disables the timeout.
	MaxSolveDuration time.Duration `validate:"gte=0"`

	// MaxSourceBytes bounds domain plus problem size on the HTTP API.
	MaxSourceBytes int `validate:"gte=0"`
}

// DefaultServiceConfig returns limits suitable for the HTTP API.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLevels:        64,
		MaxSolveDuration: 30 * time.Second,
		MaxSourceBytes:   1 << 20,
	}
}

var validate = validator.New()

// ServiceOption configures optional collaborators.
type ServiceOption func(*Service)

// WithStore enables the plan cache. The caller keeps ownership of store.
func WithStore(store *planstore.Store) ServiceOption {
	return func(s *Service) { s.store = store }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.base = logger
		}
	}
}

// Service runs planning requests.
//
// Thread Safety: Safe for concurrent use. Each call builds its own graph
// and solver.
type Service struct {
	cfg    ServiceConfig
	store  *planstore.Store
	base   *slog.Logger
	logger *slog.Logger
	active atomic.Int64
}

// NewService validates cfg and creates a Service.
func NewService(cfg ServiceConfig, opts ...ServiceOption) (*Service, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	s := &Service{cfg: cfg, base: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.base.With(slog.String("component", "planner_service"))
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() ServiceConfig { return s.cfg }

// HasStore reports whether the plan cache is enabled.
func (s *Service) HasStore() bool { return s.store != nil }

// ActiveSolves returns the number of solves in flight.
func (s *Service) ActiveSolves() int64 { return s.active.Load() }

// SolveOptions tunes one solve.
type SolveOptions struct {
	// AutoExpand grows the graph until success or level-off.
	AutoExpand bool

	// MaxSolutions overrides the service default when positive.
	MaxSolutions int

	// NoCache skips the plan store lookup.
	NoCache bool
}

// SolveOutcome is the result of Service.Solve.
type SolveOutcome struct {
	SessionID   string
	Problem     string
	Fingerprint string
	Solved      bool
	Levels      int
	Solutions   [][][]string
	Text        string
	AllText     string
	Cached      bool
	Elapsed     time.Duration
}

// Solve finds plans for p.
//
// Description:
//
//	Looks the problem up in the plan store first. On a miss it builds a
//	planning graph holding level 0, runs the solver and stores the outcome,
//	including "no solution" outcomes reached by level-off or, without
//	AutoExpand, by a single extraction round.
//
// Inputs:
//   - ctx: Cancellation. MaxSolveDuration is applied on top.
//   - p: The grounded problem.
//   - opts: Per-call settings.
//
// Outputs:
//   - *SolveOutcome: The outcome. Solved is false when no plan exists.
//   - error: engine.ErrLevelLimit past MaxLevels, or context errors.
func (s *Service) Solve(ctx context.Context, p *pddl.Problem, opts SolveOptions) (*SolveOutcome, error) {
	if p == nil {
		return nil, ErrNilProblem
	}
	start := time.Now()
	s.active.Add(1)
	defer s.active.Add(-1)

	cfg := s.engineConfig()
	if opts.MaxSolutions > 0 {
		cfg.MaxSolutions = opts.MaxSolutions
	}
	out := &SolveOutcome{
		SessionID:   uuid.NewString(),
		Problem:     p.Name,
		Fingerprint: p.Fingerprint(),
	}
	session := []any{slog.String("session_id", out.SessionID), slog.String("problem", p.Name)}
	logger := s.logger.With(session...)
	cfg.Logger = s.base.With(session...)
	search := planstore.SearchKey(opts.AutoExpand, cfg.MaxSolutions, cfg.MaxLevels, cfg.StrictNegativeBase)

	if s.store != nil && !opts.NoCache {
		rec, err := s.store.Get(ctx, out.Fingerprint, search)
		switch {
		case err == nil:
			fillFromRecord(out, rec)
			out.Elapsed = time.Since(start)
			logger.Info("plan served from store", slog.String("fingerprint", out.Fingerprint))
			return out, nil
		case !errors.Is(err, planstore.ErrPlanNotFound):
			logger.Warn("plan store lookup failed", slog.String("error", err.Error()))
		}
	}

	if s.cfg.MaxSolveDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.MaxSolveDuration)
		defer cancel()
	}

	g := graph.New(p.Actions, p.Init, p.InitNeg, graph.WithLogger(cfg.Logger))
	solver, err := engine.NewSolver(g, goalsOf(p), cfg)
	if err != nil {
		return nil, err
	}
	sols, err := solver.Solve(ctx, opts.AutoExpand)
	if err != nil {
		return nil, fmt.Errorf("solving %s: %w", p.Name, err)
	}

	out.Solved = len(sols) > 0
	out.Levels = solver.Levels()
	out.Solutions = solutionNames(sols)
	out.Text = engine.FormatSolution(sols)
	out.AllText = engine.FormatAll(sols)
	out.Elapsed = time.Since(start)

	if s.store != nil {
		rec := planstore.Record{
			Fingerprint: out.Fingerprint,
			Search:      search,
			Problem:     out.Problem,
			Solved:      out.Solved,
			Levels:      out.Levels,
			Solutions:   out.Solutions,
			Text:        out.Text,
			AllText:     out.AllText,
		}
		if err := s.store.Put(ctx, rec); err != nil {
			logger.Warn("storing plan failed", slog.String("error", err.Error()))
		}
	}
	return out, nil
}

func fillFromRecord(out *SolveOutcome, rec planstore.Record) {
	out.Solved = rec.Solved
	out.Levels = rec.Levels
	out.Solutions = rec.Solutions
	out.Text = rec.Text
	out.AllText = rec.AllText
	out.Cached = true
	if out.Solutions == nil {
		out.Solutions = [][][]string{}
	}
}

func solutionNames(sols []engine.Solution) [][][]string {
	out := make([][][]string, len(sols))
	for i, sol := range sols {
		out[i] = sol.ActionNames()
	}
	return out
}

// Mutex answers whether two named nodes are mutex at level, expanding a
// fresh graph as far as needed.
func (s *Service) Mutex(ctx context.Context, p *pddl.Problem, level int, a, b string) (bool, error) {
	if p == nil {
		return false, ErrNilProblem
	}
	if err := s.checkLevel(level); err != nil {
		return false, err
	}
	solver, err := s.expandTo(ctx, p, level)
	if err != nil {
		return false, err
	}
	return solver.IsMutex(level, a, b)
}

// ExpandOutcome summarizes a graph built by Service.Expand.
type ExpandOutcome struct {
	Stats     []graph.LevelStats
	Fixpoint  bool
	GoalLevel int
}

// Expand builds up to levels action levels, stopping early at a fixpoint,
// and reports per-level statistics.
func (s *Service) Expand(ctx context.Context, p *pddl.Problem, levels int) (*ExpandOutcome, error) {
	if p == nil {
		return nil, ErrNilProblem
	}
	if err := s.checkLevel(levels); err != nil {
		return nil, err
	}

	g := graph.New(p.Actions, p.Init, p.InitNeg, graph.WithLogger(s.base))
	solver, err := engine.NewSolver(g, goalsOf(p), s.engineConfig())
	if err != nil {
		return nil, err
	}
	out := &ExpandOutcome{GoalLevel: -1}
	for solver.Levels() < levels {
		if err := solver.Expand(ctx); err != nil {
			return nil, err
		}
		if engine.IsFixpoint(g) {
			out.Fixpoint = true
			break
		}
	}

	for i := 0; i < g.LevelCount(); i++ {
		st, err := g.Stats(i)
		if err != nil {
			return nil, err
		}
		out.Stats = append(out.Stats, st)
		if out.GoalLevel < 0 && p.GoalTest(g.PositiveLiterals(i), g.NegativeLiterals(i)) &&
			g.NonMutexGoals(i, p.GoalsPos, p.GoalsNeg) {
			out.GoalLevel = i
		}
	}
	return out, nil
}

func (s *Service) expandTo(ctx context.Context, p *pddl.Problem, level int) (*engine.Solver, error) {
	g := graph.New(p.Actions, p.Init, p.InitNeg, graph.WithLogger(s.base))
	solver, err := engine.NewSolver(g, goalsOf(p), s.engineConfig())
	if err != nil {
		return nil, err
	}
	for solver.Levels() < level {
		if err := solver.Expand(ctx); err != nil {
			return nil, err
		}
	}
	return solver, nil
}

func (s *Service) checkLevel(level int) error {
	if level < 0 || (s.cfg.MaxLevels > 0 && level > s.cfg.MaxLevels) {
		return fmt.Errorf("%w: %d (max %d)", engine.ErrLevelOutOfRange, level, s.cfg.MaxLevels)
	}
	return nil
}

func (s *Service) engineConfig() engine.Config {
	return engine.Config{
		MaxSolutions:       s.cfg.MaxSolutions,
		MaxLevels:          s.cfg.MaxLevels,
		StrictNegativeBase: s.cfg.StrictNegativeBase,
		Logger:             s.base,
	}
}

func goalsOf(p *pddl.Problem) engine.Goals {
	return engine.Goals{Pos: p.GoalsPos, Neg: p.GoalsNeg, Test: p.GoalTest}
}

// ListPlans returns the cached plans.
func (s *Service) ListPlans(ctx context.Context) ([]planstore.Record, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.List(ctx)
}

// DeletePlans drops every cached plan of a fingerprint.
func (s *Service) DeletePlans(ctx context.Context, fingerprint string) (int, error) {
	if s.store == nil {
		return 0, ErrStoreDisabled
	}
	return s.store.Delete(ctx, fingerprint)
}
