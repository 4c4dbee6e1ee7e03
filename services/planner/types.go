// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"time"

	"github.com/AleutianAI/AleutianPlan/services/planner/graph"
)

// SolveRequest is the body of POST /v1/plan/solve.
type SolveRequest struct {
	// Domain is the PDDL domain source.
	Domain string `json:"domain" binding:"required"`

	// Problem is the PDDL problem source.
	Problem string `json:"problem" binding:"required"`

	// AutoExpand grows the graph until success or level-off. Default true.
	AutoExpand *bool `json:"auto_expand,omitempty"`

	// MaxSolutions bounds the alternatives collected. 0 uses the service
	// default.
	MaxSolutions int `json:"max_solutions,omitempty" binding:"gte=0,lte=10000"`

	// NoCache bypasses the plan store lookup. The result is still stored.
	NoCache bool `json:"no_cache,omitempty"`
}

// SolveResponse is the result of a solve.
type SolveResponse struct {
	SessionID   string `json:"session_id"`
	Problem     string `json:"problem"`
	Fingerprint string `json:"fingerprint"`
	Solved      bool   `json:"solved"`
	Levels      int    `json:"levels"`

	// Solutions holds, per solution, the action names of each step.
	Solutions [][][]string `json:"solutions"`

	// Text is the rendered first solution.
	Text string `json:"text"`

	Cached    bool  `json:"cached"`
	ElapsedMs int64 `json:"elapsed_ms"`
}

// MutexRequest is the body of POST /v1/plan/mutex.
type MutexRequest struct {
	Domain  string `json:"domain" binding:"required"`
	Problem string `json:"problem" binding:"required"`

	// Level is the graph level to query. The graph is expanded to reach it.
	Level int `json:"level" binding:"gte=0"`

	// A and B name two literals ("on(a,b)", "not clear(c)") or two actions
	// ("move(a,table,b)", "P-clear(c)").
	A string `json:"a" binding:"required"`
	B string `json:"b" binding:"required"`
}

// MutexResponse answers a mutex query.
type MutexResponse struct {
	Level int    `json:"level"`
	A     string `json:"a"`
	B     string `json:"b"`
	Mutex bool   `json:"mutex"`
}

// ExpandRequest is the body of POST /v1/plan/expand.
type ExpandRequest struct {
	Domain  string `json:"domain" binding:"required"`
	Problem string `json:"problem" binding:"required"`

	// Levels is how many action levels to build at most.
	Levels int `json:"levels" binding:"required,gte=1"`
}

// ExpandResponse describes the built graph.
type ExpandResponse struct {
	Levels []graph.LevelStats `json:"levels"`

	// Fixpoint is true when expansion stopped because the graph leveled off.
	Fixpoint bool `json:"fixpoint"`

	// GoalLevel is the first level where the goals hold pairwise non-mutex,
	// or -1.
	GoalLevel int `json:"goal_level"`
}

// PlanSummary lists one cached plan.
type PlanSummary struct {
	Fingerprint string    `json:"fingerprint"`
	Search      string    `json:"search"`
	Problem     string    `json:"problem"`
	Solved      bool      `json:"solved"`
	Levels      int       `json:"levels"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListPlansResponse is the body of GET /v1/plan/plans.
type ListPlansResponse struct {
	Plans []PlanSummary `json:"plans"`
}

// DeletePlanResponse is the body of DELETE /v1/plan/plans/:fingerprint.
type DeletePlanResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse is the body of GET /v1/plan/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Store        bool   `json:"store"`
	ActiveSolves int64  `json:"active_solves"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`
}
