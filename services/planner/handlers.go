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
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianPlan/pkg/validation"
	"github.com/AleutianAI/AleutianPlan/services/planner/engine"
	"github.com/AleutianAI/AleutianPlan/services/planner/graph"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
	"github.com/AleutianAI/AleutianPlan/services/planner/planstore"
	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// Handlers contains the HTTP handlers for the planning API.
type Handlers struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandlers creates handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc, logger: svc.base.With(slog.String("component", "planner_api"))}
}

// HandleSolve handles POST /v1/plan/solve.
//
// Response:
//
//	200 OK: SolveResponse (solved or not)
//	400 Bad Request: malformed body or PDDL
//	413 Request Entity Too Large: sources over MaxSourceBytes
//	422 Unprocessable Entity: level limit reached
//	504 Gateway Timeout: MaxSolveDuration exceeded
func (h *Handlers) HandleSolve(c *gin.Context) {
	logger := h.requestLogger(c, "HandleSolve")

	var req SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	p, ok := h.parse(c, logger, req.Domain, req.Problem)
	if !ok {
		return
	}

	autoExpand := true
	if req.AutoExpand != nil {
		autoExpand = *req.AutoExpand
	}
	out, err := h.svc.Solve(c.Request.Context(), p, SolveOptions{
		AutoExpand:   autoExpand,
		MaxSolutions: req.MaxSolutions,
		NoCache:      req.NoCache,
	})
	if err != nil {
		h.writeError(c, logger, err)
		return
	}

	logger.Info("solve completed",
		slog.String("session_id", out.SessionID),
		slog.Bool("solved", out.Solved),
		slog.Bool("cached", out.Cached),
		slog.Int("levels", out.Levels))
	c.JSON(http.StatusOK, SolveResponse{
		SessionID:   out.SessionID,
		Problem:     out.Problem,
		Fingerprint: out.Fingerprint,
		Solved:      out.Solved,
		Levels:      out.Levels,
		Solutions:   out.Solutions,
		Text:        out.Text,
		Cached:      out.Cached,
		ElapsedMs:   out.Elapsed.Milliseconds(),
	})
}

// HandleMutex handles POST /v1/plan/mutex.
func (h *Handlers) HandleMutex(c *gin.Context) {
	logger := h.requestLogger(c, "HandleMutex")

	var req MutexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	p, ok := h.parse(c, logger, req.Domain, req.Problem)
	if !ok {
		return
	}

	m, err := h.svc.Mutex(c.Request.Context(), p, req.Level, req.A, req.B)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, MutexResponse{Level: req.Level, A: req.A, B: req.B, Mutex: m})
}

// HandleExpand handles POST /v1/plan/expand.
func (h *Handlers) HandleExpand(c *gin.Context) {
	logger := h.requestLogger(c, "HandleExpand")

	var req ExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	p, ok := h.parse(c, logger, req.Domain, req.Problem)
	if !ok {
		return
	}

	out, err := h.svc.Expand(c.Request.Context(), p, req.Levels)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, ExpandResponse{Levels: out.Stats, Fixpoint: out.Fixpoint, GoalLevel: out.GoalLevel})
}

// HandleListPlans handles GET /v1/plan/plans.
func (h *Handlers) HandleListPlans(c *gin.Context) {
	logger := h.requestLogger(c, "HandleListPlans")

	recs, err := h.svc.ListPlans(c.Request.Context())
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	resp := ListPlansResponse{Plans: make([]PlanSummary, 0, len(recs))}
	for _, r := range recs {
		resp.Plans = append(resp.Plans, PlanSummary{
			Fingerprint: r.Fingerprint,
			Search:      r.Search,
			Problem:     r.Problem,
			Solved:      r.Solved,
			Levels:      r.Levels,
			CreatedAt:   r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDeletePlan handles DELETE /v1/plan/plans/:fingerprint.
func (h *Handlers) HandleDeletePlan(c *gin.Context) {
	logger := h.requestLogger(c, "HandleDeletePlan")

	fp, err := validation.SanitizeFingerprint(c.Param("fingerprint"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_FINGERPRINT"})
		return
	}
	n, err := h.svc.DeletePlans(c.Request.Context(), fp)
	if err != nil {
		h.writeError(c, logger, err)
		return
	}
	if n == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no cached plan for fingerprint", Code: "PLAN_NOT_FOUND"})
		return
	}
	c.JSON(http.StatusOK, DeletePlanResponse{Deleted: n})
}

// HandleHealth handles GET /v1/plan/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Version:      ServiceVersion,
		Store:        h.svc.HasStore(),
		ActiveSolves: h.svc.ActiveSolves(),
	})
}

func (h *Handlers) parse(c *gin.Context, logger *slog.Logger, domain, problem string) (*pddl.Problem, bool) {
	if limit := h.svc.cfg.MaxSourceBytes; limit > 0 && len(domain)+len(problem) > limit {
		h.writeError(c, logger, ErrSourceTooLarge)
		return nil, false
	}
	p, err := pddl.Parse(domain, problem)
	if err != nil {
		h.writeError(c, logger, err)
		return nil, false
	}
	return p, true
}

// writeError maps service errors to status codes.
func (h *Handlers) writeError(c *gin.Context, logger *slog.Logger, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, pddl.ErrInvalidProblem), errors.Is(err, pddl.ErrDomainMismatch):
		status, code = http.StatusBadRequest, "INVALID_PROBLEM"
	case errors.Is(err, ErrSourceTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "SOURCE_TOO_LARGE"
	case errors.Is(err, engine.ErrLevelOutOfRange), errors.Is(err, graph.ErrLevelOutOfRange):
		status, code = http.StatusBadRequest, "LEVEL_OUT_OF_RANGE"
	case errors.Is(err, graph.ErrUnknownNode):
		status, code = http.StatusNotFound, "UNKNOWN_NODE"
	case errors.Is(err, graph.ErrIncomparableNodes):
		status, code = http.StatusBadRequest, "INCOMPARABLE_NODES"
	case errors.Is(err, engine.ErrLevelLimit):
		status, code = http.StatusUnprocessableEntity, "LEVEL_LIMIT"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, context.Canceled):
		status, code = 499, "CANCELLED"
	case errors.Is(err, ErrStoreDisabled):
		status, code = http.StatusServiceUnavailable, "STORE_DISABLED"
	case errors.Is(err, planstore.ErrPlanNotFound):
		status, code = http.StatusNotFound, "PLAN_NOT_FOUND"
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.String("error", err.Error()))
	} else {
		logger.Warn("request rejected", slog.String("error", err.Error()), slog.String("code", code))
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func (h *Handlers) requestLogger(c *gin.Context, handler string) *slog.Logger {
	logger := h.logger.With(
		slog.String("request_id", getOrCreateRequestID(c)),
		slog.String("handler", handler))
	return telemetry.LoggerWithTrace(c.Request.Context(), logger)
}

func getOrCreateRequestID(c *gin.Context) string {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Header("X-Request-ID", id)
	return id
}
