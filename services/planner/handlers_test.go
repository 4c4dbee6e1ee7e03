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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(svc))
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), true))

	w := doJSON(t, router, http.MethodGet, "/v1/plan/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
	assert.True(t, resp.Store)
}

func TestHandleSolve(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), true))
	body := SolveRequest{Domain: testdata(t, "blocks-domain.pddl"), Problem: testdata(t, "blocks-p03.pddl")}

	w := doJSON(t, router, http.MethodPost, "/v1/plan/solve", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	resp := decode[SolveResponse](t, w)
	assert.True(t, resp.Solved)
	assert.False(t, resp.Cached)
	assert.Equal(t, 3, resp.Levels)
	require.NotEmpty(t, resp.Solutions)
	assert.Equal(t, towerPlan, resp.Solutions[0])
	assert.NotEmpty(t, resp.SessionID)

	w = doJSON(t, router, http.MethodPost, "/v1/plan/solve", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[SolveResponse](t, w).Cached)
}

func TestHandleSolve_NoAutoExpand(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), false))
	off := false
	body := SolveRequest{
		Domain:     testdata(t, "blocks-domain.pddl"),
		Problem:    testdata(t, "blocks-p03.pddl"),
		AutoExpand: &off,
	}

	w := doJSON(t, router, http.MethodPost, "/v1/plan/solve", body)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SolveResponse](t, w)
	assert.False(t, resp.Solved)
	assert.Zero(t, resp.Levels)
	assert.Empty(t, resp.Solutions)
	assert.Equal(t, "No solution found!", resp.Text)
}

func TestHandleSolve_Errors(t *testing.T) {
	small := DefaultServiceConfig()
	small.MaxSourceBytes = 16
	limited := DefaultServiceConfig()
	limited.MaxLevels = 2

	domain := testdata(t, "blocks-domain.pddl")
	problem := testdata(t, "blocks-p03.pddl")

	tests := []struct {
		name   string
		cfg    ServiceConfig
		body   any
		status int
		code   string
	}{
		{"missing fields", DefaultServiceConfig(), map[string]string{"domain": domain}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad pddl", DefaultServiceConfig(), SolveRequest{Domain: "(define", Problem: problem}, http.StatusBadRequest, "INVALID_PROBLEM"},
		{"negative max", DefaultServiceConfig(), map[string]any{"domain": domain, "problem": problem, "max_solutions": -1}, http.StatusBadRequest, "INVALID_REQUEST"},
		{"too large", small, SolveRequest{Domain: domain, Problem: problem}, http.StatusRequestEntityTooLarge, "SOURCE_TOO_LARGE"},
		{"level limit", limited, SolveRequest{Domain: domain, Problem: problem}, http.StatusUnprocessableEntity, "LEVEL_LIMIT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(newTestService(t, tt.cfg, false))
			w := doJSON(t, router, http.MethodPost, "/v1/plan/solve", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestHandleMutex(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), false))
	req := MutexRequest{
		Domain:  testdata(t, "blocks-domain.pddl"),
		Problem: testdata(t, "blocks-p03.pddl"),
		Level:   1,
		A:       "movetotable(c,a)",
		B:       "move(b,table,c)",
	}

	w := doJSON(t, router, http.MethodPost, "/v1/plan/mutex", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[MutexResponse](t, w).Mutex)

	req.A = "teleport(a)"
	w = doJSON(t, router, http.MethodPost, "/v1/plan/mutex", req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_NODE", decode[ErrorResponse](t, w).Code)

	req.A = "clear(c)"
	w = doJSON(t, router, http.MethodPost, "/v1/plan/mutex", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INCOMPARABLE_NODES", decode[ErrorResponse](t, w).Code)
}

func TestHandleExpand(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), false))
	req := ExpandRequest{
		Domain:  testdata(t, "blocks-domain.pddl"),
		Problem: testdata(t, "blocks-p03.pddl"),
		Levels:  3,
	}

	w := doJSON(t, router, http.MethodPost, "/v1/plan/expand", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ExpandResponse](t, w)
	assert.Len(t, resp.Levels, 4)
	assert.Equal(t, 3, resp.GoalLevel)

	req.Levels = 0
	w = doJSON(t, router, http.MethodPost, "/v1/plan/expand", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePlans(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), true))
	solve := SolveRequest{Domain: testdata(t, "blocks-domain.pddl"), Problem: testdata(t, "blocks-p03.pddl")}
	w := doJSON(t, router, http.MethodPost, "/v1/plan/solve", solve)
	require.Equal(t, http.StatusOK, w.Code)
	fp := decode[SolveResponse](t, w).Fingerprint

	w = doJSON(t, router, http.MethodGet, "/v1/plan/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ListPlansResponse](t, w)
	require.Len(t, list.Plans, 1)
	assert.Equal(t, fp, list.Plans[0].Fingerprint)
	assert.True(t, list.Plans[0].Solved)

	w = doJSON(t, router, http.MethodDelete, "/v1/plan/plans/"+fp, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[DeletePlanResponse](t, w).Deleted)

	w = doJSON(t, router, http.MethodDelete, "/v1/plan/plans/"+fp, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/v1/plan/plans/not-a-fingerprint", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FINGERPRINT", decode[ErrorResponse](t, w).Code)
}

func TestHandlePlans_StoreDisabled(t *testing.T) {
	router := setupTestRouter(newTestService(t, DefaultServiceConfig(), false))
	w := doJSON(t, router, http.MethodGet, "/v1/plan/plans", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_DISABLED", decode[ErrorResponse](t, w).Code)
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(newTestService(t, DefaultServiceConfig(), false), RouterConfig{ServiceName: "graphplan-test"})
	w := doJSON(t, router, http.MethodGet, "/v1/plan/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_RateLimited(t *testing.T) {
	router := NewRouter(newTestService(t, DefaultServiceConfig(), false), RouterConfig{
		RateLimit: RateLimitConfig{PerSecond: 0.001, Burst: 2},
	})
	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodGet, "/v1/plan/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, router, http.MethodGet, "/v1/plan/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode[ErrorResponse](t, w).Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
