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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// RegisterRoutes registers the /v1/plan endpoints on rg.
//
// Endpoints:
//
//	POST   /v1/plan/solve                 - Solve a domain/problem pair
//	POST   /v1/plan/mutex                 - Mutex query at a level
//	POST   /v1/plan/expand                - Per-level graph statistics
//	GET    /v1/plan/plans                 - List cached plans
//	DELETE /v1/plan/plans/:fingerprint    - Drop cached plans of a problem
//	GET    /v1/plan/health                - Health check
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	plan := rg.Group("/plan")
	{
		plan.POST("/solve", h.HandleSolve)
		plan.POST("/mutex", h.HandleMutex)
		plan.POST("/expand", h.HandleExpand)

		plan.GET("/plans", h.HandleListPlans)
		plan.DELETE("/plans/:fingerprint", h.HandleDeletePlan)

		plan.GET("/health", h.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName names the otelgin spans.
	ServiceName string

	// RateLimit applies to the /v1 API only.
	RateLimit RateLimitConfig
}

// NewRouter builds the gin engine serving svc, with recovery, OTel request
// spans, per-client rate limiting and, when the Prometheus exporter is
// active, GET /metrics.
func NewRouter(svc *Service, cfg RouterConfig) *gin.Engine {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "graphplan"
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}
	v1 := router.Group("/v1")
	v1.Use(RateLimit(cfg.RateLimit))
	RegisterRoutes(v1, NewHandlers(svc))
	return router
}
