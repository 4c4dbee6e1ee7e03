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
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds request rates per client IP.
type RateLimitConfig struct {
	// PerSecond is the sustained rate. 0 disables limiting.
	PerSecond float64

	// Burst defaults to ceil(PerSecond) when zero.
	Burst int

	// IdleTTL drops limiters of clients idle this long. Defaults to 10m.
	IdleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP.
type ipRateLimiter struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	lastGC   time.Time
	now      func() time.Time
}

func newIPRateLimiter(cfg RateLimitConfig) *ipRateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = int(math.Ceil(cfg.PerSecond))
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &ipRateLimiter{
		cfg:      cfg,
		limiters: make(map[string]*clientLimiter),
		now:      time.Now,
	}
}

func (r *ipRateLimiter) get(client string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastGC) > r.cfg.IdleTTL {
		for k, cl := range r.limiters {
			if now.Sub(cl.lastSeen) > r.cfg.IdleTTL {
				delete(r.limiters, k)
			}
		}
		r.lastGC = now
	}

	cl, ok := r.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(r.cfg.PerSecond), r.cfg.Burst)}
		r.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// RateLimit returns middleware answering 429 with a Retry-After header once
// a client exceeds cfg. It is a pass-through when cfg.PerSecond is zero.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.PerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiters := newIPRateLimiter(cfg)
	return func(c *gin.Context) {
		limiter := limiters.get(c.ClientIP())
		if limiter.Allow() {
			c.Next()
			return
		}
		res := limiter.Reserve()
		delay := res.Delay()
		res.Cancel()

		c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(delay.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
			Error: fmt.Sprintf("rate limit exceeded: %.3g requests per second", cfg.PerSecond),
			Code:  "RATE_LIMITED",
		})
	}
}
