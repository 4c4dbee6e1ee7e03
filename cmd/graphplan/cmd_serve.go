// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/planner"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning HTTP API",
		Long: `Starts the HTTP API under /v1/plan (solve, mutex, expand, plans,
health) and, with the Prometheus exporter, GET /metrics. SIGINT or SIGTERM
drains in-flight requests before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, true, func(a *app) error {
				if addr != "" {
					a.cfg.Server.Addr = addr
				}
				ln, err := net.Listen("tcp", a.cfg.Server.Addr)
				if err != nil {
					return err
				}
				return a.serve(cmd.Context(), ln)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :12230)")
	return cmd
}

// serve runs the API on ln until ctx is cancelled, then shuts down
// gracefully.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	if a.cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := planner.NewRouter(a.svc, planner.RouterConfig{
		ServiceName: "graphplan",
		RateLimit: planner.RateLimitConfig{
			PerSecond: a.cfg.Server.RateLimit,
			Burst:     a.cfg.Server.RateBurst,
		},
	})

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info("Starting graphplan server",
		slog.String("address", ln.Addr().String()),
		slog.String("version", planner.ServiceVersion),
		slog.Bool("store", a.store != nil))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down graphplan server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
