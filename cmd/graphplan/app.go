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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/cmd/graphplan/config"
	"github.com/AleutianAI/AleutianPlan/pkg/logging"
	"github.com/AleutianAI/AleutianPlan/pkg/ux"
	"github.com/AleutianAI/AleutianPlan/services/planner"
	"github.com/AleutianAI/AleutianPlan/services/planner/planstore"
	"github.com/AleutianAI/AleutianPlan/services/planner/storage/badger"
	"github.com/AleutianAI/AleutianPlan/services/planner/telemetry"
)

// app is the per-invocation runtime: config, logging, telemetry, the plan
// store and the planning service.
type app struct {
	cfg      config.GraphPlanConfig
	logger   *logging.Logger
	store    *planstore.Store
	svc      *planner.Service
	out      io.Writer
	printer  *ux.Printer
	jsonOut  bool
	shutdown func(context.Context) error
}

// withApp builds an app for cmd, runs fn and tears the app down.
func withApp(cmd *cobra.Command, opts *rootOptions, serving bool, fn func(a *app) error) (err error) {
	a, err := newApp(cmd, opts, serving)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func newApp(cmd *cobra.Command, opts *rootOptions, serving bool) (*app, error) {
	cfg, created, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if created {
		path := opts.configPath
		if path == "" {
			path = config.DefaultPath()
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "First run detected, created the config at %s\n", path)
	}

	levelName := cfg.Logging.Level
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "graphplan",
		JSON:    cfg.Logging.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		out:     cmd.OutOrStdout(),
		printer: ux.NewPrinter(cmd.OutOrStdout(), false),
		jsonOut: opts.jsonOut,
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = planner.ServiceVersion
	tcfg.TraceExporter = cfg.Telemetry.TraceExporter
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	tcfg.Writer = cmd.ErrOrStderr()
	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.shutdown = shutdown

	svcOpts := []planner.ServiceOption{planner.WithLogger(logger.Slog())}
	if cfg.Store.Enabled {
		dbCfg := badger.DefaultConfig(cfg.Store.Path)
		if cfg.Store.InMemory {
			dbCfg = badger.InMemoryConfig()
		}
		store, err := planstore.Open(planstore.Config{DB: dbCfg, TTL: cfg.Store.TTL, Logger: logger.Slog()})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.store = store
		svcOpts = append(svcOpts, planner.WithStore(store))
	}

	a.svc, err = planner.NewService(serviceConfig(cfg, serving), svcOpts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// serviceConfig maps the file config onto the service. The server applies
// its own time and size limits; CLI runs use the search timeout.
func serviceConfig(cfg config.GraphPlanConfig, serving bool) planner.ServiceConfig {
	scfg := planner.ServiceConfig{
		MaxSolutions:       cfg.Search.MaxSolutions,
		MaxLevels:          cfg.Search.MaxLevels,
		StrictNegativeBase: cfg.Search.StrictNegativeBase,
		MaxSolveDuration:   cfg.Search.Timeout,
	}
	if serving {
		scfg.MaxSolveDuration = cfg.Server.MaxSolveTime
		scfg.MaxSourceBytes = cfg.Server.MaxSourceBytes
	}
	return scfg
}

// Close releases the store, flushes telemetry and closes the log file.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if path := a.cfg.Telemetry.MetricsFile; path != "" && a.shutdown != nil {
		if err := telemetry.WriteTextfile(path); err != nil {
			a.logger.Warn("writing metrics file failed", slog.String("error", err.Error()))
		}
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.shutdown(ctx))
		cancel()
	}
	errs = append(errs, a.logger.Close())
	return errors.Join(errs...)
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
