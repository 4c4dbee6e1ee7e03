// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the graphplan CLI configuration from YAML.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// GraphPlanConfig is the on-disk configuration of the graphplan CLI.
type GraphPlanConfig struct {
	// Search: defaults for solve, expand and mutex
	Search SearchConfig `yaml:"search"`

	// Logging: console level and optional log directory
	Logging LoggingConfig `yaml:"logging"`

	// Telemetry: trace and metric exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Store: the BadgerDB plan cache
	Store StoreConfig `yaml:"store"`

	// Server: settings for `graphplan serve`
	Server ServerConfig `yaml:"server"`
}

type SearchConfig struct {
	AutoExpand         bool          `yaml:"auto_expand"`
	MaxSolutions       int           `yaml:"max_solutions" validate:"gte=0"`
	MaxLevels          int           `yaml:"max_levels" validate:"gte=0"`
	StrictNegativeBase bool          `yaml:"strict_negative_base"`
	Timeout            time.Duration `yaml:"timeout" validate:"gte=0"` // 0 = no timeout
	Parallelism        int           `yaml:"parallelism" validate:"gte=1,lte=256"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.aleutian/logs
	JSON  bool   `yaml:"json"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none otlp stdout"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none prometheus stdout"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty" validate:"required_if=TraceExporter otlp"`
	MetricsFile    string `yaml:"metrics_file,omitempty"` // Prometheus textfile written on exit
}

type StoreConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Path     string        `yaml:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory bool          `yaml:"in_memory"`
	TTL      time.Duration `yaml:"ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	Debug          bool          `yaml:"debug"`
	MaxSolveTime   time.Duration `yaml:"max_solve_time" validate:"gte=0"`
	MaxSourceBytes int           `yaml:"max_source_bytes" validate:"gte=0"`
	RateLimit      float64       `yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 = unlimited
	RateBurst      int           `yaml:"rate_burst" validate:"gte=0"`
}

// DefaultDir is the directory holding the config file and the plan store.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aleutian"
	}
	return filepath.Join(home, ".aleutian")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "graphplan.yaml")
}

func DefaultConfig() GraphPlanConfig {
	return GraphPlanConfig{
		Search: SearchConfig{
			AutoExpand:  true,
			MaxLevels:   64,
			Parallelism: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			OTLPEndpoint:   "localhost:4317",
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultDir(), "planstore"),
			TTL:     7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":12230",
			MaxSolveTime:   30 * time.Second,
			MaxSourceBytes: 1 << 20,
			RateLimit:      20,
			RateBurst:      40,
		},
	}
}
