// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".aleutian", "graphplan.yaml")

	cfg, created, err := Load(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)
	assert.Equal(t, DefaultConfig(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk GraphPlanConfig
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, 30*time.Second, onDisk.Server.MaxSolveTime)
	assert.Equal(t, "prometheus", onDisk.Telemetry.MetricExporter)

	_, created, err = Load(path)
	require.NoError(t, err)
	assert.False(t, created, "second load reads the existing file")
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  auto_expand: false
  max_solutions: 3
logging:
  level: DEBUG
server:
  addr: "127.0.0.1:9000"
  max_solve_time: 5s
`), 0644))

	cfg, created, err := Load(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, cfg.Search.AutoExpand)
	assert.Equal(t, 3, cfg.Search.MaxSolutions)
	assert.Equal(t, 64, cfg.Search.MaxLevels)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.MaxSolveTime)
	assert.True(t, cfg.Store.Enabled)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative max levels", "search:\n  max_levels: -1\n"},
		{"unknown log level", "logging:\n  level: loud\n"},
		{"unknown trace exporter", "telemetry:\n  trace_exporter: jaeger\n"},
		{"otlp without endpoint", "telemetry:\n  trace_exporter: otlp\n  otlp_endpoint: \"\"\n"},
		{"store without path", "store:\n  enabled: true\n  path: \"\"\n"},
		{"zero parallelism", "search:\n  parallelism: 0\n"},
		{"empty addr", "server:\n  addr: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_InMemoryStoreNeedsNoPath(t *testing.T) {
	cfg, err := Parse([]byte("store:\n  enabled: true\n  in_memory: true\n  path: \"\"\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Store.InMemory)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("search: [unterminated"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "graphplan.yaml", filepath.Base(DefaultPath()))
	assert.Equal(t, DefaultDir(), filepath.Dir(DefaultPath()))
}
