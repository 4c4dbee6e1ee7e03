// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "log/slog"

// Config configures extraction and the solve loop.
type Config struct {
	// MaxSolutions bounds how many alternative plans are collected at the
	// level-1 boundary. 0 means unbounded.
	MaxSolutions int

	// MaxLevels stops Solve with ErrLevelLimit once the graph has this many
	// action levels. 0 means unbounded.
	MaxLevels int

	// StrictNegativeBase also requires the accumulated negative goals to be
	// in the initial negative set when the search reaches level 0. Off by
	// default: only positive goals are checked there.
	StrictNegativeBase bool

	// Logger receives search diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns an unbounded configuration.
func DefaultConfig() Config {
	return Config{}
}

func (c Config) logger(component string) *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("component", component))
}
