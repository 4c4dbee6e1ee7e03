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

import "errors"

// Sentinel errors for the search engine.
var (
	// ErrNilGraph is returned when a solver is created without a graph.
	ErrNilGraph = errors.New("planning graph must not be nil")

	// ErrLevelOutOfRange is returned when extraction targets a level the
	// graph does not have.
	ErrLevelOutOfRange = errors.New("level out of range")

	// ErrLevelLimit is returned when Solve reaches Config.MaxLevels
	// without a solution or a fixpoint.
	ErrLevelLimit = errors.New("level limit reached")

	// ErrMutexUnsupported is returned by Solver.IsMutex when the graph
	// cannot resolve node names.
	ErrMutexUnsupported = errors.New("graph does not support mutex queries by name")
)

// SearchError wraps a failure with the component and operation that hit it.
type SearchError struct {
	Component string
	Operation string
	Err       error
}

func (e *SearchError) Error() string {
	return e.Component + "." + e.Operation + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SearchError) Unwrap() error {
	return e.Err
}
