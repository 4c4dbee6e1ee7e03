// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides a leveled STRIPS planning graph.
//
// Level 0 holds the initial state. Each expansion appends a level n+1 whose
// action layer contains a persistence action for every literal of state n
// plus every ground action applicable in state n, and whose state is the
// union of those actions' effects. Positive and negative literals are kept
// in separate sets; a literal's polarity is decided by membership.
//
// # Mutex Relations
//
// Two actions of a layer are mutex on inconsistent effects, interference or
// competing needs. Two literals of a state are mutex when they are opposite
// polarities of one atom or when every pair of their achievers is mutex.
// Both relations are symmetric and irreflexive.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use. Levels are immutable once
// appended, so a *Level obtained from Level() may be read concurrently.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrLevelOutOfRange is returned when a level index does not exist.
	ErrLevelOutOfRange = errors.New("level out of range")

	// ErrUnknownNode is returned when a node name matches no literal or
	// action of the requested level.
	ErrUnknownNode = errors.New("unknown node")

	// ErrIncomparableNodes is returned when a mutex query mixes a literal
	// and an action.
	ErrIncomparableNodes = errors.New("mutex query needs two literals or two actions")
)
