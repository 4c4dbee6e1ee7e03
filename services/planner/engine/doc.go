// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements GraphPlan solution extraction.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Solver                                                       │
//	│   goal test at frontier ──► Extractor ──► []Solution         │
//	│        │ (fail / absent)        │                            │
//	│        ▼                        ▼                            │
//	│   PlanningGraph.ExpandGraph   NogoodCache + success memo     │
//	│        │                                                     │
//	│        ▼                                                     │
//	│   IsFixpoint ──► stop with no solution                       │
//	└──────────────────────────────────────────────────────────────┘
//
// The engine never builds the planning graph or computes mutexes. It reads
// them through the PlanningGraph interface, so any graph implementation (or
// a hand-built fake in tests) can drive it.
//
// Search Contract:
//
//	Extract runs a memoized backward search. For each goal it collects the
//	achievers in the action layer below the goal level, enumerates the
//	cross product of those candidates, drops sets holding a mutex pair and
//	recurses on the union of the surviving set's preconditions. A goal
//	set proven unreachable at a level is recorded as a nogood; nogoods and
//	memoized successes are valid only until the graph grows.
//
// Thread Safety:
//
//	Solver and Extractor are NOT safe for concurrent use. One search
//	session owns one graph and one cache. Run independent sessions in
//	parallel instead.
package engine
