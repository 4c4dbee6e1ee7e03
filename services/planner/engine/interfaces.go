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

import (
	"context"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// PlanningGraph is the leveled graph the search reads.
//
// Level 0 is the initial state. Level n >= 1 is the state after the action
// layer n, and Achievers(n, ...) returns actions of that layer. Literal
// sets returned by the graph are read-only.
//
// The search only needs action-pair and goal-set mutex checks, so the
// general node-pair query (is node A mutex with node B at level n) is not
// part of this interface. Graphs that support it implement MutexQuerier,
// which Solver.IsMutex uses; other graphs answer ErrMutexUnsupported.
type PlanningGraph interface {
	// ExpandGraph appends one level.
	ExpandGraph(ctx context.Context) error

	// LevelCount returns the number of levels, including level 0.
	LevelCount() int

	// PositiveLiterals returns the literals that may be true at level.
	PositiveLiterals(level int) model.LiteralSet

	// NegativeLiterals returns the literals that may be false at level.
	NegativeLiterals(level int) model.LiteralSet

	// Achievers returns the actions of layer level producing lit with the
	// given polarity, in the order the search should try them.
	Achievers(level int, lit model.Literal, positive bool) []model.Action

	// ActionsMutex reports whether two actions of layer level are mutex.
	ActionsMutex(level int, a, b model.Action) bool

	// NonMutexGoals reports whether no two goals are mutex at level.
	NonMutexGoals(level int, pos, neg []model.Literal) bool
}

// MutexQuerier is implemented by graphs that can answer mutex queries by
// node name, such as "on(a,b)", "not clear(b)" or "move(a,table,b)".
type MutexQuerier interface {
	MutexByName(level int, a, b string) (bool, error)
}

// GoalTest decides whether a state satisfies the goal.
type GoalTest func(pos, neg model.LiteralSet) bool

// Goals are the literals the plan must make true (Pos) and false (Neg).
type Goals struct {
	Pos []model.Literal
	Neg []model.Literal

	// Test overrides the default goal test, which requires every positive
	// goal in the positive set and every negative goal in the negative set.
	Test GoalTest
}

func (g Goals) satisfied(pos, neg model.LiteralSet) bool {
	if g.Test != nil {
		return g.Test(pos, neg)
	}
	return pos.ContainsAll(g.Pos) && neg.ContainsAll(g.Neg)
}
