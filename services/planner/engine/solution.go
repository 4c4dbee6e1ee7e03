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
	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// Step is the set of actions executed in parallel at one level.
type Step struct {
	Level   int
	Actions []model.Action
}

// Names returns the keys of the step's non-persistence actions.
func (s Step) Names() []string {
	return model.ActionNames(s.Actions)
}

// Solution is one plan, stored from the goal level down to level 1.
//
// Solutions are immutable once returned.
type Solution struct {
	Steps []Step
}

// Plan returns the steps in execution order, level 1 first.
func (s Solution) Plan() []Step {
	out := make([]Step, len(s.Steps))
	for i, st := range s.Steps {
		out[len(s.Steps)-1-i] = st
	}
	return out
}

// ActionNames returns the non-persistence action keys per step, in
// execution order.
func (s Solution) ActionNames() [][]string {
	plan := s.Plan()
	out := make([][]string, len(plan))
	for i, st := range plan {
		out[i] = st.Names()
	}
	return out
}

// Len returns the number of steps.
func (s Solution) Len() int {
	return len(s.Steps)
}

// Result is the outcome of one extraction.
type Result struct {
	// Solutions holds every plan found; empty when the goals are exhausted.
	Solutions []Solution
}

// Found reports whether at least one solution was found.
func (r Result) Found() bool {
	return len(r.Solutions) > 0
}

// Exhausted reports whether the goals are unreachable at this level.
func (r Result) Exhausted() bool {
	return len(r.Solutions) == 0
}
