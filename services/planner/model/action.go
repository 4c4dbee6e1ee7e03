// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"sort"
	"strings"
)

// PersistencePrefix marks synthetic no-op actions. Names carrying it are
// filtered from human-readable plans.
const PersistencePrefix = "P-"

// negatedPrefix is prepended to the predicate of a negative persistence.
const negatedPrefix = "not-"

// Action is a ground (or schematic) STRIPS action.
type Action struct {
	// Name is the operator name, e.g. "move".
	Name string

	// Args are the operator arguments in parameter order.
	Args []string

	// PrecondPos must be in the positive literal set to apply the action.
	PrecondPos []Literal

	// PrecondNeg must be in the negative literal set to apply the action.
	PrecondNeg []Literal

	// Add are the literals made true.
	Add []Literal

	// Del are the literals made false.
	Del []Literal
}

// Key returns the canonical signature "name(a,b)". Two actions with the same
// key are the same node of the planning graph.
func (a Action) Key() string {
	return Literal{Predicate: a.Name, Args: a.Args}.Key()
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return a.Key()
}

// IsPersistence reports whether the action is a synthetic no-op.
func (a Action) IsPersistence() bool {
	return strings.HasPrefix(a.Name, PersistencePrefix)
}

// Persistence builds the no-op action carrying lit unchanged to the next
// level. For a positive literal it requires and adds lit; for a negative one
// it requires lit in the negative set and deletes it.
func Persistence(lit Literal, positive bool) Action {
	if positive {
		return Action{
			Name:       PersistencePrefix + lit.Predicate,
			Args:       lit.Args,
			PrecondPos: []Literal{lit},
			Add:        []Literal{lit},
		}
	}
	return Action{
		Name:       PersistencePrefix + negatedPrefix + lit.Predicate,
		Args:       lit.Args,
		PrecondNeg: []Literal{lit},
		Del:        []Literal{lit},
	}
}

// Adds reports whether the action adds lit.
func (a Action) Adds(lit Literal) bool {
	return containsLiteral(a.Add, lit)
}

// Deletes reports whether the action deletes lit.
func (a Action) Deletes(lit Literal) bool {
	return containsLiteral(a.Del, lit)
}

// Requires reports whether lit is a precondition with the given polarity.
func (a Action) Requires(lit Literal, positive bool) bool {
	if positive {
		return containsLiteral(a.PrecondPos, lit)
	}
	return containsLiteral(a.PrecondNeg, lit)
}

// Ground substitutes binding into every literal of a schematic action. Args
// is replaced by the bound parameter values.
func (a Action) Ground(params []string, binding map[string]string) Action {
	args := make([]string, len(params))
	for i, p := range params {
		if v, ok := binding[p]; ok {
			args[i] = v
		} else {
			args[i] = p
		}
	}
	return Action{
		Name:       a.Name,
		Args:       args,
		PrecondPos: substituteAll(a.PrecondPos, binding),
		PrecondNeg: substituteAll(a.PrecondNeg, binding),
		Add:        substituteAll(a.Add, binding),
		Del:        substituteAll(a.Del, binding),
	}
}

// SortActions sorts actions in place by key.
func SortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Key() < actions[j].Key()
	})
}

// ActionNames returns the keys of the non-persistence actions, in order.
func ActionNames(actions []Action) []string {
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.IsPersistence() {
			continue
		}
		names = append(names, a.Key())
	}
	return names
}

func substituteAll(lits []Literal, binding map[string]string) []Literal {
	if len(lits) == 0 {
		return nil
	}
	out := make([]Literal, len(lits))
	for i, l := range lits {
		out[i] = l.Substitute(binding)
	}
	return out
}

func containsLiteral(lits []Literal, lit Literal) bool {
	for _, l := range lits {
		if l.Equal(lit) {
			return true
		}
	}
	return false
}
