// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// NodeKind distinguishes literal nodes from action nodes.
type NodeKind int

const (
	// NodeLiteral is a literal with a polarity.
	NodeLiteral NodeKind = iota

	// NodeAction is an action of an action layer.
	NodeAction
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeLiteral:
		return "literal"
	case NodeAction:
		return "action"
	default:
		return "unknown"
	}
}

// Node identifies either a literal with a polarity or an action.
type Node struct {
	Kind     NodeKind
	Literal  model.Literal
	Positive bool
	Action   model.Action
}

// LiteralNode creates a literal node.
func LiteralNode(lit model.Literal, positive bool) Node {
	return Node{Kind: NodeLiteral, Literal: lit, Positive: positive}
}

// ActionNode creates an action node.
func ActionNode(a model.Action) Node {
	return Node{Kind: NodeAction, Action: a}
}

// Key returns a canonical name: "+on(a,b)", "-on(a,b)" or the action key.
func (n Node) Key() string {
	if n.Kind == NodeAction {
		return n.Action.Key()
	}
	return literalNodeKey(n.Literal, n.Positive)
}

// String implements fmt.Stringer.
func (n Node) String() string {
	if n.Kind == NodeAction {
		return n.Action.Key()
	}
	if n.Positive {
		return n.Literal.Key()
	}
	return "not " + n.Literal.Key()
}

// Level is one state of the planning graph together with the action layer
// that produced it. Level 0 has no action layer.
type Level struct {
	// Index is the position of the level in the graph.
	Index int

	// Pos and Neg are the literals that may be true (Pos) or false (Neg).
	Pos model.LiteralSet
	Neg model.LiteralSet

	// Actions is the action layer applied to state Index-1, persistence
	// actions first, then ground actions sorted by key.
	Actions []model.Action

	achieversPos map[string][]model.Action
	achieversNeg map[string][]model.Action
	actionByKey  map[string]model.Action

	actionMutex  map[pairKey]struct{}
	literalMutex map[pairKey]struct{}
}

// LevelStats summarizes a level.
type LevelStats struct {
	Index          int `json:"index"`
	Positive       int `json:"positive"`
	Negative       int `json:"negative"`
	Actions        int `json:"actions"`
	Persistence    int `json:"persistence"`
	ActionMutexes  int `json:"action_mutexes"`
	LiteralMutexes int `json:"literal_mutexes"`
}

// pairKey is an unordered pair of node keys; a is always <= b.
type pairKey struct {
	a, b string
}

func makePair(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

func literalNodeKey(l model.Literal, positive bool) string {
	if positive {
		return "+" + l.Key()
	}
	return "-" + l.Key()
}
