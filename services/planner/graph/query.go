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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// IsMutex reports whether two nodes of a level are mutually exclusive.
//
// Description:
//
//	Two literals are compared in state level; two actions are compared in
//	the action layer that produced level. A node is never mutex with
//	itself. This is a pure query and never changes the graph.
//
// Inputs:
//   - level: The level index.
//   - a, b: The nodes to compare. Both literals or both actions.
//
// Outputs:
//   - bool: True if the nodes are mutex.
//   - error: ErrLevelOutOfRange, or ErrIncomparableNodes for mixed kinds.
//
// Thread Safety: Safe for concurrent use with other queries; not with
// ExpandGraph.
func (g *Graph) IsMutex(level int, a, b Node) (bool, error) {
	if _, err := g.Level(level); err != nil {
		return false, err
	}
	if a.Kind != b.Kind {
		return false, fmt.Errorf("%w: %s and %s", ErrIncomparableNodes, a.Kind, b.Kind)
	}
	if a.Kind == NodeAction {
		if level == 0 {
			return false, fmt.Errorf("%w: level 0 has no action layer", ErrLevelOutOfRange)
		}
		return g.ActionsMutex(level, a.Action, b.Action), nil
	}
	return g.LiteralsMutex(level, a.Literal, a.Positive, b.Literal, b.Positive), nil
}

// ResolveNode finds the node named by text at a level.
//
// Description:
//
//	"not on(a,b)", "-on(a,b)" and "~on(a,b)" name a negative literal. Any
//	other text is first matched against the action layer of the level
//	(including persistence actions such as "P-on(a,b)") and then against
//	the positive literals of the state.
//
// Outputs:
//   - Node: The resolved node.
//   - error: ErrLevelOutOfRange or ErrUnknownNode.
func (g *Graph) ResolveNode(level int, text string) (Node, error) {
	lv, err := g.Level(level)
	if err != nil {
		return Node{}, err
	}
	s := strings.TrimSpace(text)

	negText, negative := stripNegation(s)
	if negative {
		lit, err := model.ParseLiteral(negText)
		if err != nil {
			return Node{}, fmt.Errorf("%w: %v", ErrUnknownNode, err)
		}
		if !lv.Neg.Contains(lit) {
			return Node{}, fmt.Errorf("%w: not %s at level %d", ErrUnknownNode, lit, level)
		}
		return LiteralNode(lit, false), nil
	}

	if strings.HasPrefix(s, model.PersistencePrefix) {
		if a, ok := lv.actionByKey[s]; ok {
			return ActionNode(a), nil
		}
		return Node{}, fmt.Errorf("%w: %s at level %d", ErrUnknownNode, s, level)
	}

	lit, err := model.ParseLiteral(s)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrUnknownNode, err)
	}
	if a, ok := lv.actionByKey[lit.Key()]; ok {
		return ActionNode(a), nil
	}
	if lv.Pos.Contains(lit) {
		return LiteralNode(lit, true), nil
	}
	return Node{}, fmt.Errorf("%w: %s at level %d", ErrUnknownNode, lit, level)
}

func stripNegation(s string) (string, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "not "):
		return strings.TrimSpace(s[4:]), true
	case strings.HasPrefix(lower, "(not "):
		inner := strings.TrimSpace(s[5:])
		return strings.TrimSpace(strings.TrimSuffix(inner, ")")), true
	case strings.HasPrefix(s, "-"), strings.HasPrefix(s, "~"):
		return strings.TrimSpace(s[1:]), true
	}
	return s, false
}

// Stats summarizes a level.
func (g *Graph) Stats(level int) (LevelStats, error) {
	lv, err := g.Level(level)
	if err != nil {
		return LevelStats{}, err
	}
	st := LevelStats{
		Index:          lv.Index,
		Positive:       lv.Pos.Len(),
		Negative:       lv.Neg.Len(),
		Actions:        len(lv.Actions),
		ActionMutexes:  len(lv.actionMutex),
		LiteralMutexes: len(lv.literalMutex),
	}
	for _, a := range lv.Actions {
		if a.IsPersistence() {
			st.Persistence++
		}
	}
	return st, nil
}

// MutexPairs returns the mutex pairs of a level as node names, sorted.
// Action pairs are empty for level 0.
func (g *Graph) MutexPairs(level int) (actions, literals [][2]string, err error) {
	lv, err := g.Level(level)
	if err != nil {
		return nil, nil, err
	}
	for p := range lv.actionMutex {
		actions = append(actions, [2]string{p.a, p.b})
	}
	for p := range lv.literalMutex {
		literals = append(literals, [2]string{p.a, p.b})
	}
	sortPairs(actions)
	sortPairs(literals)
	return actions, literals, nil
}

func sortPairs(pairs [][2]string) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
}

// MutexByName resolves both names with ResolveNode and calls IsMutex.
func (g *Graph) MutexByName(level int, a, b string) (bool, error) {
	na, err := g.ResolveNode(level, a)
	if err != nil {
		return false, err
	}
	nb, err := g.ResolveNode(level, b)
	if err != nil {
		return false, err
	}
	return g.IsMutex(level, na, nb)
}
