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
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
)

func fixture(name string) string {
	return filepath.Join("..", "pddl", "testdata", name)
}

func blocksGraph(t *testing.T, levels int) *Graph {
	t.Helper()
	p, err := pddl.Load(fixture("blocks-domain.pddl"), fixture("blocks-p03.pddl"))
	require.NoError(t, err)
	g := New(p.Actions, p.Init, p.InitNeg)
	for i := 0; i < levels; i++ {
		require.NoError(t, g.ExpandGraph(context.Background()))
	}
	return g
}

func lit(s string) model.Literal {
	return model.MustParseLiteral(s)
}

func action(t *testing.T, g *Graph, level int, key string) model.Action {
	t.Helper()
	lv, err := g.Level(level)
	require.NoError(t, err)
	a, ok := lv.actionByKey[key]
	require.True(t, ok, "action %s missing at level %d", key, level)
	return a
}

func TestNew_LevelZero(t *testing.T) {
	g := blocksGraph(t, 0)

	assert.Equal(t, 1, g.LevelCount())
	assert.True(t, g.PositiveLiterals(0).Contains(lit("on(c,a)")))
	assert.True(t, g.PositiveLiterals(0).Contains(lit("clear(table)")))
	assert.Equal(t, 0, g.NegativeLiterals(0).Len())
	assert.Nil(t, g.Achievers(0, lit("on(c,a)"), true))
	assert.Equal(t, 0, g.PositiveLiterals(7).Len())
}

func TestExpandGraph_Monotone(t *testing.T) {
	g := blocksGraph(t, 4)

	for i := 1; i < g.LevelCount(); i++ {
		assert.True(t, g.PositiveLiterals(i-1).SubsetOf(g.PositiveLiterals(i)), "positive level %d", i)
		assert.True(t, g.NegativeLiterals(i-1).SubsetOf(g.NegativeLiterals(i)), "negative level %d", i)
	}
}

func TestExpandGraph_PersistenceFirst(t *testing.T) {
	g := blocksGraph(t, 1)

	ach := g.Achievers(1, lit("clear(c)"), true)
	require.NotEmpty(t, ach)
	assert.Equal(t, "P-clear(c)", ach[0].Key())

	ach = g.Achievers(1, lit("clear(a)"), true)
	var names []string
	for _, a := range ach {
		names = append(names, a.Key())
	}
	assert.ElementsMatch(t, []string{"move(c,a,b)", "movetotable(c,a)"}, names)
}

func TestActionMutex_Symmetric(t *testing.T) {
	g := blocksGraph(t, 3)

	for level := 1; level < g.LevelCount(); level++ {
		lv, err := g.Level(level)
		require.NoError(t, err)
		for _, a := range lv.Actions {
			assert.False(t, g.ActionsMutex(level, a, a), "irreflexive %s", a)
			for _, b := range lv.Actions {
				assert.Equal(t, g.ActionsMutex(level, a, b), g.ActionsMutex(level, b, a))
			}
		}
	}
}

func TestActionMutex_Kinds(t *testing.T) {
	g := blocksGraph(t, 2)

	// Interference: move(b,table,c) deletes clear(c) which movetotable(c,a) needs.
	assert.True(t, g.ActionsMutex(1,
		action(t, g, 1, "movetotable(c,a)"), action(t, g, 1, "move(b,table,c)")))

	// Inconsistent effects: a persistence keeping on(c,a) against an action deleting it.
	assert.True(t, g.ActionsMutex(1,
		action(t, g, 1, "P-on(c,a)"), action(t, g, 1, "movetotable(c,a)")))

	// Independent actions.
	assert.False(t, g.ActionsMutex(1,
		action(t, g, 1, "P-clear(c)"), action(t, g, 1, "movetotable(c,a)")))

	// Competing needs: clear(a) and on(b,c) are mutex in state 1.
	assert.True(t, g.ActionsMutex(2,
		action(t, g, 2, "move(a,table,b)"), action(t, g, 2, "P-on(b,c)")))
}

func TestLiteralMutex(t *testing.T) {
	g := blocksGraph(t, 3)

	assert.True(t, g.LiteralsMutex(1, lit("clear(b)"), true, lit("clear(b)"), false), "opposite polarity")
	assert.True(t, g.LiteralsMutex(1, lit("clear(a)"), true, lit("on(b,c)"), true), "inconsistent support")
	assert.False(t, g.LiteralsMutex(1, lit("clear(a)"), true, lit("clear(c)"), true))
	assert.False(t, g.LiteralsMutex(1, lit("clear(a)"), true, lit("clear(a)"), true), "irreflexive")

	goals := []model.Literal{lit("on(a,b)"), lit("on(b,c)")}
	assert.False(t, g.NonMutexGoals(2, goals, nil))
	assert.True(t, g.NonMutexGoals(3, goals, nil))
	assert.False(t, g.NonMutexGoals(9, goals, nil))
}

func TestIsMutex(t *testing.T) {
	g := blocksGraph(t, 2)

	a, err := g.ResolveNode(1, "movetotable(c, a)")
	require.NoError(t, err)
	assert.Equal(t, NodeAction, a.Kind)
	b, err := g.ResolveNode(1, "move(b,table,c)")
	require.NoError(t, err)

	m, err := g.IsMutex(1, a, b)
	require.NoError(t, err)
	assert.True(t, m)
	m, err = g.IsMutex(1, b, a)
	require.NoError(t, err)
	assert.True(t, m)

	pos, err := g.ResolveNode(1, "clear(b)")
	require.NoError(t, err)
	neg, err := g.ResolveNode(1, "not clear(b)")
	require.NoError(t, err)
	assert.False(t, neg.Positive)
	m, err = g.IsMutex(1, pos, neg)
	require.NoError(t, err)
	assert.True(t, m)

	p, err := g.ResolveNode(1, "P-clear(c)")
	require.NoError(t, err)
	assert.True(t, p.Action.IsPersistence())

	_, err = g.IsMutex(1, a, pos)
	assert.True(t, errors.Is(err, ErrIncomparableNodes))

	_, err = g.IsMutex(5, a, b)
	assert.True(t, errors.Is(err, ErrLevelOutOfRange))

	_, err = g.ResolveNode(1, "on(a,a)")
	assert.True(t, errors.Is(err, ErrUnknownNode))
}

func TestStats(t *testing.T) {
	g := blocksGraph(t, 1)

	st, err := g.Stats(1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, g.PositiveLiterals(0).Len(), st.Persistence)
	assert.Greater(t, st.Actions, st.Persistence)
	assert.Greater(t, st.ActionMutexes, 0)

	actions, literals, err := g.MutexPairs(1)
	require.NoError(t, err)
	assert.Len(t, actions, st.ActionMutexes)
	assert.Len(t, literals, st.LiteralMutexes)
}

func TestExpandGraph_Cancelled(t *testing.T) {
	g := blocksGraph(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.ExpandGraph(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, g.LevelCount())
}

func TestNegativePreconditions(t *testing.T) {
	p, err := pddl.Load(fixture("lights-domain.pddl"), fixture("lights-p01.pddl"))
	require.NoError(t, err)
	g := New(p.Actions, p.Init, p.InitNeg)
	require.NoError(t, g.ExpandGraph(context.Background()))

	on := lit("on(kitchen)")
	assert.True(t, g.NegativeLiterals(0).Contains(on))
	assert.True(t, g.PositiveLiterals(1).Contains(on))

	lv, err := g.Level(1)
	require.NoError(t, err)
	_, ok := lv.actionByKey["switch-on(kitchen)"]
	assert.True(t, ok)
	_, ok = lv.actionByKey["switch-on(hall)"]
	assert.False(t, ok, "hall is already on")
}
