// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/engine"
	"github.com/AleutianAI/AleutianPlan/services/planner/graph"
	"github.com/AleutianAI/AleutianPlan/services/planner/model"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
)

func newSolver(t *testing.T, domain, problem string, cfg engine.Config) *engine.Solver {
	t.Helper()
	dir := filepath.Join("..", "pddl", "testdata")
	p, err := pddl.Load(filepath.Join(dir, domain), filepath.Join(dir, problem))
	require.NoError(t, err)

	g := graph.New(p.Actions, p.Init, p.InitNeg)
	s, err := engine.NewSolver(g, engine.Goals{Pos: p.GoalsPos, Neg: p.GoalsNeg, Test: p.GoalTest}, cfg)
	require.NoError(t, err)
	return s
}

func TestSolve_ThreeBlockTower(t *testing.T) {
	s := newSolver(t, "blocks-domain.pddl", "blocks-p03.pddl", engine.DefaultConfig())

	sols, err := s.Solve(context.Background(), true)
	require.NoError(t, err)
	require.NotEmpty(t, sols)

	assert.Equal(t, 3, s.Levels())
	assert.Equal(t, [][]string{
		{"movetotable(c,a)"},
		{"move(b,table,c)"},
		{"move(a,table,b)"},
	}, sols[0].ActionNames())
	assert.Equal(t,
		"Solution found and is of the following:\n1:movetotable(c,a)\n2:move(b,table,c)\n3:move(a,table,b)\n",
		engine.FormatSolution(sols))

	g := s.Graph()
	for _, sol := range sols {
		require.Len(t, sol.Steps, 3)
		for _, st := range sol.Steps {
			for i, a := range st.Actions {
				for _, b := range st.Actions[i+1:] {
					assert.False(t, g.ActionsMutex(st.Level, a, b), "%s and %s at level %d", a, b, st.Level)
				}
			}
		}
	}
	assert.Greater(t, s.Stats().Enumerations, int64(0))
}

func TestSolve_SingleShotBeforeGoalsAppear(t *testing.T) {
	s := newSolver(t, "blocks-domain.pddl", "blocks-p03.pddl", engine.DefaultConfig())

	sols, err := s.Solve(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, sols)
	assert.Equal(t, 0, s.Levels())

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Expand(context.Background()))
	}
	sols, err = s.Solve(context.Background(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, sols)
}

func TestSolve_Unsolvable(t *testing.T) {
	s := newSolver(t, "blocks-domain.pddl", "blocks-unsolvable.pddl", engine.DefaultConfig())

	sols, err := s.Solve(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, sols)
	assert.True(t, engine.IsFixpoint(s.Graph()))
	assert.Equal(t, engine.NoSolutionText, engine.FormatSolution(sols))
}

func TestSolve_AlreadySatisfied(t *testing.T) {
	s := newSolver(t, "blocks-domain.pddl", "blocks-trivial.pddl", engine.DefaultConfig())

	sols, err := s.Solve(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, sols, 1)
	require.Len(t, sols[0].Steps, 1)
	assert.Equal(t, 0, s.Levels())
	for _, a := range sols[0].Steps[0].Actions {
		assert.True(t, a.IsPersistence())
	}
}

func TestSolve_NegativeGoals(t *testing.T) {
	s := newSolver(t, "lights-domain.pddl", "lights-p01.pddl", engine.DefaultConfig())

	sols, err := s.Solve(context.Background(), true)
	require.NoError(t, err)
	require.NotEmpty(t, sols)
	assert.Equal(t, [][]string{{"switch-off(hall)", "switch-on(kitchen)"}}, sols[0].ActionNames())
}

func TestSolver_IsMutex(t *testing.T) {
	s := newSolver(t, "blocks-domain.pddl", "blocks-p03.pddl", engine.DefaultConfig())
	require.NoError(t, s.Expand(context.Background()))

	m, err := s.IsMutex(1, "movetotable(c,a)", "move(b,table,c)")
	require.NoError(t, err)
	assert.True(t, m)

	m, err = s.IsMutex(1, "clear(c)", "clear(b)")
	require.NoError(t, err)
	assert.False(t, m)

	_, err = s.IsMutex(1, "clear(c)", "move(b,table,c)")
	assert.ErrorIs(t, err, graph.ErrIncomparableNodes)
}

func TestExtract_LevelZeroRejectsContradictoryGoals(t *testing.T) {
	p := model.MustParseLiteral("p")
	g := graph.New(nil, []model.Literal{p}, []model.Literal{p})
	require.False(t, g.NonMutexGoals(0, []model.Literal{p}, []model.Literal{p}))

	e := engine.NewExtractor(g, engine.DefaultConfig())
	res, err := e.Extract(context.Background(), []model.Literal{p}, []model.Literal{p}, 0)
	require.NoError(t, err)
	assert.True(t, res.Exhausted())
	assert.Equal(t, 1, e.Nogoods().Len())
}
