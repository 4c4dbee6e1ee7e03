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

// fakeLevel is a hand-built level for fakeGraph.
type fakeLevel struct {
	pos, neg     []string
	achieversPos map[string][]model.Action
	achieversNeg map[string][]model.Action
	actionMutex  [][2]string
	goalMutex    [][2]string // literal keys, polarity ignored
}

// fakeGraph serves pre-built levels and reveals the next one on expansion.
type fakeGraph struct {
	levels   []fakeLevel
	visible  int
	expands  int
	achCalls int

	// grow, when set, builds the level appended past the pre-built ones.
	grow func(n int) fakeLevel
}

func newFakeGraph(levels ...fakeLevel) *fakeGraph {
	return &fakeGraph{levels: levels, visible: 1}
}

func (f *fakeGraph) ExpandGraph(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.expands++
	if f.visible == len(f.levels) {
		if f.grow != nil {
			f.levels = append(f.levels, f.grow(f.visible))
		} else {
			f.levels = append(f.levels, f.levels[len(f.levels)-1])
		}
	}
	f.visible++
	return nil
}

func (f *fakeGraph) LevelCount() int {
	return f.visible
}

func (f *fakeGraph) PositiveLiterals(level int) model.LiteralSet {
	return parseSet(f.levels[level].pos)
}

func (f *fakeGraph) NegativeLiterals(level int) model.LiteralSet {
	return parseSet(f.levels[level].neg)
}

func (f *fakeGraph) Achievers(level int, lit model.Literal, positive bool) []model.Action {
	f.achCalls++
	if positive {
		return f.levels[level].achieversPos[lit.Key()]
	}
	return f.levels[level].achieversNeg[lit.Key()]
}

func (f *fakeGraph) ActionsMutex(level int, a, b model.Action) bool {
	return hasPair(f.levels[level].actionMutex, a.Key(), b.Key())
}

func (f *fakeGraph) NonMutexGoals(level int, pos, neg []model.Literal) bool {
	all := append(append([]model.Literal{}, pos...), neg...)
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if hasPair(f.levels[level].goalMutex, all[i].Key(), all[j].Key()) {
				return false
			}
		}
	}
	return true
}

func hasPair(pairs [][2]string, a, b string) bool {
	for _, p := range pairs {
		if (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a) {
			return true
		}
	}
	return false
}

func parseSet(keys []string) model.LiteralSet {
	s := model.NewLiteralSet()
	for _, k := range keys {
		s.Add(model.MustParseLiteral(k))
	}
	return s
}

func lit(s string) model.Literal {
	return model.MustParseLiteral(s)
}

func lits(ss ...string) []model.Literal {
	out := make([]model.Literal, len(ss))
	for i, s := range ss {
		out[i] = lit(s)
	}
	return out
}

// act builds a ground action "name()" with the given literal keys.
func act(name string, pre, add, del []string) model.Action {
	return model.Action{
		Name:       name,
		Args:       []string{},
		PrecondPos: lits(pre...),
		Add:        lits(add...),
		Del:        lits(del...),
	}
}

func persist(s string) model.Action {
	return model.Persistence(lit(s), true)
}
