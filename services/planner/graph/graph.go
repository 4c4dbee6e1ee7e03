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
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// Graph is a leveled planning graph over a fixed set of ground actions.
//
// Thread Safety: NOT safe for concurrent use.
type Graph struct {
	actions  []model.Action
	profiles map[string]*actionProfile
	levels   []*Level
	logger   *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for expansion diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a graph holding only level 0.
//
// Inputs:
//   - actions: Ground actions of the problem. Persistence actions are
//     synthesized and must not be included.
//   - init: The initial positive literals.
//   - initNeg: The initial negative literals.
//
// Outputs:
//   - *Graph: A graph with one level.
func New(actions []model.Action, init, initNeg []model.Literal, opts ...Option) *Graph {
	g := &Graph{
		actions:  append([]model.Action(nil), actions...),
		profiles: make(map[string]*actionProfile, len(actions)),
		logger:   slog.Default().With(slog.String("component", "planning_graph")),
	}
	for _, opt := range opts {
		opt(g)
	}
	model.SortActions(g.actions)

	l0 := newLevel(0)
	for _, l := range init {
		l0.Pos.Add(l)
	}
	for _, l := range initNeg {
		l0.Neg.Add(l)
	}
	for _, l := range l0.Pos.Sorted() {
		if l0.Neg.Contains(l) {
			l0.literalMutex[makePair(literalNodeKey(l, true), literalNodeKey(l, false))] = struct{}{}
		}
	}
	g.levels = []*Level{l0}
	return g
}

func newLevel(index int) *Level {
	return &Level{
		Index:        index,
		Pos:          model.NewLiteralSet(),
		Neg:          model.NewLiteralSet(),
		achieversPos: map[string][]model.Action{},
		achieversNeg: map[string][]model.Action{},
		actionByKey:  map[string]model.Action{},
		actionMutex:  map[pairKey]struct{}{},
		literalMutex: map[pairKey]struct{}{},
	}
}

// ExpandGraph appends one level.
//
// Inputs:
//   - ctx: Cancellation is checked between mutex passes.
//
// Outputs:
//   - error: Non-nil only if ctx is done.
func (g *Graph) ExpandGraph(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	prev := g.levels[len(g.levels)-1]
	next := newLevel(prev.Index + 1)
	next.Pos = prev.Pos.Clone()
	next.Neg = prev.Neg.Clone()

	for _, l := range prev.Pos.Sorted() {
		g.addAction(next, model.Persistence(l, true))
	}
	for _, l := range prev.Neg.Sorted() {
		g.addAction(next, model.Persistence(l, false))
	}
	for _, a := range g.actions {
		if g.applicable(prev, a) {
			g.addAction(next, a)
		}
	}

	if err := g.computeActionMutex(ctx, prev, next); err != nil {
		return err
	}
	if err := g.computeLiteralMutex(ctx, next); err != nil {
		return err
	}
	g.levels = append(g.levels, next)

	g.logger.Debug("planning graph expanded",
		slog.Int("level", next.Index),
		slog.Int("positive", next.Pos.Len()),
		slog.Int("negative", next.Neg.Len()),
		slog.Int("actions", len(next.Actions)),
		slog.Int("action_mutexes", len(next.actionMutex)),
		slog.Int("literal_mutexes", len(next.literalMutex)))
	return nil
}

func (g *Graph) addAction(lv *Level, a model.Action) {
	key := a.Key()
	if _, dup := lv.actionByKey[key]; dup {
		return
	}
	lv.actionByKey[key] = a
	lv.Actions = append(lv.Actions, a)
	for _, l := range a.Add {
		lv.Pos.Add(l)
		lv.achieversPos[l.Key()] = append(lv.achieversPos[l.Key()], a)
	}
	for _, l := range a.Del {
		lv.Neg.Add(l)
		lv.achieversNeg[l.Key()] = append(lv.achieversNeg[l.Key()], a)
	}
}

// applicable reports whether a's preconditions are present and pairwise
// non-mutex in state prev.
func (g *Graph) applicable(prev *Level, a model.Action) bool {
	if !prev.Pos.ContainsAll(a.PrecondPos) || !prev.Neg.ContainsAll(a.PrecondNeg) {
		return false
	}
	pre := g.profile(a).pre
	for i := 0; i < len(pre); i++ {
		for j := i + 1; j < len(pre); j++ {
			if _, ok := prev.literalMutex[makePair(pre[i], pre[j])]; ok {
				return false
			}
		}
	}
	return true
}

// LevelCount returns the number of levels, including level 0.
func (g *Graph) LevelCount() int {
	return len(g.levels)
}

// Level returns the level at index.
//
// Outputs:
//   - *Level: The level. Must not be modified.
//   - error: ErrLevelOutOfRange if index does not exist.
func (g *Graph) Level(index int) (*Level, error) {
	if index < 0 || index >= len(g.levels) {
		return nil, fmt.Errorf("%w: %d (graph has %d levels)", ErrLevelOutOfRange, index, len(g.levels))
	}
	return g.levels[index], nil
}

// PositiveLiterals returns the positive literal set of a state, or an empty
// set if the level does not exist. The set must not be modified.
func (g *Graph) PositiveLiterals(level int) model.LiteralSet {
	lv, err := g.Level(level)
	if err != nil {
		return model.NewLiteralSet()
	}
	return lv.Pos
}

// NegativeLiterals returns the negative literal set of a state, or an empty
// set if the level does not exist. The set must not be modified.
func (g *Graph) NegativeLiterals(level int) model.LiteralSet {
	lv, err := g.Level(level)
	if err != nil {
		return model.NewLiteralSet()
	}
	return lv.Neg
}

// Achievers returns the actions of layer level that make lit true
// (positive) or false (negative). Persistence actions come first.
func (g *Graph) Achievers(level int, lit model.Literal, positive bool) []model.Action {
	if level < 1 || level >= len(g.levels) {
		return nil
	}
	lv := g.levels[level]
	if positive {
		return lv.achieversPos[lit.Key()]
	}
	return lv.achieversNeg[lit.Key()]
}

// ActionsMutex reports whether two actions of layer level are mutex.
func (g *Graph) ActionsMutex(level int, a, b model.Action) bool {
	if level < 1 || level >= len(g.levels) {
		return false
	}
	ka, kb := a.Key(), b.Key()
	if ka == kb {
		return false
	}
	_, ok := g.levels[level].actionMutex[makePair(ka, kb)]
	return ok
}

// LiteralsMutex reports whether two literals of state level are mutex.
func (g *Graph) LiteralsMutex(level int, a model.Literal, aPositive bool, b model.Literal, bPositive bool) bool {
	if level < 0 || level >= len(g.levels) {
		return false
	}
	ka, kb := literalNodeKey(a, aPositive), literalNodeKey(b, bPositive)
	if ka == kb {
		return false
	}
	_, ok := g.levels[level].literalMutex[makePair(ka, kb)]
	return ok
}

// NonMutexGoals reports whether no two goals are mutex in state level.
func (g *Graph) NonMutexGoals(level int, pos, neg []model.Literal) bool {
	if level < 0 || level >= len(g.levels) {
		return false
	}
	keys := make([]string, 0, len(pos)+len(neg))
	for _, l := range pos {
		keys = append(keys, literalNodeKey(l, true))
	}
	for _, l := range neg {
		keys = append(keys, literalNodeKey(l, false))
	}
	mutex := g.levels[level].literalMutex
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[i] == keys[j] {
				continue
			}
			if _, ok := mutex[makePair(keys[i], keys[j])]; ok {
				return false
			}
		}
	}
	return true
}
