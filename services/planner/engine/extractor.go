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
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// ExtractStats counts extraction work since the extractor was created.
type ExtractStats struct {
	// Enumerations is how many goal sets had their achiever combinations
	// enumerated.
	Enumerations int64 `json:"enumerations"`

	// NogoodHits is how many queries were answered from the nogood cache.
	NogoodHits int64 `json:"nogood_hits"`

	// MemoHits is how many queries were answered from the success memo.
	MemoHits int64 `json:"memo_hits"`

	// NogoodsRecorded is how many nogoods were stored.
	NogoodsRecorded int64 `json:"nogoods_recorded"`
}

// partial is a plan fragment ordered from its top level down to level 1.
type partial [][]model.Action

// Extractor runs the memoized backward search over a planning graph.
//
// Thread Safety: NOT safe for concurrent use.
type Extractor struct {
	graph   PlanningGraph
	cfg     Config
	nogoods *NogoodCache
	memo    map[string][]partial
	stats   ExtractStats
	logger  *slog.Logger
}

// NewExtractor creates an extractor bound to graph.
func NewExtractor(graph PlanningGraph, cfg Config) *Extractor {
	return &Extractor{
		graph:   graph,
		cfg:     cfg,
		nogoods: NewNogoodCache(graph.LevelCount()),
		memo:    make(map[string][]partial),
		logger:  cfg.logger("extractor"),
	}
}

// Stats returns a copy of the work counters.
func (e *Extractor) Stats() ExtractStats {
	return e.stats
}

// Nogoods exposes the nogood cache for inspection.
func (e *Extractor) Nogoods() *NogoodCache {
	return e.nogoods
}

// Reset drops the nogood cache and the success memo. Call it whenever the
// graph grows.
func (e *Extractor) Reset() {
	e.nogoods.Reset(e.graph.LevelCount())
	e.memo = make(map[string][]partial)
}

// Extract searches for plans reaching the goals at level.
//
// Description:
//
//	Level 0 succeeds iff the goals hold initially, with a single step of
//	persistence actions. For level >= 1 the search walks down to level 1,
//	collecting at that boundary every committed action set whose
//	preconditions hold in the initial state (bounded by MaxSolutions).
//	Above level 1 the first successful branch wins.
//
// Inputs:
//   - ctx: Checked between candidate sets.
//   - goalsPos, goalsNeg: The goals. Duplicates are ignored.
//   - level: Absolute level index of the goals.
//
// Outputs:
//   - Result: Found or Exhausted. Exhaustion is not an error.
//   - error: ctx.Err() on cancellation, or ErrLevelOutOfRange.
func (e *Extractor) Extract(ctx context.Context, goalsPos, goalsNeg []model.Literal, level int) (Result, error) {
	if level < 0 || level >= e.graph.LevelCount() {
		return Result{}, &SearchError{
			Component: "Extractor",
			Operation: "Extract",
			Err:       fmt.Errorf("%w: %d (graph has %d levels)", ErrLevelOutOfRange, level, e.graph.LevelCount()),
		}
	}
	if e.nogoods.Generation() != e.graph.LevelCount() {
		e.Reset()
	}

	pos := model.DedupLiterals(goalsPos)
	neg := model.DedupLiterals(goalsNeg)

	if level == 0 {
		key := goalKey(0, pos, neg)
		if e.nogoods.containsKey(key) {
			e.stats.NogoodHits++
			return Result{}, nil
		}
		if !e.graph.NonMutexGoals(0, pos, neg) {
			e.recordNogood(key)
			return Result{}, nil
		}
		if !e.baseHolds(pos, neg) {
			return Result{}, nil
		}
		var acts []model.Action
		for _, l := range pos {
			acts = append(acts, model.Persistence(l, true))
		}
		for _, l := range neg {
			acts = append(acts, model.Persistence(l, false))
		}
		return Result{Solutions: []Solution{{Steps: []Step{{Level: 0, Actions: acts}}}}}, nil
	}

	parts, err := e.extract(ctx, pos, neg, level)
	if err != nil {
		return Result{}, err
	}
	res := Result{Solutions: make([]Solution, 0, len(parts))}
	for _, p := range parts {
		steps := make([]Step, len(p))
		for i, acts := range p {
			steps[i] = Step{Level: level - i, Actions: acts}
		}
		res.Solutions = append(res.Solutions, Solution{Steps: steps})
	}
	e.logger.Debug("extraction finished",
		slog.Int("level", level),
		slog.Int("solutions", len(res.Solutions)),
		slog.Int64("enumerations", e.stats.Enumerations),
		slog.Int64("nogood_hits", e.stats.NogoodHits))
	return res, nil
}

// baseHolds checks accumulated goals against the initial state.
func (e *Extractor) baseHolds(pos, neg []model.Literal) bool {
	if !e.graph.PositiveLiterals(0).ContainsAll(pos) {
		return false
	}
	if e.cfg.StrictNegativeBase && !e.graph.NegativeLiterals(0).ContainsAll(neg) {
		return false
	}
	return true
}

// extract expects pos and neg deduplicated and sorted, and level >= 1.
func (e *Extractor) extract(ctx context.Context, pos, neg []model.Literal, level int) ([]partial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := goalKey(level, pos, neg)
	if e.nogoods.containsKey(key) {
		e.stats.NogoodHits++
		return nil, nil
	}
	if memo, ok := e.memo[key]; ok {
		e.stats.MemoHits++
		return memo, nil
	}

	if !e.graph.NonMutexGoals(level, pos, neg) {
		e.recordNogood(key)
		return nil, nil
	}

	candidates := make([][]model.Action, 0, len(pos)+len(neg))
	for _, g := range pos {
		candidates = append(candidates, e.graph.Achievers(level, g, true))
	}
	for _, g := range neg {
		candidates = append(candidates, e.graph.Achievers(level, g, false))
	}
	e.stats.Enumerations++

	sets := e.consistentSets(level, candidates)
	if len(sets) == 0 {
		e.recordNogood(key)
		return nil, nil
	}

	var found []partial
	for _, set := range sets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nextPos, nextNeg := preconditions(set)

		if level == 1 {
			if !e.baseHolds(nextPos, nextNeg) {
				continue
			}
			found = append(found, partial{set})
			if e.cfg.MaxSolutions > 0 && len(found) >= e.cfg.MaxSolutions {
				break
			}
			continue
		}

		sub, err := e.extract(ctx, nextPos, nextNeg, level-1)
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 {
			continue
		}
		for _, s := range sub {
			p := make(partial, 0, len(s)+1)
			p = append(p, set)
			p = append(p, s...)
			found = append(found, p)
		}
		break
	}

	if len(found) == 0 {
		e.recordNogood(key)
		return nil, nil
	}
	e.memo[key] = found
	return found, nil
}

func (e *Extractor) recordNogood(key string) {
	if e.nogoods.recordKey(key) {
		e.stats.NogoodsRecorded++
	}
}

// consistentSets enumerates the cross product of candidates in order (the
// last goal varies fastest), deduplicates each tuple into a set and keeps
// the distinct sets holding no mutex pair. Tuples are pruned as soon as a
// mutex pair appears, which keeps the same survivors in the same order.
func (e *Extractor) consistentSets(level int, candidates [][]model.Action) [][]model.Action {
	for _, c := range candidates {
		if len(c) == 0 {
			return nil
		}
	}

	var (
		out    [][]model.Action
		seen   = make(map[string]bool)
		chosen []model.Action
		inSet  = make(map[string]int)
	)
	var walk func(i int)
	walk = func(i int) {
		if i == len(candidates) {
			set := append([]model.Action(nil), chosen...)
			model.SortActions(set)
			k := setKey(set)
			if !seen[k] {
				seen[k] = true
				out = append(out, set)
			}
			return
		}
		for _, a := range candidates[i] {
			ak := a.Key()
			if inSet[ak] > 0 {
				inSet[ak]++
				walk(i + 1)
				inSet[ak]--
				continue
			}
			if e.mutexWithAny(level, a, chosen) {
				continue
			}
			chosen = append(chosen, a)
			inSet[ak] = 1
			walk(i + 1)
			chosen = chosen[:len(chosen)-1]
			delete(inSet, ak)
		}
	}
	walk(0)
	return out
}

func (e *Extractor) mutexWithAny(level int, a model.Action, chosen []model.Action) bool {
	for _, b := range chosen {
		if e.graph.ActionsMutex(level, a, b) {
			return true
		}
	}
	return false
}

// preconditions returns the union of the set's positive and negative
// preconditions, deduplicated and sorted.
func preconditions(set []model.Action) (pos, neg []model.Literal) {
	p := model.NewLiteralSet()
	n := model.NewLiteralSet()
	for _, a := range set {
		for _, l := range a.PrecondPos {
			p.Add(l)
		}
		for _, l := range a.PrecondNeg {
			n.Add(l)
		}
	}
	return p.Sorted(), n.Sorted()
}

func setKey(set []model.Action) string {
	keys := make([]string, len(set))
	for i, a := range set {
		keys[i] = a.Key()
	}
	return strings.Join(keys, ";")
}
