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

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// actionProfile caches the literal keys an action touches.
type actionProfile struct {
	key    string
	prePos map[string]bool
	preNeg map[string]bool
	add    map[string]bool
	del    map[string]bool
	pre    []string // literal node keys of all preconditions
}

func (g *Graph) profile(a model.Action) *actionProfile {
	key := a.Key()
	if p, ok := g.profiles[key]; ok {
		return p
	}
	p := &actionProfile{
		key:    key,
		prePos: keySet(a.PrecondPos),
		preNeg: keySet(a.PrecondNeg),
		add:    keySet(a.Add),
		del:    keySet(a.Del),
	}
	for _, l := range a.PrecondPos {
		p.pre = append(p.pre, literalNodeKey(l, true))
	}
	for _, l := range a.PrecondNeg {
		p.pre = append(p.pre, literalNodeKey(l, false))
	}
	g.profiles[key] = p
	return p
}

func keySet(lits []model.Literal) map[string]bool {
	m := make(map[string]bool, len(lits))
	for _, l := range lits {
		m[l.Key()] = true
	}
	return m
}

func intersects(a, b map[string]bool) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}

// actionsMutex decides the mutex relation for two distinct actions whose
// preconditions live in state prev.
func actionsMutex(prev *Level, p, q *actionProfile) bool {
	// Inconsistent effects.
	if intersects(p.add, q.del) || intersects(p.del, q.add) {
		return true
	}
	// Interference.
	if intersects(p.del, q.prePos) || intersects(q.del, p.prePos) ||
		intersects(p.add, q.preNeg) || intersects(q.add, p.preNeg) {
		return true
	}
	// Competing needs.
	for _, x := range p.pre {
		for _, y := range q.pre {
			if x == y {
				continue
			}
			if _, ok := prev.literalMutex[makePair(x, y)]; ok {
				return true
			}
		}
	}
	return false
}

func (g *Graph) computeActionMutex(ctx context.Context, prev, next *Level) error {
	profiles := make([]*actionProfile, len(next.Actions))
	for i, a := range next.Actions {
		profiles[i] = g.profile(a)
	}
	for i := 0; i < len(profiles); i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := i + 1; j < len(profiles); j++ {
			if actionsMutex(prev, profiles[i], profiles[j]) {
				next.actionMutex[makePair(profiles[i].key, profiles[j].key)] = struct{}{}
			}
		}
	}
	return nil
}

type literalNode struct {
	key       string
	atom      string
	achievers []model.Action
}

func (g *Graph) computeLiteralMutex(ctx context.Context, next *Level) error {
	var nodes []literalNode
	for _, l := range next.Pos.Sorted() {
		nodes = append(nodes, literalNode{key: literalNodeKey(l, true), atom: l.Key(), achievers: next.achieversPos[l.Key()]})
	}
	for _, l := range next.Neg.Sorted() {
		nodes = append(nodes, literalNode{key: literalNodeKey(l, false), atom: l.Key(), achievers: next.achieversNeg[l.Key()]})
	}

	for i := 0; i < len(nodes); i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := i + 1; j < len(nodes); j++ {
			x, y := nodes[i], nodes[j]
			if x.atom == y.atom || inconsistentSupport(next, x.achievers, y.achievers) {
				next.literalMutex[makePair(x.key, y.key)] = struct{}{}
			}
		}
	}
	return nil
}

// inconsistentSupport reports whether every achiever of one literal is mutex
// with every achiever of the other.
func inconsistentSupport(lv *Level, xs, ys []model.Action) bool {
	for _, a := range xs {
		ka := a.Key()
		for _, b := range ys {
			kb := b.Key()
			if ka == kb {
				return false
			}
			if _, ok := lv.actionMutex[makePair(ka, kb)]; !ok {
				return false
			}
		}
	}
	return true
}
