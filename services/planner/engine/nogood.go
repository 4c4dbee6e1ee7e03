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
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// NogoodCache records (level, goals) combinations proven unreachable.
//
// Description:
//
//	Entries are keyed canonically, so goal order and duplicate goals do
//	not matter. A cache belongs to one graph generation: once the graph
//	grows, a goal set that failed before may succeed, so the owner must
//	call Reset.
//
// Thread Safety: NOT safe for concurrent use.
type NogoodCache struct {
	entries    map[string]struct{}
	generation int
}

// NewNogoodCache creates an empty cache for the given generation.
func NewNogoodCache(generation int) *NogoodCache {
	return &NogoodCache{
		entries:    make(map[string]struct{}),
		generation: generation,
	}
}

// Contains reports whether the goal set is a known nogood at level.
func (c *NogoodCache) Contains(level int, pos, neg []model.Literal) bool {
	_, ok := c.entries[goalKey(level, pos, neg)]
	return ok
}

// Record stores a nogood. Returns false if it was already known.
func (c *NogoodCache) Record(level int, pos, neg []model.Literal) bool {
	return c.recordKey(goalKey(level, pos, neg))
}

func (c *NogoodCache) recordKey(key string) bool {
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = struct{}{}
	return true
}

func (c *NogoodCache) containsKey(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of recorded nogoods.
func (c *NogoodCache) Len() int {
	return len(c.entries)
}

// Generation returns the graph generation the cache is valid for.
func (c *NogoodCache) Generation() int {
	return c.generation
}

// Reset drops every entry and moves the cache to a new generation.
func (c *NogoodCache) Reset(generation int) {
	c.entries = make(map[string]struct{})
	c.generation = generation
}

// goalKey renders "level|+sorted,keys|-sorted,keys".
func goalKey(level int, pos, neg []model.Literal) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(level))
	b.WriteString("|+")
	b.WriteString(strings.Join(model.NewLiteralSet(pos...).Keys(), ","))
	b.WriteString("|-")
	b.WriteString(strings.Join(model.NewLiteralSet(neg...).Keys(), ","))
	return b.String()
}
