// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model provides the immutable literal and action value types shared
// by the planning graph, the PDDL adapter and the search engine.
//
// Description:
//
//	A Literal is a predicate applied to an ordered tuple of arguments.
//	Polarity is never stored on the literal: a level holds a positive and a
//	negative LiteralSet and membership decides polarity.
//
//	All values are compared through their canonical text form returned by
//	Key(), e.g. "on(a,b)". Keys are what the graph, the nogood cache and the
//	plan store index on.
//
// Thread Safety: All types in this package are immutable after construction
// and safe for concurrent reads.
package model

import (
	"sort"
	"strings"
)

// Literal is a predicate symbol applied to ordered arguments.
type Literal struct {
	// Predicate is the lower-case predicate symbol, e.g. "on".
	Predicate string

	// Args are the ground (or variable, before grounding) arguments.
	Args []string
}

// NewLiteral creates a literal, copying the argument slice.
func NewLiteral(predicate string, args ...string) Literal {
	cp := make([]string, len(args))
	copy(cp, args)
	return Literal{Predicate: predicate, Args: cp}
}

// Key returns the canonical text form "pred(a,b)".
func (l Literal) Key() string {
	var b strings.Builder
	b.Grow(len(l.Predicate) + 2 + 4*len(l.Args))
	b.WriteString(l.Predicate)
	b.WriteByte('(')
	for i, a := range l.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a)
	}
	b.WriteByte(')')
	return b.String()
}

// String implements fmt.Stringer.
func (l Literal) String() string {
	return l.Key()
}

// Equal reports whether two literals have the same predicate and arguments.
func (l Literal) Equal(other Literal) bool {
	if l.Predicate != other.Predicate || len(l.Args) != len(other.Args) {
		return false
	}
	for i := range l.Args {
		if l.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Substitute returns a copy with every argument found in binding replaced.
func (l Literal) Substitute(binding map[string]string) Literal {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		if v, ok := binding[a]; ok {
			args[i] = v
		} else {
			args[i] = a
		}
	}
	return Literal{Predicate: l.Predicate, Args: args}
}

// -----------------------------------------------------------------------------
// LiteralSet
// -----------------------------------------------------------------------------

// LiteralSet is a set of literals keyed by their canonical form.
//
// The zero value is not usable; create sets with NewLiteralSet.
type LiteralSet struct {
	items map[string]Literal
}

// NewLiteralSet creates a set holding the given literals.
func NewLiteralSet(lits ...Literal) LiteralSet {
	s := LiteralSet{items: make(map[string]Literal, len(lits))}
	for _, l := range lits {
		s.items[l.Key()] = l
	}
	return s
}

// Add inserts a literal. Returns true if it was not present.
func (s LiteralSet) Add(l Literal) bool {
	k := l.Key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = l
	return true
}

// Contains reports whether the literal is in the set.
func (s LiteralSet) Contains(l Literal) bool {
	_, ok := s.items[l.Key()]
	return ok
}

// ContainsKey reports whether a literal with the canonical key is present.
func (s LiteralSet) ContainsKey(key string) bool {
	_, ok := s.items[key]
	return ok
}

// Len returns the number of literals.
func (s LiteralSet) Len() int {
	return len(s.items)
}

// ContainsAll reports whether every literal is in the set.
func (s LiteralSet) ContainsAll(lits []Literal) bool {
	for _, l := range lits {
		if !s.Contains(l) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same literals.
func (s LiteralSet) Equal(other LiteralSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for k := range s.items {
		if _, ok := other.items[k]; !ok {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every literal of s is in other.
func (s LiteralSet) SubsetOf(other LiteralSet) bool {
	for k := range s.items {
		if _, ok := other.items[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (s LiteralSet) Clone() LiteralSet {
	cp := LiteralSet{items: make(map[string]Literal, len(s.items))}
	for k, v := range s.items {
		cp.items[k] = v
	}
	return cp
}

// Sorted returns the literals ordered by key.
func (s LiteralSet) Sorted() []Literal {
	keys := s.Keys()
	out := make([]Literal, len(keys))
	for i, k := range keys {
		out[i] = s.items[k]
	}
	return out
}

// Keys returns the sorted canonical keys.
func (s LiteralSet) Keys() []string {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortLiterals sorts literals in place by canonical key.
func SortLiterals(lits []Literal) {
	sort.Slice(lits, func(i, j int) bool {
		return lits[i].Key() < lits[j].Key()
	})
}

// DedupLiterals returns the distinct literals ordered by key.
func DedupLiterals(lits []Literal) []Literal {
	return NewLiteralSet(lits...).Sorted()
}
