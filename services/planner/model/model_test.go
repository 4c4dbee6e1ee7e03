// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"functional", "On(A, B)", "on(a,b)"},
		{"functional no spaces", "clear(table)", "clear(table)"},
		{"sexpr", "(on a b)", "on(a,b)"},
		{"sexpr extra whitespace", "(  ON   a\tb )", "on(a,b)"},
		{"nullary functional", "handempty()", "handempty()"},
		{"nullary bare", "handempty", "handempty()"},
		{"nullary sexpr", "(handempty)", "handempty()"},
		{"hyphenated", "(at-robby rooma)", "at-robby(rooma)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := ParseLiteral(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.Key())
		})
	}
}

func TestParseLiteral_Invalid(t *testing.T) {
	for _, in := range []string{"", "on(a,b", "(on a b", "()", "on(a,,b)", "on(a)(b)", "on(a;b)", "__import__('os')"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLiteral(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLiteral))
		})
	}
}

func TestLiteralSet(t *testing.T) {
	a := MustParseLiteral("on(a,b)")
	b := MustParseLiteral("clear(a)")

	s := NewLiteralSet(a)
	assert.True(t, s.Add(b))
	assert.False(t, s.Add(NewLiteral("on", "a", "b")))
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(a))
	assert.Equal(t, []string{"clear(a)", "on(a,b)"}, s.Keys())

	cp := s.Clone()
	cp.Add(MustParseLiteral("clear(b)"))
	assert.Equal(t, 2, s.Len(), "clone must not alias")
	assert.True(t, s.SubsetOf(cp))
	assert.False(t, cp.SubsetOf(s))
	assert.False(t, s.Equal(cp))
	assert.True(t, s.Equal(NewLiteralSet(b, a)))
}

func TestPersistence(t *testing.T) {
	lit := MustParseLiteral("on(a,b)")

	pos := Persistence(lit, true)
	assert.True(t, pos.IsPersistence())
	assert.Equal(t, "P-on(a,b)", pos.Key())
	assert.True(t, pos.Requires(lit, true))
	assert.True(t, pos.Adds(lit))

	neg := Persistence(lit, false)
	assert.Equal(t, "P-not-on(a,b)", neg.Key())
	assert.True(t, neg.Requires(lit, false))
	assert.True(t, neg.Deletes(lit))
	assert.NotEqual(t, pos.Key(), neg.Key())
}

func TestAction_Ground(t *testing.T) {
	schema := Action{
		Name:       "move",
		PrecondPos: []Literal{NewLiteral("on", "?b", "?x"), NewLiteral("clear", "?y")},
		Add:        []Literal{NewLiteral("on", "?b", "?y")},
		Del:        []Literal{NewLiteral("on", "?b", "?x")},
	}
	g := schema.Ground([]string{"?b", "?x", "?y"}, map[string]string{"?b": "a", "?x": "table", "?y": "c"})

	assert.Equal(t, "move(a,table,c)", g.Key())
	assert.Equal(t, "on(a,table)", g.PrecondPos[0].Key())
	assert.Equal(t, "on(a,c)", g.Add[0].Key())
	assert.Equal(t, "on(?b,?x)", schema.PrecondPos[0].Key(), "schema must be left untouched")
}

func TestActionNames(t *testing.T) {
	lit := MustParseLiteral("clear(a)")
	acts := []Action{
		{Name: "movetotable", Args: []string{"c", "a"}},
		Persistence(lit, true),
	}
	assert.Equal(t, []string{"movetotable(c,a)"}, ActionNames(acts))
}
