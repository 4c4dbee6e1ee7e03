// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pddl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

func keys(lits []model.Literal) []string {
	out := make([]string, len(lits))
	for i, l := range lits {
		out[i] = l.Key()
	}
	return out
}

func actionKeys(actions []model.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = a.Key()
	}
	return out
}

func TestLoad_Blocks(t *testing.T) {
	p, err := Load("testdata/blocks-domain.pddl", "testdata/blocks-p03.pddl")
	require.NoError(t, err)

	assert.Equal(t, "three-block-tower", p.Name)
	assert.Equal(t, "blocksworld", p.Domain)
	assert.Equal(t, []string{"a", "b", "c", "table"}, p.Objects)
	assert.Equal(t, []string{
		"clear(b)", "clear(c)", "clear(table)", "on(a,table)", "on(b,table)", "on(c,a)",
	}, keys(p.Init))
	assert.Empty(t, p.InitNeg, "no predicate is required false")
	assert.Equal(t, []string{"on(a,b)", "on(b,c)"}, keys(p.GoalsPos))
	assert.Empty(t, p.GoalsNeg)

	names := actionKeys(p.Actions)
	assert.Contains(t, names, "move(a,table,b)")
	assert.Contains(t, names, "movetotable(c,a)")
	assert.NotContains(t, names, "move(a,b,table)", "table is not a block")
	assert.NotContains(t, names, "move(a,a,b)", "bindings are distinct")
	// move: 3 blocks * 2 targets * 2 sources; movetotable: 3 * 2.
	assert.Len(t, p.Actions, 12+6)
}

func TestParse_GroundedEffects(t *testing.T) {
	p, err := Load("testdata/blocks-domain.pddl", "testdata/blocks-p03.pddl")
	require.NoError(t, err)

	var move model.Action
	for _, a := range p.Actions {
		if a.Key() == "move(b,table,c)" {
			move = a
		}
	}
	require.Equal(t, "move", move.Name)
	assert.ElementsMatch(t, []string{"on(b,table)", "clear(b)", "clear(c)"}, keys(move.PrecondPos))
	assert.ElementsMatch(t, []string{"on(b,c)", "clear(table)"}, keys(move.Add))
	assert.ElementsMatch(t, []string{"on(b,table)", "clear(c)"}, keys(move.Del))
}

func TestParse_ClosedWorldNegatives(t *testing.T) {
	p, err := Load("testdata/lights-domain.pddl", "testdata/lights-p01.pddl")
	require.NoError(t, err)

	assert.Equal(t, []string{"on(hall)"}, keys(p.Init))
	assert.Equal(t, []string{"broken(hall)", "broken(kitchen)", "on(kitchen)"}, keys(p.InitNeg))
	assert.Equal(t, []string{"on(kitchen)"}, keys(p.GoalsPos))
	assert.Equal(t, []string{"on(hall)"}, keys(p.GoalsNeg))

	pos := model.NewLiteralSet(model.MustParseLiteral("on(kitchen)"))
	neg := model.NewLiteralSet(model.MustParseLiteral("on(hall)"))
	assert.True(t, p.GoalTest(pos, neg))
	assert.False(t, p.GoalTest(pos, model.NewLiteralSet()))
}

func TestFingerprint(t *testing.T) {
	domain, err := os.ReadFile("testdata/blocks-domain.pddl")
	require.NoError(t, err)
	problem, err := os.ReadFile("testdata/blocks-p03.pddl")
	require.NoError(t, err)

	p1, err := Parse(string(domain), string(problem))
	require.NoError(t, err)
	assert.Len(t, p1.Fingerprint(), FingerprintLength)

	reformatted := "; moved comments around\n" + string(problem) + "\n\n"
	p2, err := Parse(string(domain), reformatted)
	require.NoError(t, err)
	assert.Equal(t, p1.Fingerprint(), p2.Fingerprint())

	other, err := Load("testdata/blocks-domain.pddl", "testdata/blocks-trivial.pddl")
	require.NoError(t, err)
	assert.NotEqual(t, p1.Fingerprint(), other.Fingerprint())
}

func TestParse_Invalid(t *testing.T) {
	domain, err := os.ReadFile(filepath.Join("testdata", "blocks-domain.pddl"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		domain  string
		problem string
	}{
		{"empty domain", "", "(define (problem p) (:goal (on a b)))"},
		{"unbalanced", "(define (domain d) (:action a :parameters () :effect (p))", "(define (problem p) (:goal (p)))"},
		{"trailing input", string(domain) + ")", "(define (problem p) (:goal (on a b)))"},
		{"no goal", string(domain), "(define (problem p) (:domain blocksworld) (:objects a))"},
		{"disjunctive goal", string(domain), "(define (problem p) (:domain blocksworld) (:goal (or (on a b) (on b a))))"},
		{"undeclared predicate", string(domain), "(define (problem p) (:domain blocksworld) (:goal (above a b)))"},
		{"wrong arity", string(domain), "(define (problem p) (:domain blocksworld) (:goal (on a)))"},
		{"undeclared variable", "(define (domain d) (:action a :parameters (?x) :precondition (p ?y) :effect (q ?x)))", "(define (problem p) (:goal (q a)))"},
		{"unknown section", "(define (domain d) (:frobnicate))", "(define (problem p) (:goal (q a)))"},
		{"no actions", "(define (domain d) (:predicates (p)))", "(define (problem p) (:goal (p)))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.domain, tt.problem)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProblem), "got %v", err)
		})
	}
}

func TestParse_DomainMismatch(t *testing.T) {
	domain, err := os.ReadFile("testdata/blocks-domain.pddl")
	require.NoError(t, err)

	_, err = Parse(string(domain), "(define (problem p) (:domain logistics) (:goal (on a b)))")
	assert.ErrorIs(t, err, ErrDomainMismatch)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/nope.pddl", "testdata/blocks-p03.pddl")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTokenize_Comments(t *testing.T) {
	toks := tokenize("(A ; comment (ignored)\n B)")
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.text)
	}
	assert.Equal(t, []string{"(", "a", "b", ")"}, texts)
	assert.Equal(t, 2, toks[2].line)
}
