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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// FingerprintLength is the length of Problem.Fingerprint (SHA256 truncated).
const FingerprintLength = 16

// Problem is a fully grounded planning problem ready for graph construction.
//
// Thread Safety: Immutable after Parse returns; safe for concurrent reads.
type Problem struct {
	Name   string
	Domain string

	// Objects are every object and domain constant, sorted.
	Objects []string

	// Init is the initial positive literal set.
	Init []model.Literal

	// InitNeg is the closed-world negative literal set for predicates that
	// appear negatively in a precondition or in the goal.
	InitNeg []model.Literal

	// Actions are the ground actions, sorted by key.
	Actions []model.Action

	GoalsPos []model.Literal
	GoalsNeg []model.Literal
}

// Load reads and grounds a domain and problem file pair.
//
// Inputs:
//   - domainPath: Path to the PDDL domain file.
//   - problemPath: Path to the PDDL problem file.
//
// Outputs:
//   - *Problem: The grounded problem.
//   - error: Non-nil if either file cannot be read or parsed.
func Load(domainPath, problemPath string) (*Problem, error) {
	domainSrc, err := os.ReadFile(domainPath)
	if err != nil {
		return nil, fmt.Errorf("reading domain: %w", err)
	}
	problemSrc, err := os.ReadFile(problemPath)
	if err != nil {
		return nil, fmt.Errorf("reading problem: %w", err)
	}
	return Parse(string(domainSrc), string(problemSrc))
}

// Parse parses and grounds a domain and a problem given as text.
//
// Description:
//
//	Every operator parameter is bound to the objects (and domain constants)
//	of its type, with pairwise distinct bindings. Ground actions whose
//	static preconditions do not hold initially are dropped, a static
//	predicate being one no operator adds or deletes.
//
// Outputs:
//   - *Problem: The grounded problem.
//   - error: Wraps ErrInvalidProblem or ErrDomainMismatch.
func Parse(domainSrc, problemSrc string) (*Problem, error) {
	d, err := ParseDomain(domainSrc)
	if err != nil {
		return nil, err
	}
	ps, err := ParseProblem(problemSrc)
	if err != nil {
		return nil, err
	}
	if ps.Domain != "" && ps.Domain != d.Name {
		return nil, fmt.Errorf("%w: problem %q wants %q, got %q", ErrDomainMismatch, ps.Name, ps.Domain, d.Name)
	}
	return ground(d, ps)
}

func ground(d *Domain, ps *ProblemSpec) (*Problem, error) {
	types := map[string]string{}
	var names []string
	for _, c := range d.constantsOrder {
		types[c] = d.Constants[c]
		names = append(names, c)
	}
	for _, o := range ps.objectsOrder {
		if _, dup := types[o]; !dup {
			names = append(names, o)
		}
		types[o] = ps.Objects[o]
	}
	sort.Strings(names)

	if err := checkArity(d, ps); err != nil {
		return nil, err
	}

	init := model.NewLiteralSet(ps.Init...)
	static := staticPredicates(d)

	var actions []model.Action
	for _, s := range d.Schemas {
		candidates := make([][]string, len(s.Params))
		for i, p := range s.Params {
			for _, name := range names {
				if d.isSubtype(types[name], p.Type) {
					candidates[i] = append(candidates[i], name)
				}
			}
		}
		paramNames := make([]string, len(s.Params))
		for i, p := range s.Params {
			paramNames[i] = p.Name
		}

		binding := make(map[string]string, len(s.Params))
		used := make(map[string]bool, len(s.Params))
		var walk func(i int)
		walk = func(i int) {
			if i == len(s.Params) {
				a := s.Template.Ground(paramNames, binding)
				if staticallyApplicable(a, static, init) {
					actions = append(actions, a)
				}
				return
			}
			for _, obj := range candidates[i] {
				if used[obj] {
					continue
				}
				used[obj] = true
				binding[paramNames[i]] = obj
				walk(i + 1)
				used[obj] = false
			}
			delete(binding, paramNames[i])
		}
		walk(0)
	}
	model.SortActions(actions)

	p := &Problem{
		Name:     ps.Name,
		Domain:   d.Name,
		Objects:  names,
		Init:     init.Sorted(),
		Actions:  actions,
		GoalsPos: model.DedupLiterals(ps.GoalsPos),
		GoalsNeg: model.DedupLiterals(ps.GoalsNeg),
	}
	p.InitNeg = closedWorldNegatives(d, ps, types, names, init)
	return p, nil
}

// checkArity rejects literals whose argument count disagrees with the
// declared predicate.
func checkArity(d *Domain, ps *ProblemSpec) error {
	check := func(where string, lits []model.Literal) error {
		for _, l := range lits {
			params, ok := d.Predicates[l.Predicate]
			if !ok {
				if len(d.Predicates) == 0 {
					continue
				}
				return fmt.Errorf("%w: %s uses undeclared predicate %q", ErrInvalidProblem, where, l.Predicate)
			}
			if len(params) != len(l.Args) {
				return fmt.Errorf("%w: %s uses %s with %d args, declared with %d",
					ErrInvalidProblem, where, l.Predicate, len(l.Args), len(params))
			}
		}
		return nil
	}
	for _, s := range d.Schemas {
		t := s.Template
		for _, group := range [][]model.Literal{t.PrecondPos, t.PrecondNeg, t.Add, t.Del} {
			if err := check("action "+s.Name, group); err != nil {
				return err
			}
		}
	}
	for _, group := range [][]model.Literal{ps.Init, ps.GoalsPos, ps.GoalsNeg} {
		if err := check("problem "+ps.Name, group); err != nil {
			return err
		}
	}
	return nil
}

func staticPredicates(d *Domain) map[string]bool {
	dynamic := map[string]bool{}
	for _, s := range d.Schemas {
		for _, l := range s.Template.Add {
			dynamic[l.Predicate] = true
		}
		for _, l := range s.Template.Del {
			dynamic[l.Predicate] = true
		}
	}
	static := map[string]bool{}
	for _, s := range d.Schemas {
		for _, l := range append(append([]model.Literal{}, s.Template.PrecondPos...), s.Template.PrecondNeg...) {
			if !dynamic[l.Predicate] {
				static[l.Predicate] = true
			}
		}
	}
	return static
}

func staticallyApplicable(a model.Action, static map[string]bool, init model.LiteralSet) bool {
	for _, l := range a.PrecondPos {
		if static[l.Predicate] && !init.Contains(l) {
			return false
		}
	}
	for _, l := range a.PrecondNeg {
		if static[l.Predicate] && init.Contains(l) {
			return false
		}
	}
	return true
}

// closedWorldNegatives enumerates every false ground atom of the predicates
// that are ever required to be false.
func closedWorldNegatives(d *Domain, ps *ProblemSpec, types map[string]string, names []string, init model.LiteralSet) []model.Literal {
	negPreds := map[string]int{}
	note := func(lits []model.Literal) {
		for _, l := range lits {
			negPreds[l.Predicate] = len(l.Args)
		}
	}
	for _, s := range d.Schemas {
		note(s.Template.PrecondNeg)
	}
	note(ps.GoalsNeg)

	out := model.NewLiteralSet()
	for pred, arity := range negPreds {
		argTypes := make([]string, arity)
		if params, ok := d.Predicates[pred]; ok && len(params) == arity {
			for i, p := range params {
				argTypes[i] = p.Type
			}
		}
		args := make([]string, arity)
		var walk func(i int)
		walk = func(i int) {
			if i == arity {
				l := model.NewLiteral(pred, args...)
				if !init.Contains(l) {
					out.Add(l)
				}
				return
			}
			for _, name := range names {
				if d.isSubtype(types[name], argTypes[i]) {
					args[i] = name
					walk(i + 1)
				}
			}
		}
		walk(0)
	}
	return out.Sorted()
}

// GoalTest reports whether the goal holds in a state: every positive goal is
// in pos and every negative goal is in neg.
func (p *Problem) GoalTest(pos, neg model.LiteralSet) bool {
	return pos.ContainsAll(p.GoalsPos) && neg.ContainsAll(p.GoalsNeg)
}

// Fingerprint returns a stable hash of the grounded problem.
//
// Description:
//
//	The hash covers the initial state, the goal and every ground action in
//	canonical order, so formatting and comment changes in the source files
//	do not change it. It is the key of persisted solutions.
//
// Outputs:
//   - string: 16-character hex hash.
//
// Thread Safety: Safe for concurrent use (stateless).
func (p *Problem) Fingerprint() string {
	var b strings.Builder
	writeLits := func(tag string, lits []model.Literal) {
		b.WriteString(tag)
		b.WriteByte('[')
		keys := make([]string, len(lits))
		for i, l := range lits {
			keys[i] = l.Key()
		}
		sort.Strings(keys)
		b.WriteString(strings.Join(keys, " "))
		b.WriteString("]\n")
	}
	writeLits("init", p.Init)
	writeLits("init-neg", p.InitNeg)
	writeLits("goal+", p.GoalsPos)
	writeLits("goal-", p.GoalsNeg)
	for _, a := range p.Actions {
		b.WriteString(a.Key())
		writeLits(" pre+", a.PrecondPos)
		writeLits(" pre-", a.PrecondNeg)
		writeLits(" add", a.Add)
		writeLits(" del", a.Del)
	}
	h := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(h[:])[:FingerprintLength]
}
