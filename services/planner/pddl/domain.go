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
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// rootType is the implicit supertype of every PDDL type.
const rootType = "object"

// Param is a typed operator or predicate parameter.
type Param struct {
	Name string
	Type string
}

// Schema is an ungrounded operator.
type Schema struct {
	Name   string
	Params []Param

	// Template carries the schematic literals; Args is empty until grounded.
	Template model.Action
}

// Domain is a parsed PDDL domain.
type Domain struct {
	Name         string
	Requirements []string

	// Types maps each declared type to its parent.
	Types map[string]string

	// Constants maps constant names to their type, in declaration order.
	Constants      map[string]string
	constantsOrder []string

	// Predicates maps predicate names to their typed parameters.
	Predicates map[string][]Param

	Schemas []Schema
}

// ParseDomain parses the text of a PDDL domain file.
//
// Outputs:
//   - *Domain: The parsed domain.
//   - error: Wraps ErrInvalidProblem on malformed input.
func ParseDomain(src string) (*Domain, error) {
	root, err := readSExpr(src)
	if err != nil {
		return nil, fmt.Errorf("domain: %w", err)
	}
	if root.head() != "define" || len(root.list) < 2 {
		return nil, invalidf(root, "domain must start with (define ...)")
	}
	nameNode := root.list[1]
	if nameNode.head() != "domain" || len(nameNode.list) != 2 || !nameNode.list[1].isAtom() {
		return nil, invalidf(nameNode, "expected (domain NAME)")
	}

	d := &Domain{
		Name:       nameNode.list[1].atom,
		Types:      map[string]string{},
		Constants:  map[string]string{},
		Predicates: map[string][]Param{},
	}

	for _, section := range root.list[2:] {
		switch section.head() {
		case ":requirements":
			for _, r := range section.list[1:] {
				if !r.isAtom() {
					return nil, invalidf(r, "requirement must be a symbol")
				}
				d.Requirements = append(d.Requirements, r.atom)
			}
		case ":types":
			typed, err := parseTypedList(section.list[1:])
			if err != nil {
				return nil, err
			}
			for _, p := range typed {
				d.Types[p.Name] = p.Type
			}
		case ":constants":
			typed, err := parseTypedList(section.list[1:])
			if err != nil {
				return nil, err
			}
			for _, p := range typed {
				if _, dup := d.Constants[p.Name]; !dup {
					d.constantsOrder = append(d.constantsOrder, p.Name)
				}
				d.Constants[p.Name] = p.Type
			}
		case ":predicates":
			for _, p := range section.list[1:] {
				if p.isAtom() || len(p.list) == 0 || !p.list[0].isAtom() {
					return nil, invalidf(p, "predicate declaration must be (name ?args...)")
				}
				params, err := parseTypedList(p.list[1:])
				if err != nil {
					return nil, err
				}
				d.Predicates[p.list[0].atom] = params
			}
		case ":action":
			s, err := parseSchema(section)
			if err != nil {
				return nil, err
			}
			d.Schemas = append(d.Schemas, s)
		case ":functions", ":derived", ":durative-action":
			return nil, invalidf(section, "unsupported section %s", section.head())
		default:
			return nil, invalidf(section, "unknown domain section %q", section.head())
		}
	}
	if len(d.Schemas) == 0 {
		return nil, fmt.Errorf("%w: domain %q declares no actions", ErrInvalidProblem, d.Name)
	}
	return d, nil
}

// isSubtype reports whether t equals want or descends from it.
func (d *Domain) isSubtype(t, want string) bool {
	if want == "" || want == rootType {
		return true
	}
	seen := map[string]bool{}
	for t != "" && !seen[t] {
		if t == want {
			return true
		}
		seen[t] = true
		t = d.Types[t]
	}
	return false
}

func parseSchema(n node) (Schema, error) {
	if len(n.list) < 2 || !n.list[1].isAtom() {
		return Schema{}, invalidf(n, "action needs a name")
	}
	s := Schema{Name: n.list[1].atom}
	s.Template.Name = s.Name

	rest := n.list[2:]
	for i := 0; i < len(rest); i++ {
		key := rest[i]
		if !key.isAtom() {
			return Schema{}, invalidf(key, "expected action keyword in %s", s.Name)
		}
		if i+1 >= len(rest) {
			return Schema{}, invalidf(key, "missing value for %s in %s", key.atom, s.Name)
		}
		val := rest[i+1]
		i++

		switch key.atom {
		case ":parameters":
			if val.isAtom() {
				return Schema{}, invalidf(val, "parameters must be a list in %s", s.Name)
			}
			params, err := parseTypedList(val.list)
			if err != nil {
				return Schema{}, err
			}
			for _, p := range params {
				if !strings.HasPrefix(p.Name, "?") {
					return Schema{}, invalidf(val, "parameter %q of %s must start with '?'", p.Name, s.Name)
				}
			}
			s.Params = params
		case ":precondition":
			pos, neg, err := parseConjunction(val)
			if err != nil {
				return Schema{}, fmt.Errorf("precondition of %s: %w", s.Name, err)
			}
			s.Template.PrecondPos, s.Template.PrecondNeg = pos, neg
		case ":effect":
			add, del, err := parseConjunction(val)
			if err != nil {
				return Schema{}, fmt.Errorf("effect of %s: %w", s.Name, err)
			}
			s.Template.Add, s.Template.Del = add, del
		default:
			return Schema{}, invalidf(key, "unknown action keyword %s in %s", key.atom, s.Name)
		}
	}

	declared := map[string]bool{}
	for _, p := range s.Params {
		declared[p.Name] = true
	}
	all := [][]model.Literal{s.Template.PrecondPos, s.Template.PrecondNeg, s.Template.Add, s.Template.Del}
	for _, group := range all {
		for _, l := range group {
			for _, a := range l.Args {
				if strings.HasPrefix(a, "?") && !declared[a] {
					return Schema{}, invalidf(n, "undeclared variable %s in %s", a, s.Name)
				}
			}
		}
	}
	return s, nil
}

// parseConjunction flattens an atom, (not atom) or (and ...) into positive
// and negative literal lists.
func parseConjunction(n node) (pos, neg []model.Literal, err error) {
	if n.isAtom() {
		return nil, nil, invalidf(n, "expected a formula, found %q", n.atom)
	}
	if len(n.list) == 0 {
		return nil, nil, nil
	}
	switch n.head() {
	case "and":
		for _, c := range n.list[1:] {
			p, ng, err := parseConjunction(c)
			if err != nil {
				return nil, nil, err
			}
			pos = append(pos, p...)
			neg = append(neg, ng...)
		}
		return pos, neg, nil
	case "not":
		if len(n.list) != 2 {
			return nil, nil, invalidf(n, "not takes exactly one atom")
		}
		l, err := parseAtom(n.list[1])
		if err != nil {
			return nil, nil, err
		}
		return nil, []model.Literal{l}, nil
	case "or", "imply", "exists", "forall", "when", "increase", "decrease", "=":
		return nil, nil, invalidf(n, "unsupported construct %q", n.head())
	default:
		l, err := parseAtom(n)
		if err != nil {
			return nil, nil, err
		}
		return []model.Literal{l}, nil, nil
	}
}

func parseAtom(n node) (model.Literal, error) {
	if n.isAtom() || len(n.list) == 0 {
		return model.Literal{}, invalidf(n, "expected an atom like (pred args...)")
	}
	parts := make([]string, len(n.list))
	for i, c := range n.list {
		if !c.isAtom() {
			return model.Literal{}, invalidf(n, "nested list inside atom %s", n)
		}
		parts[i] = c.atom
	}
	return model.NewLiteral(parts[0], parts[1:]...), nil
}

// parseTypedList reads "a b - t1 c - t2 d" into typed params. Names with no
// trailing type get "object".
func parseTypedList(nodes []node) ([]Param, error) {
	var out []Param
	var pending []string
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		if !n.isAtom() {
			return nil, invalidf(n, "expected a name in typed list")
		}
		if n.atom == "-" {
			if i+1 >= len(nodes) || !nodes[i+1].isAtom() {
				return nil, invalidf(n, "dangling '-' in typed list")
			}
			if len(pending) == 0 {
				return nil, invalidf(n, "type %q has no names", nodes[i+1].atom)
			}
			t := nodes[i+1].atom
			for _, name := range pending {
				out = append(out, Param{Name: name, Type: t})
			}
			pending = pending[:0]
			i++
			continue
		}
		pending = append(pending, n.atom)
	}
	for _, name := range pending {
		out = append(out, Param{Name: name, Type: rootType})
	}
	return out, nil
}

func invalidf(n node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidProblem, n.line, fmt.Sprintf(format, args...))
}
