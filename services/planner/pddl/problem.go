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

	"github.com/AleutianAI/AleutianPlan/services/planner/model"
)

// ProblemSpec is a parsed, ungrounded PDDL problem.
type ProblemSpec struct {
	Name   string
	Domain string

	// Objects maps object names to their type.
	Objects      map[string]string
	objectsOrder []string

	Init     []model.Literal
	GoalsPos []model.Literal
	GoalsNeg []model.Literal
}

// ParseProblem parses the text of a PDDL problem file.
//
// Outputs:
//   - *ProblemSpec: The parsed problem.
//   - error: Wraps ErrInvalidProblem on malformed input.
func ParseProblem(src string) (*ProblemSpec, error) {
	root, err := readSExpr(src)
	if err != nil {
		return nil, fmt.Errorf("problem: %w", err)
	}
	if root.head() != "define" || len(root.list) < 2 {
		return nil, invalidf(root, "problem must start with (define ...)")
	}
	nameNode := root.list[1]
	if nameNode.head() != "problem" || len(nameNode.list) != 2 || !nameNode.list[1].isAtom() {
		return nil, invalidf(nameNode, "expected (problem NAME)")
	}

	p := &ProblemSpec{
		Name:    nameNode.list[1].atom,
		Objects: map[string]string{},
	}
	sawGoal := false

	for _, section := range root.list[2:] {
		switch section.head() {
		case ":domain":
			if len(section.list) != 2 || !section.list[1].isAtom() {
				return nil, invalidf(section, "expected (:domain NAME)")
			}
			p.Domain = section.list[1].atom
		case ":requirements":
			// Problem-level requirements add nothing for STRIPS.
		case ":objects":
			typed, err := parseTypedList(section.list[1:])
			if err != nil {
				return nil, err
			}
			for _, o := range typed {
				if _, dup := p.Objects[o.Name]; !dup {
					p.objectsOrder = append(p.objectsOrder, o.Name)
				}
				p.Objects[o.Name] = o.Type
			}
		case ":init":
			for _, a := range section.list[1:] {
				if a.head() == "not" {
					// Closed world: listing a false atom is redundant.
					continue
				}
				l, err := parseAtom(a)
				if err != nil {
					return nil, err
				}
				p.Init = append(p.Init, l)
			}
		case ":goal":
			if len(section.list) != 2 {
				return nil, invalidf(section, "expected (:goal FORMULA)")
			}
			pos, neg, err := parseConjunction(section.list[1])
			if err != nil {
				return nil, fmt.Errorf("goal: %w", err)
			}
			p.GoalsPos, p.GoalsNeg = pos, neg
			sawGoal = true
		case ":metric":
			return nil, invalidf(section, "unsupported section :metric")
		default:
			return nil, invalidf(section, "unknown problem section %q", section.head())
		}
	}
	if !sawGoal {
		return nil, fmt.Errorf("%w: problem %q has no goal", ErrInvalidProblem, p.Name)
	}
	if len(p.GoalsPos)+len(p.GoalsNeg) == 0 {
		return nil, fmt.Errorf("%w: problem %q has an empty goal", ErrInvalidProblem, p.Name)
	}
	p.Init = model.DedupLiterals(p.Init)
	return p, nil
}
