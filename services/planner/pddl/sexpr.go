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
	"unicode"
)

// node is one element of a parsed s-expression: either an atom or a list.
type node struct {
	atom string
	list []node
	line int
}

func (n node) isAtom() bool {
	return n.list == nil
}

// head returns the lower-cased first atom of a list, or "" if there is none.
func (n node) head() string {
	if n.isAtom() || len(n.list) == 0 || !n.list[0].isAtom() {
		return ""
	}
	return n.list[0].atom
}

func (n node) String() string {
	if n.isAtom() {
		return n.atom
	}
	parts := make([]string, len(n.list))
	for i, c := range n.list {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type token struct {
	text string
	line int
}

// tokenize splits PDDL source into parentheses and symbols. Comments start
// with ';' and run to end of line. Symbols are lower-cased.
func tokenize(src string) []token {
	var tokens []token
	line := 1
	var cur strings.Builder
	curLine := 0
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{text: strings.ToLower(cur.String()), line: curLine})
			cur.Reset()
		}
	}

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == ';':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
		case r == '\n':
			flush()
			line++
		case r == '(' || r == ')':
			flush()
			tokens = append(tokens, token{text: string(r), line: line})
		case unicode.IsSpace(r):
			flush()
		default:
			if cur.Len() == 0 {
				curLine = line
			}
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// readSExpr parses exactly one top-level list from src.
func readSExpr(src string) (node, error) {
	tokens := tokenize(src)
	if len(tokens) == 0 {
		return node{}, fmt.Errorf("%w: empty input", ErrInvalidProblem)
	}
	pos := 0
	n, err := readNode(tokens, &pos)
	if err != nil {
		return node{}, err
	}
	if n.isAtom() {
		return node{}, fmt.Errorf("%w: line %d: expected '(' but found %q", ErrInvalidProblem, n.line, n.atom)
	}
	if pos != len(tokens) {
		return node{}, fmt.Errorf("%w: line %d: unexpected trailing input %q", ErrInvalidProblem, tokens[pos].line, tokens[pos].text)
	}
	return n, nil
}

func readNode(tokens []token, pos *int) (node, error) {
	if *pos >= len(tokens) {
		return node{}, fmt.Errorf("%w: unexpected end of input", ErrInvalidProblem)
	}
	t := tokens[*pos]
	*pos++
	switch t.text {
	case ")":
		return node{}, fmt.Errorf("%w: line %d: unexpected ')'", ErrInvalidProblem, t.line)
	case "(":
		n := node{list: []node{}, line: t.line}
		for {
			if *pos >= len(tokens) {
				return node{}, fmt.Errorf("%w: line %d: unclosed '('", ErrInvalidProblem, t.line)
			}
			if tokens[*pos].text == ")" {
				*pos++
				return n, nil
			}
			child, err := readNode(tokens, pos)
			if err != nil {
				return node{}, err
			}
			n.list = append(n.list, child)
		}
	default:
		return node{atom: t.text, line: t.line}, nil
	}
}
