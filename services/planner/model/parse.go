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
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidLiteral indicates text that is not a well-formed literal.
var ErrInvalidLiteral = errors.New("invalid literal")

// ParseLiteral parses a literal from its functional form "on(A, B)" or its
// s-expression form "(on a b)". Symbols are lower-cased.
//
// Description:
//
//	The parser is a small hand-written scanner over the predicate/argument
//	grammar:
//
//	  functional := symbol "(" [ symbol { "," symbol } ] ")"
//	  sexpr      := "(" symbol { symbol } ")"
//	  symbol     := letter-or-digit-or "-_?"...
//
//	No runtime evaluation is involved.
//
// Inputs:
//   - text: The literal text.
//
// Outputs:
//   - Literal: The parsed literal.
//   - error: Wraps ErrInvalidLiteral on malformed input.
func ParseLiteral(text string) (Literal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Literal{}, fmt.Errorf("%w: empty", ErrInvalidLiteral)
	}
	if s[0] == '(' {
		return parseSExpr(s)
	}
	return parseFunctional(s)
}

// MustParseLiteral is ParseLiteral that panics on error. For tests and
// static tables only.
func MustParseLiteral(text string) Literal {
	l, err := ParseLiteral(text)
	if err != nil {
		panic(err)
	}
	return l
}

// ParseLiterals parses every text with ParseLiteral.
func ParseLiterals(texts ...string) ([]Literal, error) {
	out := make([]Literal, 0, len(texts))
	for _, t := range texts {
		l, err := ParseLiteral(t)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func parseSExpr(s string) (Literal, error) {
	if !strings.HasSuffix(s, ")") {
		return Literal{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidLiteral, s)
	}
	fields := strings.Fields(s[1 : len(s)-1])
	if len(fields) == 0 {
		return Literal{}, fmt.Errorf("%w: missing predicate in %q", ErrInvalidLiteral, s)
	}
	for _, f := range fields {
		if !isSymbol(f) {
			return Literal{}, fmt.Errorf("%w: bad symbol %q in %q", ErrInvalidLiteral, f, s)
		}
	}
	args := make([]string, len(fields)-1)
	for i, f := range fields[1:] {
		args[i] = strings.ToLower(f)
	}
	return Literal{Predicate: strings.ToLower(fields[0]), Args: args}, nil
}

func parseFunctional(s string) (Literal, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if !isSymbol(s) {
			return Literal{}, fmt.Errorf("%w: bad symbol %q", ErrInvalidLiteral, s)
		}
		return Literal{Predicate: strings.ToLower(s), Args: []string{}}, nil
	}
	if !strings.HasSuffix(s, ")") || strings.Count(s, "(") != 1 || strings.Count(s, ")") != 1 {
		return Literal{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidLiteral, s)
	}
	pred := strings.TrimSpace(s[:open])
	if !isSymbol(pred) {
		return Literal{}, fmt.Errorf("%w: bad predicate %q", ErrInvalidLiteral, pred)
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	args := []string{}
	if inner != "" {
		for _, part := range strings.Split(inner, ",") {
			a := strings.TrimSpace(part)
			if !isSymbol(a) {
				return Literal{}, fmt.Errorf("%w: bad argument %q in %q", ErrInvalidLiteral, a, s)
			}
			args = append(args, strings.ToLower(a))
		}
	}
	return Literal{Predicate: strings.ToLower(pred), Args: args}, nil
}

// isSymbol reports whether s is a PDDL-style name or variable.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '-', '_', '?':
			continue
		}
		return false
	}
	return true
}
