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
	"fmt"
	"strings"
)

// NoSolutionText is rendered when there is nothing to show.
const NoSolutionText = "No solution found!"

// FormatSolution renders the first solution, one line per level in
// execution order with persistence actions omitted:
//
//	Solution found and is of the following:
//	1:movetotable(c,a)
//	2:move(b,table,c)
func FormatSolution(solutions []Solution) string {
	if len(solutions) == 0 {
		return NoSolutionText
	}
	var b strings.Builder
	b.WriteString("Solution found and is of the following:\n")
	writeSteps(&b, solutions[0])
	return b.String()
}

// FormatAll renders every solution, each under its own header.
func FormatAll(solutions []Solution) string {
	if len(solutions) == 0 {
		return NoSolutionText
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d solution(s):\n", len(solutions))
	for i, s := range solutions {
		fmt.Fprintf(&b, "Solution %d:\n", i+1)
		writeSteps(&b, s)
	}
	return b.String()
}

func writeSteps(b *strings.Builder, s Solution) {
	for i, st := range s.Plan() {
		fmt.Fprintf(b, "%d:%s\n", i+1, strings.Join(st.Names(), ", "))
	}
}
