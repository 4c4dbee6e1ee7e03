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

// IsFixpoint reports whether the graph has leveled off: the two most recent
// levels hold identical positive and identical negative literal sets.
// Graphs with fewer than two levels are never at a fixpoint.
//
// Mutex relations are not compared. A graph whose literal sets stopped
// growing while mutexes are still relaxing is reported as leveled off.
func IsFixpoint(g PlanningGraph) bool {
	n := g.LevelCount()
	if n < 2 {
		return false
	}
	return g.PositiveLiterals(n-1).Equal(g.PositiveLiterals(n-2)) &&
		g.NegativeLiterals(n-1).Equal(g.NegativeLiterals(n-2))
}
