// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/services/planner"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
)

func newExpandCmd(root *rootOptions) *cobra.Command {
	var levels int
	cmd := &cobra.Command{
		Use:   "expand DOMAIN PROBLEM",
		Short: "Grow the planning graph and print per-level statistics",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, false, func(a *app) error {
				p, err := pddl.Load(args[0], args[1])
				if err != nil {
					return err
				}
				out, err := a.svc.Expand(cmd.Context(), p, levels)
				if err != nil {
					return err
				}
				return a.renderExpand(out)
			})
		},
	}
	cmd.Flags().IntVar(&levels, "levels", 1, "Number of action levels to build")
	return cmd
}

func (a *app) renderExpand(out *planner.ExpandOutcome) error {
	if a.jsonOut {
		return a.writeJSON(planner.ExpandResponse{Levels: out.Stats, Fixpoint: out.Fixpoint, GoalLevel: out.GoalLevel})
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tPOS\tNEG\tACTIONS\tPERSIST\tACTION MUTEX\tLITERAL MUTEX")
	for _, st := range out.Stats {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			st.Index, st.Positive, st.Negative, st.Actions, st.Persistence, st.ActionMutexes, st.LiteralMutexes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	goal := "not reached"
	if out.GoalLevel >= 0 {
		goal = strconv.Itoa(out.GoalLevel)
	}
	a.printer.Field("goal level", goal)
	a.printer.Field("fixpoint", out.Fixpoint)
	return nil
}

func newMutexCmd(root *rootOptions) *cobra.Command {
	var level int
	cmd := &cobra.Command{
		Use:   "mutex DOMAIN PROBLEM A B",
		Short: "Report whether two actions or literals are mutex at a level",
		Long: `A and B name two nodes of the same kind at --level: literals such as
"on(a,b)" or "not clear(c)", or actions such as "move(b,table,c)" and
persistence actions "P-on(a,b)". Action nodes need --level >= 1.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, false, func(a *app) error {
				p, err := pddl.Load(args[0], args[1])
				if err != nil {
					return err
				}
				m, err := a.svc.Mutex(cmd.Context(), p, level, args[2], args[3])
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.writeJSON(planner.MutexResponse{Level: level, A: args[2], B: args[3], Mutex: m})
				}
				fmt.Fprintf(a.out, "%s / %s at level %d: mutex=%t\n", args[2], args[3], level, m)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&level, "level", 0, "Graph level to query")
	return cmd
}
