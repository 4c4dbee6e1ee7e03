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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianPlan/pkg/ux"
	"github.com/AleutianAI/AleutianPlan/services/planner"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
	"github.com/AleutianAI/AleutianPlan/services/planner/watch"
)

type solveOptions struct {
	noExpand     bool
	all          bool
	noCache      bool
	watch        bool
	maxSolutions int
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve DOMAIN PROBLEM",
		Short: "Find a plan for a PDDL problem",
		Long: `Loads the domain and problem files, grows the planning graph until the
goals appear without mutexes, and extracts plans backwards from the last
level. Without --no-expand the graph keeps growing until a plan is found
or it levels off. Exits with status 2 when no plan exists.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, false, func(a *app) error {
				return runSolve(cmd.Context(), a, args[0], args[1], o)
			})
		},
	}
	cmd.Flags().BoolVar(&o.noExpand, "no-expand", false, "Run a single extraction round on the current graph")
	cmd.Flags().BoolVar(&o.all, "all", false, "Print every solution found at the goal level")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "Skip the plan store lookup")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "Solve again whenever DOMAIN or PROBLEM changes")
	cmd.Flags().IntVar(&o.maxSolutions, "max-solutions", 0, "Stop after N solutions (0 uses the config)")
	return cmd
}

func runSolve(ctx context.Context, a *app, domainPath, problemPath string, o *solveOptions) error {
	err := solveOnce(ctx, a, domainPath, problemPath, o)
	if !o.watch {
		return err
	}
	if err != nil && !errors.Is(err, errNoPlan) {
		a.printer.Error(err.Error())
	}

	w, err := watch.New([]string{domainPath, problemPath}, watch.Options{Logger: a.logger.Slog()})
	if err != nil {
		return err
	}
	defer w.Close()

	a.logger.Info("watching for changes", slog.String("domain", domainPath), slog.String("problem", problemPath))
	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		a.logger.Info("sources changed, solving again", slog.Any("files", changed))
		if err := solveOnce(ctx, a, domainPath, problemPath, o); err != nil && !errors.Is(err, errNoPlan) {
			a.printer.Error(err.Error())
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func solveOnce(ctx context.Context, a *app, domainPath, problemPath string, o *solveOptions) error {
	p, err := pddl.Load(domainPath, problemPath)
	if err != nil {
		return err
	}
	out, err := a.svc.Solve(ctx, p, planner.SolveOptions{
		AutoExpand:   a.cfg.Search.AutoExpand && !o.noExpand,
		MaxSolutions: o.maxSolutions,
		NoCache:      o.noCache,
	})
	if err != nil {
		return err
	}
	if err := a.renderSolve(out, o.all); err != nil {
		return err
	}
	if !out.Solved {
		return errNoPlan
	}
	return nil
}

func (a *app) renderSolve(out *planner.SolveOutcome, all bool) error {
	if a.jsonOut {
		return a.writeJSON(planner.SolveResponse{
			SessionID:   out.SessionID,
			Problem:     out.Problem,
			Fingerprint: out.Fingerprint,
			Solved:      out.Solved,
			Levels:      out.Levels,
			Solutions:   out.Solutions,
			Text:        out.Text,
			Cached:      out.Cached,
			ElapsedMs:   out.Elapsed.Milliseconds(),
		})
	}

	text := out.Text
	if all {
		text = out.AllText
	}
	text = strings.TrimRight(text, "\n")

	p := a.printer
	p.Title(fmt.Sprintf("%s (%s)", out.Problem, out.Fingerprint))
	switch {
	case p.Mode() != ux.ModeStyled:
		fmt.Fprintln(a.out, text)
	case out.Solved && !all:
		p.Success("Solution found")
		p.Steps(out.Solutions[0])
	default:
		p.Box("Plan", text)
	}
	p.Field("levels", out.Levels)
	p.Field("solutions", len(out.Solutions))
	p.Field("cached", out.Cached)
	p.Field("elapsed", out.Elapsed.Round(time.Millisecond))
	return nil
}
