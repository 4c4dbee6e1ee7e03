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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianPlan/services/planner"
	"github.com/AleutianAI/AleutianPlan/services/planner/pddl"
)

// batchDomainFile is the domain every other *.pddl file in a batch
// directory is solved against.
const batchDomainFile = "domain.pddl"

// batchResult is one line of `graphplan batch` output.
type batchResult struct {
	File        string `json:"file"`
	Problem     string `json:"problem,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Solved      bool   `json:"solved"`
	Levels      int    `json:"levels"`
	Steps       int    `json:"steps"`
	Cached      bool   `json:"cached"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	Error       string `json:"error,omitempty"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	var noExpand bool
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Solve every problem in DIR against DIR/domain.pddl",
		Long: `Solves each *.pddl file in DIR other than domain.pddl, running up to
search.parallelism sessions at once. Each session has its own graph and
solver. Exits non-zero when a problem fails to load or solve; unsolvable
problems are reported, not treated as failures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, false, func(a *app) error {
				results, err := runBatch(cmd.Context(), a, args[0], !noExpand)
				if results == nil && err != nil {
					return err
				}
				if rerr := a.renderBatch(results); rerr != nil {
					return rerr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "Run a single extraction round per problem")
	return cmd
}

// batchProblems lists the problem files of dir in name order.
func batchProblems(dir string) (domain string, problems []string, err error) {
	domain = filepath.Join(dir, batchDomainFile)
	if _, err := os.Stat(domain); err != nil {
		return "", nil, fmt.Errorf("batch directory %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == batchDomainFile || !strings.EqualFold(filepath.Ext(name), ".pddl") {
			continue
		}
		problems = append(problems, filepath.Join(dir, name))
	}
	sort.Strings(problems)
	return domain, problems, nil
}

// runBatch solves every problem concurrently. Results keep the file order;
// the returned error joins per-file failures.
func runBatch(ctx context.Context, a *app, dir string, autoExpand bool) ([]batchResult, error) {
	domain, problems, err := batchProblems(dir)
	if err != nil {
		return nil, err
	}
	a.logger.Info("batch started", slog.String("dir", dir), slog.Int("problems", len(problems)))

	results := make([]batchResult, len(problems))
	errs := make([]error, len(problems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Search.Parallelism)
	for i, path := range problems {
		i, path := i, path
		g.Go(func() error {
			results[i], errs[i] = solveBatchItem(gctx, a, domain, path, autoExpand)
			// Per-file errors are collected, not propagated, so one bad
			// file does not cancel the rest. Cancellation still stops all.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var failed []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", filepath.Base(problems[i]), err))
		}
	}
	return results, errors.Join(failed...)
}

func solveBatchItem(ctx context.Context, a *app, domain, path string, autoExpand bool) (batchResult, error) {
	res := batchResult{File: filepath.Base(path)}
	p, err := pddl.Load(domain, path)
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Problem = p.Name
	res.Fingerprint = p.Fingerprint()

	out, err := a.svc.Solve(ctx, p, planner.SolveOptions{AutoExpand: autoExpand && a.cfg.Search.AutoExpand})
	if err != nil {
		res.Error = err.Error()
		return res, err
	}
	res.Solved = out.Solved
	res.Levels = out.Levels
	res.Cached = out.Cached
	res.ElapsedMs = out.Elapsed.Milliseconds()
	if out.Solved {
		for _, step := range out.Solutions[0] {
			if len(step) > 0 {
				res.Steps++
			}
		}
	}
	return res, nil
}

func (a *app) renderBatch(results []batchResult) error {
	if a.jsonOut {
		if results == nil {
			results = []batchResult{}
		}
		return a.writeJSON(results)
	}
	solved := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			a.printer.Error(fmt.Sprintf("%s: %s", r.File, r.Error))
		case r.Solved:
			solved++
			a.printer.Success(fmt.Sprintf("%s: %s solved in %d step(s), %d level(s)", r.File, r.Problem, r.Steps, r.Levels))
		default:
			a.printer.Warning(fmt.Sprintf("%s: %s has no plan (%d level(s))", r.File, r.Problem, r.Levels))
		}
	}
	a.printer.Field("solved", fmt.Sprintf("%d/%d", solved, len(results)))
	return nil
}
