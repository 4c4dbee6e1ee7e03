// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command graphplan solves STRIPS planning problems written in PDDL.
//
// Usage:
//
//	graphplan solve DOMAIN PROBLEM [--no-expand] [--all] [--max-solutions N] [--watch]
//	graphplan expand DOMAIN PROBLEM --levels N
//	graphplan mutex DOMAIN PROBLEM --level L A B
//	graphplan batch DIR
//	graphplan serve [--addr HOST:PORT]
//	graphplan version
//
// Configuration is read from ~/.aleutian/graphplan.yaml, created with
// defaults on first run.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errNoPlan) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// errNoPlan reports a completed search that found no plan. It maps to exit
// status 2 so scripts can tell it apart from failures.
var errNoPlan = errors.New("no plan found")

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNoPlan):
		return 2
	default:
		return 1
	}
}
