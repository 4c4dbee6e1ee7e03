// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestNew_NoFiles(t *testing.T) {
	_, err := New(nil, Options{})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent", "p.pddl")}, Options{})
	assert.Error(t, err)
}

func TestWatcher_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	domain := filepath.Join(dir, "domain.pddl")
	problem := filepath.Join(dir, "p01.pddl")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, domain, "(define (domain d))")
	writeFile(t, problem, "(define (problem p))")

	w, err := New([]string{domain, problem}, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) { got <- changed })
	}()

	writeFile(t, other, "ignored")
	writeFile(t, problem, "(define (problem p2))")
	writeFile(t, problem, "(define (problem p3))")

	select {
	case changed := <-got:
		abs, _ := filepath.Abs(problem)
		assert.Equal(t, []string{abs}, changed)
	case <-ctx.Done():
		t.Fatal("no change delivered")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_CloseEndsRun(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "p.pddl")
	writeFile(t, f, "x")

	w, err := New([]string{f}, Options{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), func(context.Context, []string) {}) }()

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
