// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-runs work when PDDL files change on disk.
//
// The parent directory of every file is watched rather than the file
// itself, so editors that save by writing a temp file and renaming it over
// the original are still seen. Bursts of events are collapsed into one
// callback per debounce window.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoFiles is returned by New when no files are given.
var ErrNoFiles = errors.New("no files to watch")

// ChangeHandler receives the sorted absolute paths that changed in one
// debounce window.
type ChangeHandler func(ctx context.Context, changed []string)

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period before the handler runs. Default 200ms.
	Debounce time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Watcher observes a fixed set of files.
//
// Thread Safety: Run must be called once. Close is safe from any goroutine.
type Watcher struct {
	files    map[string]bool
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New starts watching the directories holding files.
//
// Outputs:
//   - *Watcher: Call Run to receive changes and Close when done.
//   - error: ErrNoFiles, or an fsnotify setup failure.
func New(files []string, opts Options) (*Watcher, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		fsw:      fsw,
		debounce: opts.Debounce,
		logger:   opts.Logger.With(slog.String("component", "watch")),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}
	return w, nil
}

// Run delivers changes to fn until ctx is done or Close is called. fn runs
// on the calling goroutine, so a slow handler delays the next batch rather
// than overlapping it.
func (w *Watcher) Run(ctx context.Context, fn ChangeHandler) error {
	pending := make(map[string]bool)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-timerC:
			stopTimer()
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			w.logger.Debug("files changed", slog.Any("paths", changed))
			fn(ctx, changed)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !w.files[filepath.Clean(ev.Name)] {
		return false
	}
	// A removal alone is not actionable; the following create is.
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// Close stops watching. Run returns nil once the event channels close.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}
