// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planstore caches solve results in BadgerDB, keyed by the problem
// fingerprint and the search settings that produced them.
//
// A planning problem is deterministic: the same domain and problem text
// solved with the same settings yields the same plans. The service and the
// CLI consult the store before building a graph and write back after a
// solve, including unsolvable outcomes.
package planstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	dgbadger "github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/AleutianPlan/services/planner/storage/badger"
)

const keyPrefix = "plan:"

// Record is one cached solve outcome.
type Record struct {
	// Fingerprint identifies the problem (pddl.Problem.Fingerprint).
	Fingerprint string

	// Search identifies the settings, see SearchKey.
	Search string

	// Problem is the problem name, for listings.
	Problem string

	// Solved is false for problems proven unsolvable by level-off.
	Solved bool

	// Levels is the number of action levels the graph reached.
	Levels int

	// Solutions holds action names per step per solution, persistence
	// actions excluded.
	Solutions [][][]string

	// Text is the rendered first solution; AllText lists every solution.
	Text    string
	AllText string

	CreatedAt time.Time
}

// SearchKey renders the settings that influence a solve result.
func SearchKey(autoExpand bool, maxSolutions, maxLevels int, strictNegativeBase bool) string {
	return fmt.Sprintf("expand=%t,max=%d,levels=%d,strict=%t", autoExpand, maxSolutions, maxLevels, strictNegativeBase)
}

func recordKey(fingerprint, search string) []byte {
	return []byte(keyPrefix + fingerprint + ":" + search)
}

// Config configures a Store.
type Config struct {
	// DB selects where records live.
	DB badger.Config

	// TTL expires records after the given age. 0 keeps them forever.
	TTL time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a BadgerDB-backed plan cache.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
	closed atomic.Bool
}

// Open opens the store and its database.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "planstore"))
	if cfg.DB.Logger == nil {
		cfg.DB.Logger = logger
	}

	db, err := badger.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("opening plan store: %w", err)
	}
	logger.Debug("plan store opened",
		slog.String("path", db.Path()),
		slog.Bool("in_memory", db.InMemory()))
	return &Store{db: db, ttl: cfg.TTL, logger: logger}, nil
}

// Get loads the record for fingerprint and search.
//
// Outputs:
//   - Record: The cached outcome.
//   - error: ErrPlanNotFound, ErrCorruptRecord, ErrStoreClosed, or a
//     database error.
func (s *Store) Get(ctx context.Context, fingerprint, search string) (Record, error) {
	if s.closed.Load() {
		return Record{}, ErrStoreClosed
	}
	var data []byte
	err := s.db.WithReadTxn(ctx, func(txn *dgbadger.Txn) error {
		item, err := txn.Get(recordKey(fingerprint, search))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, dgbadger.ErrKeyNotFound) {
		recordLookup(ctx, "miss")
		return Record{}, fmt.Errorf("%w: %s", ErrPlanNotFound, fingerprint)
	}
	if err != nil {
		recordLookup(ctx, "error")
		return Record{}, fmt.Errorf("reading plan %s: %w", fingerprint, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		recordLookup(ctx, "corrupt")
		s.logger.Warn("dropping corrupt plan record",
			slog.String("fingerprint", fingerprint),
			slog.String("error", err.Error()))
		return Record{}, err
	}
	recordLookup(ctx, "hit")
	return rec, nil
}

// Put stores rec, replacing any record under the same key. CreatedAt is
// set when zero.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if rec.Fingerprint == "" {
		return ErrInvalidRecord
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	err = s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		e := dgbadger.NewEntry(recordKey(rec.Fingerprint, rec.Search), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("writing plan %s: %w", rec.Fingerprint, err)
	}
	s.logger.Debug("plan stored",
		slog.String("fingerprint", rec.Fingerprint),
		slog.Bool("solved", rec.Solved),
		slog.Int("levels", rec.Levels))
	return nil
}

// Delete removes every record of fingerprint, whatever its settings, and
// returns how many were removed.
func (s *Store) Delete(ctx context.Context, fingerprint string) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	var keys [][]byte
	prefix := []byte(keyPrefix + fingerprint + ":")
	if err := s.db.ScanPrefix(ctx, prefix, func(k, _ []byte) error {
		keys = append(keys, k)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("scanning plan %s: %w", fingerprint, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	err := s.db.WithTxn(ctx, func(txn *dgbadger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("deleting plan %s: %w", fingerprint, err)
	}
	return len(keys), nil
}

// List returns every readable record in key order. Corrupt records are
// skipped and logged.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	var out []Record
	err := s.db.ScanPrefix(ctx, []byte(keyPrefix), func(k, v []byte) error {
		rec, err := decodeRecord(v)
		if err != nil {
			s.logger.Warn("skipping corrupt plan record",
				slog.String("key", strings.TrimPrefix(string(k), keyPrefix)),
				slog.String("error", err.Error()))
			return nil
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return out, nil
}

// Close closes the database. Later calls are no-ops.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

var (
	meter = otel.Meter("aleutian.planner.planstore")

	metricsOnce  sync.Once
	lookupsTotal metric.Int64Counter
)

func initMetrics() {
	metricsOnce.Do(func() {
		var err error
		lookupsTotal, err = meter.Int64Counter(
			"plan_store_lookups_total",
			metric.WithDescription("Plan store lookups by result"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			slog.Warn("failed to create plan store metric", slog.String("error", err.Error()))
		}
	})
}

func recordLookup(ctx context.Context, result string) {
	initMetrics()
	if lookupsTotal != nil {
		lookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
