// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package processlog persists the lifecycle of every analysis run in an
// embedded Badger store: start, finish, success, error messages and the
// result count. The web monitor reads it back by analysis.
package processlog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/terrama2/terrama2/internal/analysis/runcontext"
	"github.com/terrama2/terrama2/internal/bus"
	"github.com/terrama2/terrama2/internal/logging"
)

// Status of one logged run.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Entry is one run's log record.
type Entry struct {
	RunID      runcontext.RunID `json:"run_id"`
	AnalysisID uint64           `json:"analysis_id"`
	Status     Status           `json:"status"`
	StartTime  time.Time        `json:"start_time"`
	FinishTime time.Time        `json:"finish_time"`
	Errors     []string         `json:"errors,omitempty"`
	Results    int              `json:"results"`
}

// Store writes run log entries to Badger.
type Store struct {
	db  *badger.DB
	ttl time.Duration
	log zerolog.Logger
}

// Open creates the store at path. An empty path keeps the log in
// memory, which the tests use. Entries expire after ttl; zero keeps
// them forever.
func Open(path string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening process log at %q: %w", path, err)
	}
	return &Store{
		db:  db,
		ttl: ttl,
		log: logging.With().Str("component", "processlog").Logger(),
	}, nil
}

// Close releases the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// key layout: run/<analysisID>/<startTime unix nano>/<runID>
func entryKey(e Entry) []byte {
	return []byte(fmt.Sprintf("run/%d/%020d/%s", e.AnalysisID, e.StartTime.UnixNano(), e.RunID))
}

// Put writes or replaces the entry.
func (s *Store) Put(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(entryKey(e), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Get returns the entry of one run of one analysis.
func (s *Store) Get(analysisID uint64, runID runcontext.RunID) (Entry, error) {
	var found Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("run/%d/", analysisID))
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			if e.RunID == runID {
				found = e
				return nil
			}
		}
		return badger.ErrKeyNotFound
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, fmt.Errorf("run %s of analysis %d not logged", runID, analysisID)
	}
	return found, err
}

// List returns the logged runs of one analysis, newest first, capped at
// limit (0 means all).
func (s *Store) List(analysisID uint64, limit int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(fmt.Sprintf("run/%d/", analysisID))
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Follow subscribes to the run lifecycle topics and persists every
// event until the context is canceled. It is meant to run as its own
// supervised goroutine.
func (s *Store) Follow(ctx context.Context, b *bus.Bus) error {
	started, err := b.Subscribe(ctx, bus.TopicRunStarted)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", bus.TopicRunStarted, err)
	}
	finished, err := b.Subscribe(ctx, bus.TopicRunFinished)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", bus.TopicRunFinished, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-started:
			if !ok {
				return nil
			}
			ev, err := bus.DecodeRunStarted(msg)
			if err != nil {
				s.log.Warn().Err(err).Msg("dropping malformed run.started event")
				msg.Ack()
				continue
			}
			if err := s.Put(Entry{
				RunID:      ev.RunID,
				AnalysisID: ev.AnalysisID,
				Status:     StatusStarted,
				StartTime:  ev.StartTime,
			}); err != nil {
				s.log.Error().Err(err).Str("run", string(ev.RunID)).Msg("failed to log run start")
				msg.Nack()
				continue
			}
			msg.Ack()
		case msg, ok := <-finished:
			if !ok {
				return nil
			}
			ev, err := bus.DecodeRunFinished(msg)
			if err != nil {
				s.log.Warn().Err(err).Msg("dropping malformed run.finished event")
				msg.Ack()
				continue
			}
			status := StatusDone
			if !ev.Success {
				status = StatusError
			}
			if err := s.Put(Entry{
				RunID:      ev.RunID,
				AnalysisID: ev.AnalysisID,
				Status:     status,
				StartTime:  ev.StartTime,
				FinishTime: ev.FinishTime,
				Errors:     ev.Errors,
				Results:    ev.Results,
			}); err != nil {
				s.log.Error().Err(err).Str("run", string(ev.RunID)).Msg("failed to log run finish")
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
