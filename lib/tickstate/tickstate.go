// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tickstate records the most recent tick on disk, so that
// `rolesync status` and the status API can report on a daemon without
// talking to it.
//
// The file is written atomically (write to temporary file, fsync,
// rename) so readers never see a partial record. It is CBOR-encoded
// through lib/codec.
package tickstate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bureau-foundation/rolesync/lib/codec"
	"github.com/bureau-foundation/rolesync/lib/cycle"
)

// formatVersion changes when Record changes incompatibly.
const formatVersion = 1

// Record is the on-disk state.
type Record struct {
	Version int `json:"version"`

	// Written is when the record was saved.
	Written time.Time `json:"written"`

	// Last is the most recent tick, skipped or not.
	Last cycle.TickReport `json:"last"`

	// LastCompleted is the most recent tick that was not skipped.
	// Nil until one completes.
	LastCompleted *cycle.TickReport `json:"last_completed,omitempty"`

	// Ticks counts ticks recorded over the file's lifetime.
	Ticks int `json:"ticks"`
}

// Write atomically replaces the file at path with record. The parent
// directory must already exist.
func Write(path string, record Record) error {
	record.Version = formatVersion
	data, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding tick state: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary tick state file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary tick state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary tick state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary tick state file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming tick state file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Read reads the file at path. When the file does not exist the error
// wraps os.ErrNotExist.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := codec.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("parsing tick state file %s: %w", path, err)
	}
	if record.Version != formatVersion {
		return Record{}, fmt.Errorf("tick state file %s has version %d, want %d", path, record.Version, formatVersion)
	}
	return record, nil
}

// Recorder folds tick reports into the file at a path. It is safe for
// concurrent use and keeps the last record in memory for readers in
// the same process.
type Recorder struct {
	path string
	now  func() time.Time

	mu      sync.Mutex
	current Record
	loaded  bool
}

// NewRecorder returns a Recorder for path. An existing file seeds the
// tick count and last completed tick; a missing file is not an error.
// An empty path keeps state in memory only.
func NewRecorder(path string, now func() time.Time) (*Recorder, error) {
	if now == nil {
		now = time.Now
	}
	recorder := &Recorder{path: path, now: now}
	if path == "" {
		return recorder, nil
	}
	record, err := Read(path)
	switch {
	case err == nil:
		recorder.current = record
		recorder.loaded = true
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}
	return recorder, nil
}

// Record stores report.
func (r *Recorder) Record(report cycle.TickReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current.Last = report
	if !report.Skipped {
		completed := report
		r.current.LastCompleted = &completed
	}
	r.current.Ticks++
	r.current.Written = r.now()
	r.current.Version = formatVersion
	r.loaded = true

	if r.path == "" {
		return nil
	}
	return Write(r.path, r.current)
}

// Current returns the last stored record. ok is false before the first
// tick when no file existed.
func (r *Recorder) Current() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.loaded
}
