// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package annotate writes human-readable status messages into the
// status column of a worksheet.
//
// A [Writer] remembers what each status cell currently holds and only
// writes when the text changes, so clearing an already-empty cell or
// repeating an unchanged error costs no remote call. Current values
// come from [Writer.Seed] when the caller already fetched the grid,
// otherwise from a single cell read the first time a row is touched.
//
// With batching enabled writes are queued and sent by [Writer.Flush],
// in one call when the worksheet implements spreadsheet.BatchUpdater.
package annotate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Options configures a Writer.
type Options struct {
	// Column is the 1-based status column.
	Column int

	// Batch queues writes until Flush.
	Batch bool

	// DryRun records the writes that would be made without making them.
	DryRun bool

	// Logger receives debug records for each write. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Writer applies status messages to one worksheet. It is not safe for
// concurrent use; one Writer serves one worksheet for one tick.
type Writer struct {
	worksheet spreadsheet.Worksheet
	options   Options
	logger    *slog.Logger

	known   map[int]string
	pending []spreadsheet.CellUpdate
	applied []spreadsheet.CellUpdate
}

// New returns a Writer for worksheet.
func New(worksheet spreadsheet.Worksheet, options Options) *Writer {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		worksheet: worksheet,
		options:   options,
		logger:    logger,
		known:     make(map[int]string),
	}
}

// Seed records the current status text of every row in grid, where
// grid[0] is row 1.
func (w *Writer) Seed(grid [][]string) {
	for row := 1; row <= len(grid); row++ {
		w.known[row] = spreadsheet.ValueAt(grid, row, w.options.Column)
	}
}

// Set makes the status cell of row hold message. Nothing is written
// when the cell already holds it.
func (w *Writer) Set(ctx context.Context, row int, message string) error {
	current, err := w.current(ctx, row)
	if err != nil {
		return err
	}
	if current == message {
		return nil
	}

	update := spreadsheet.CellUpdate{Row: row, Column: w.options.Column, Value: message}
	w.known[row] = message
	w.applied = append(w.applied, update)
	w.logger.Debug("status cell changed",
		"worksheet", w.worksheet.Title(),
		"row", row,
		"previous", current,
		"message", message,
		"dry_run", w.options.DryRun,
	)

	switch {
	case w.options.DryRun:
		return nil
	case w.options.Batch:
		w.queue(update)
		return nil
	default:
		if err := w.worksheet.UpdateCell(ctx, row, w.options.Column, message); err != nil {
			return fmt.Errorf("writing status of row %d: %w", row, err)
		}
		return nil
	}
}

// Clear empties the status cell of row.
func (w *Writer) Clear(ctx context.Context, row int) error {
	return w.Set(ctx, row, "")
}

// Flush sends queued writes. It is a no-op when nothing is queued.
func (w *Writer) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	pending := w.pending
	w.pending = nil

	if batcher, ok := w.worksheet.(spreadsheet.BatchUpdater); ok {
		if err := batcher.UpdateCells(ctx, pending); err != nil {
			return fmt.Errorf("writing %d status cells: %w", len(pending), err)
		}
		return nil
	}
	for _, update := range pending {
		if err := w.worksheet.UpdateCell(ctx, update.Row, update.Column, update.Value); err != nil {
			return fmt.Errorf("writing status of row %d: %w", update.Row, err)
		}
	}
	return nil
}

// Applied returns every change made (or, in dry-run, planned) so far,
// in order.
func (w *Writer) Applied() []spreadsheet.CellUpdate {
	return append([]spreadsheet.CellUpdate(nil), w.applied...)
}

func (w *Writer) current(ctx context.Context, row int) (string, error) {
	if value, ok := w.known[row]; ok {
		return value, nil
	}
	value, err := w.worksheet.Cell(ctx, row, w.options.Column)
	if err != nil {
		return "", fmt.Errorf("reading status of row %d: %w", row, err)
	}
	w.known[row] = value
	return value, nil
}

// queue replaces any pending write to the same cell.
func (w *Writer) queue(update spreadsheet.CellUpdate) {
	for index := range w.pending {
		if w.pending[index].Row == update.Row {
			w.pending[index] = update
			return
		}
	}
	w.pending = append(w.pending, update)
}
