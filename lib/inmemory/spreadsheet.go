// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Source is an in-memory spreadsheet.Source.
type Source struct {
	mu           sync.Mutex
	spreadsheets []*Spreadsheet

	// Err, when set, is returned by Spreadsheets.
	Err error
}

// NewSource returns a Source listing spreadsheets in order.
func NewSource(spreadsheets ...*Spreadsheet) *Source {
	return &Source{spreadsheets: spreadsheets}
}

// Spreadsheets implements spreadsheet.Source.
func (s *Source) Spreadsheets(ctx context.Context) ([]spreadsheet.Spreadsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	result := make([]spreadsheet.Spreadsheet, len(s.spreadsheets))
	for index, document := range s.spreadsheets {
		result[index] = document
	}
	return result, nil
}

// Spreadsheet is an in-memory spreadsheet.Spreadsheet.
type Spreadsheet struct {
	id         string
	title      string
	worksheets []spreadsheet.Worksheet
}

// NewSpreadsheet returns a spreadsheet holding worksheets in order.
// Worksheets are usually *Worksheet values.
func NewSpreadsheet(id, title string, worksheets ...spreadsheet.Worksheet) *Spreadsheet {
	return &Spreadsheet{id: id, title: title, worksheets: worksheets}
}

// ID implements spreadsheet.Spreadsheet.
func (s *Spreadsheet) ID() string { return s.id }

// Title implements spreadsheet.Spreadsheet.
func (s *Spreadsheet) Title() string { return s.title }

// URL implements spreadsheet.Spreadsheet.
func (s *Spreadsheet) URL() string { return "memory://" + s.id }

// Worksheets implements spreadsheet.Spreadsheet.
func (s *Spreadsheet) Worksheets(ctx context.Context) ([]spreadsheet.Worksheet, error) {
	return slices.Clone(s.worksheets), nil
}

// Worksheet is an in-memory spreadsheet.Worksheet that also implements
// spreadsheet.BatchUpdater.
type Worksheet struct {
	mu         sync.Mutex
	title      string
	grid       [][]string
	writes     []spreadsheet.CellUpdate
	batchCalls int

	// RowsErr, when set, is returned by Rows.
	RowsErr error
}

// NewWorksheet returns a worksheet holding a copy of grid, where
// grid[0] is row 1.
func NewWorksheet(title string, grid [][]string) *Worksheet {
	copied := make([][]string, len(grid))
	for index, row := range grid {
		copied[index] = slices.Clone(row)
	}
	return &Worksheet{title: title, grid: copied}
}

// Writes returns every cell write applied so far, batched or not.
func (w *Worksheet) Writes() []spreadsheet.CellUpdate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.writes)
}

// BatchCalls returns how many UpdateCells calls were made.
func (w *Worksheet) BatchCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batchCalls
}

// Value returns the current value of a cell.
func (w *Worksheet) Value(row, column int) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return spreadsheet.ValueAt(w.grid, row, column)
}

// Title implements spreadsheet.Worksheet.
func (w *Worksheet) Title() string { return w.title }

// Cell implements spreadsheet.Worksheet.
func (w *Worksheet) Cell(ctx context.Context, row, column int) (string, error) {
	return w.Value(row, column), nil
}

// Rows implements spreadsheet.Worksheet.
func (w *Worksheet) Rows(ctx context.Context) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.RowsErr != nil {
		return nil, w.RowsErr
	}
	copied := make([][]string, len(w.grid))
	for index, row := range w.grid {
		copied[index] = slices.Clone(row)
	}
	return copied, nil
}

// UpdateCell implements spreadsheet.Worksheet.
func (w *Worksheet) UpdateCell(ctx context.Context, row, column int, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setLocked(spreadsheet.CellUpdate{Row: row, Column: column, Value: value})
}

// UpdateCells implements spreadsheet.BatchUpdater.
func (w *Worksheet) UpdateCells(ctx context.Context, updates []spreadsheet.CellUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batchCalls++
	for _, update := range updates {
		if err := w.setLocked(update); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worksheet) setLocked(update spreadsheet.CellUpdate) error {
	if update.Row < 1 || update.Column < 1 {
		return fmt.Errorf("inmemory: invalid cell R%dC%d", update.Row, update.Column)
	}
	for len(w.grid) < update.Row {
		w.grid = append(w.grid, nil)
	}
	cells := w.grid[update.Row-1]
	for len(cells) < update.Column {
		cells = append(cells, "")
	}
	cells[update.Column-1] = update.Value
	w.grid[update.Row-1] = cells
	w.writes = append(w.writes, update)
	return nil
}
