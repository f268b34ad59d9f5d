// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package spreadsheet describes the sheet side of reconciliation:
// spreadsheets shared with the bot, their worksheets, and cell access.
//
// Rows and columns are 1-based everywhere in this package, matching
// what an operator sees in the spreadsheet UI.
package spreadsheet

import "context"

// Source lists the spreadsheets the bot has been given access to.
type Source interface {
	Spreadsheets(ctx context.Context) ([]Spreadsheet, error)
}

// Spreadsheet is one document containing worksheets.
type Spreadsheet interface {
	ID() string
	Title() string
	URL() string

	// Worksheets lists the tabs in display order.
	Worksheets(ctx context.Context) ([]Worksheet, error)
}

// Worksheet is one tab of a spreadsheet.
type Worksheet interface {
	Title() string

	// Cell returns the displayed value of one cell, "" when empty.
	Cell(ctx context.Context, row, column int) (string, error)

	// Rows returns every row of the used range. Rows may be ragged:
	// trailing empty cells can be omitted.
	Rows(ctx context.Context) ([][]string, error)

	// UpdateCell sets one cell to value.
	UpdateCell(ctx context.Context, row, column int, value string) error
}

// CellUpdate is one pending write.
type CellUpdate struct {
	Row    int
	Column int
	Value  string
}

// BatchUpdater is implemented by worksheets that can apply several
// writes in one remote call.
type BatchUpdater interface {
	UpdateCells(ctx context.Context, updates []CellUpdate) error
}

// ValueAt returns rows[row-1][column-1], or "" when the grid does not
// reach that far.
func ValueAt(rows [][]string, row, column int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	cells := rows[row-1]
	if column < 1 || column > len(cells) {
		return ""
	}
	return cells[column-1]
}
