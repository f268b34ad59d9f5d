// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gsheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"

	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Source lists the spreadsheets shared with a service account.
type Source struct {
	backend        backend
	serviceAccount string
	logger         *slog.Logger
}

// New connects to Google with credentials. Extra client options are
// passed to both API clients.
func New(ctx context.Context, credentials *Credentials, logger *slog.Logger, extra ...option.ClientOption) (*Source, error) {
	googleBackend, err := newGoogleBackend(ctx, credentials, extra...)
	if err != nil {
		return nil, err
	}
	return newSource(googleBackend, credentials.ClientEmail, logger), nil
}

func newSource(backend backend, serviceAccount string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{backend: backend, serviceAccount: serviceAccount, logger: logger}
}

// ServiceAccount returns the address spreadsheets must be shared with.
func (s *Source) ServiceAccount() string {
	return s.serviceAccount
}

// Spreadsheets implements spreadsheet.Source.
func (s *Source) Spreadsheets(ctx context.Context) ([]spreadsheet.Spreadsheet, error) {
	files, err := s.backend.listSpreadsheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing spreadsheets shared with %s: %w", s.serviceAccount, err)
	}
	result := make([]spreadsheet.Spreadsheet, 0, len(files))
	for _, file := range files {
		result = append(result, &document{source: s, info: file})
	}
	return result, nil
}

type document struct {
	source *Source
	info   fileInfo
}

func (d *document) ID() string    { return d.info.ID }
func (d *document) Title() string { return d.info.Title }

func (d *document) URL() string {
	if d.info.URL != "" {
		return d.info.URL
	}
	return "https://docs.google.com/spreadsheets/d/" + d.info.ID
}

func (d *document) Worksheets(ctx context.Context) ([]spreadsheet.Worksheet, error) {
	titles, err := d.source.backend.worksheetTitles(ctx, d.info.ID)
	if err != nil {
		return nil, fmt.Errorf("listing worksheets of %q: %w", d.info.Title, err)
	}
	worksheets := make([]spreadsheet.Worksheet, 0, len(titles))
	for _, title := range titles {
		worksheets = append(worksheets, &worksheet{document: d, title: title})
	}
	return worksheets, nil
}

// worksheet implements spreadsheet.Worksheet and
// spreadsheet.BatchUpdater.
type worksheet struct {
	document *document
	title    string
}

func (w *worksheet) Title() string { return w.title }

func (w *worksheet) Cell(ctx context.Context, row, column int) (string, error) {
	a1, err := w.cellRange(row, column)
	if err != nil {
		return "", err
	}
	grid, err := w.document.source.backend.values(ctx, w.document.info.ID, a1)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", a1, err)
	}
	return spreadsheet.ValueAt(grid, 1, 1), nil
}

func (w *worksheet) Rows(ctx context.Context) ([][]string, error) {
	grid, err := w.document.source.backend.values(ctx, w.document.info.ID, quoteTitle(w.title))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", quoteTitle(w.title), err)
	}
	return grid, nil
}

func (w *worksheet) UpdateCell(ctx context.Context, row, column int, value string) error {
	return w.UpdateCells(ctx, []spreadsheet.CellUpdate{{Row: row, Column: column, Value: value}})
}

func (w *worksheet) UpdateCells(ctx context.Context, updates []spreadsheet.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ranges := make([]rangeValue, 0, len(updates))
	for _, update := range updates {
		a1, err := w.cellRange(update.Row, update.Column)
		if err != nil {
			return err
		}
		ranges = append(ranges, rangeValue{Range: a1, Value: update.Value})
	}
	if err := w.document.source.backend.updateValues(ctx, w.document.info.ID, ranges); err != nil {
		return fmt.Errorf("writing %d cells of %s: %w", len(ranges), quoteTitle(w.title), err)
	}
	w.document.source.logger.Debug("wrote cells",
		"spreadsheet", w.document.info.Title,
		"worksheet", w.title,
		"cells", len(ranges),
	)
	return nil
}

// cellRange returns the A1 range of a single cell, qualified with the
// worksheet title.
func (w *worksheet) cellRange(row, column int) (string, error) {
	name, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return "", fmt.Errorf("cell R%dC%d: %w", row, column, err)
	}
	return quoteTitle(w.title) + "!" + name, nil
}

// quoteTitle quotes a worksheet title for use in an A1 range.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
