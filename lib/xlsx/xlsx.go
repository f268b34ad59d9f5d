// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package xlsx is a spreadsheet.Source over a directory of .xlsx
// workbooks. Each workbook is one spreadsheet; its sheets are
// worksheets. It serves offline runs and local simulations against
// exported copies of the real sheets.
//
// Every operation opens the workbook, acts, and closes it again, so
// edits made in another program between ticks are picked up. Writes
// save the workbook in place.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Extension is the file extension of workbooks listed by Source.
const Extension = ".xlsx"

// Source lists the workbooks in a directory.
type Source struct {
	directory string
	logger    *slog.Logger

	// One lock per workbook path serializes read-modify-save cycles.
	locks sync.Map
}

// New returns a Source over directory.
func New(directory string, logger *slog.Logger) (*Source, error) {
	absolute, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("resolving workbook directory: %w", err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("workbook directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workbook directory %s is not a directory", absolute)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{directory: absolute, logger: logger}, nil
}

// Spreadsheets implements spreadsheet.Source. Workbooks are listed in
// name order; lock files left by office programs are skipped.
func (s *Source) Spreadsheets(ctx context.Context) ([]spreadsheet.Spreadsheet, error) {
	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("listing workbooks: %w", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), Extension) || strings.HasPrefix(name, "~$") {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	result := make([]spreadsheet.Spreadsheet, 0, len(names))
	for _, name := range names {
		result = append(result, &workbook{source: s, path: filepath.Join(s.directory, name)})
	}
	return result, nil
}

func (s *Source) lock(path string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// withFile opens path, runs fn, and closes the file. When save is set
// and fn succeeds, the workbook is saved first.
func (s *Source) withFile(path string, save bool, fn func(*excelize.File) error) error {
	lock := s.lock(path)
	lock.Lock()
	defer lock.Unlock()

	file, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening workbook %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	if err := fn(file); err != nil {
		return err
	}
	if save {
		if err := file.Save(); err != nil {
			return fmt.Errorf("saving workbook %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

type workbook struct {
	source *Source
	path   string
}

func (w *workbook) ID() string { return filepath.Base(w.path) }

func (w *workbook) Title() string {
	return strings.TrimSuffix(filepath.Base(w.path), filepath.Ext(w.path))
}

func (w *workbook) URL() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(w.path)}).String()
}

func (w *workbook) Worksheets(ctx context.Context) ([]spreadsheet.Worksheet, error) {
	var names []string
	err := w.source.withFile(w.path, false, func(file *excelize.File) error {
		names = file.GetSheetList()
		return nil
	})
	if err != nil {
		return nil, err
	}
	worksheets := make([]spreadsheet.Worksheet, 0, len(names))
	for _, name := range names {
		worksheets = append(worksheets, &sheet{workbook: w, name: name})
	}
	return worksheets, nil
}

// sheet implements spreadsheet.Worksheet and spreadsheet.BatchUpdater.
type sheet struct {
	workbook *workbook
	name     string
}

func (s *sheet) Title() string { return s.name }

func (s *sheet) Cell(ctx context.Context, row, column int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return "", err
	}
	var value string
	err = s.workbook.source.withFile(s.workbook.path, false, func(file *excelize.File) error {
		var readErr error
		value, readErr = file.GetCellValue(s.name, cell)
		return readErr
	})
	if err != nil {
		return "", fmt.Errorf("reading %s!%s: %w", s.name, cell, err)
	}
	return value, nil
}

func (s *sheet) Rows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := s.workbook.source.withFile(s.workbook.path, false, func(file *excelize.File) error {
		var err error
		rows, err = file.GetRows(s.name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", s.name, err)
	}
	return rows, nil
}

func (s *sheet) UpdateCell(ctx context.Context, row, column int, value string) error {
	return s.UpdateCells(ctx, []spreadsheet.CellUpdate{{Row: row, Column: column, Value: value}})
}

func (s *sheet) UpdateCells(ctx context.Context, updates []spreadsheet.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := s.workbook.source.withFile(s.workbook.path, true, func(file *excelize.File) error {
		for _, update := range updates {
			cell, err := excelize.CoordinatesToCellName(update.Column, update.Row)
			if err != nil {
				return err
			}
			if err := file.SetCellStr(s.name, cell, update.Value); err != nil {
				return fmt.Errorf("writing %s!%s: %w", s.name, cell, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.workbook.source.logger.Debug("saved workbook cells",
		"workbook", s.workbook.Title(),
		"worksheet", s.name,
		"cells", len(updates),
	)
	return nil
}
