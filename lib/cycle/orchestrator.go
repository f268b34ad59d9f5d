// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/rolesync/lib/annotate"
	"github.com/bureau-foundation/rolesync/lib/clock"
	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/descriptor"
	"github.com/bureau-foundation/rolesync/lib/reconcile"
	"github.com/bureau-foundation/rolesync/lib/roster"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Config holds the collaborators of an Orchestrator.
type Config struct {
	Directory community.Directory
	Source    spreadsheet.Source
	Engine    *reconcile.Engine

	// Patterns recognise marker cells. Zero means
	// descriptor.DefaultPatterns.
	Patterns descriptor.Patterns

	// BatchAnnotations sends each worksheet's status writes in one
	// call at the end of the sheet.
	BatchAnnotations bool

	// DryRun plans annotations without writing them. The engine's own
	// DryRun option controls mutations.
	DryRun bool

	// Ready, when set, is consulted before each tick; the tick is
	// skipped while it returns false.
	Ready func() bool

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// SheetResult is the outcome of one spreadsheet in a tick.
type SheetResult struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Title         string `json:"title"`

	// Participating is false when no worksheet carries a marker.
	Participating bool   `json:"participating"`
	Worksheet     string `json:"worksheet,omitempty"`

	// Digest is a BLAKE3 digest of the worksheet grid as read this
	// tick, for spotting unchanged sheets across ticks.
	Digest string `json:"digest,omitempty"`

	Report *reconcile.Report `json:"report,omitempty"`

	// Writes counts status cells changed (or planned, in dry-run).
	Writes int `json:"writes"`

	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Failed reports whether the spreadsheet ended with an error.
func (r SheetResult) Failed() bool { return r.Error != "" }

// TickReport summarizes one pass.
type TickReport struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	DryRun   bool      `json:"dry_run"`

	// Skipped is set when the tick did not run because the chat
	// session was not ready.
	Skipped bool `json:"skipped,omitempty"`

	// Error is set when the spreadsheets or groups could not be
	// listed; Sheets is empty in that case.
	Error string `json:"error,omitempty"`

	Sheets []SheetResult `json:"sheets"`
}

// Failures counts spreadsheets that ended with an error.
func (r TickReport) Failures() int {
	count := 0
	for _, sheet := range r.Sheets {
		if sheet.Failed() {
			count++
		}
	}
	return count
}

// Orchestrator runs ticks.
type Orchestrator struct {
	config Config
	clock  clock.Clock
	logger *slog.Logger
}

// New validates config and returns an Orchestrator.
func New(config Config) (*Orchestrator, error) {
	if config.Directory == nil {
		return nil, fmt.Errorf("cycle: Directory is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("cycle: Source is required")
	}
	if config.Engine == nil {
		config.Engine = reconcile.New(reconcile.Options{DryRun: config.DryRun, Logger: config.Logger})
	}
	if config.Patterns.Group == nil || config.Patterns.Tag == nil {
		config.Patterns = descriptor.DefaultPatterns
	}
	orchestrator := &Orchestrator{config: config, clock: config.Clock, logger: config.Logger}
	if orchestrator.clock == nil {
		orchestrator.clock = clock.Real()
	}
	if orchestrator.logger == nil {
		orchestrator.logger = slog.Default()
	}
	return orchestrator, nil
}

// RunTick makes one pass over every accessible spreadsheet.
func (o *Orchestrator) RunTick(ctx context.Context) TickReport {
	report := TickReport{
		ID:      uuid.NewString(),
		Started: o.clock.Now(),
		DryRun:  o.config.DryRun,
	}
	logger := o.logger.With("tick_id", report.ID)

	if o.config.Ready != nil && !o.config.Ready() {
		report.Skipped = true
		report.Finished = o.clock.Now()
		logger.Warn("chat session not ready, skipping tick")
		return report
	}

	spreadsheets, err := o.config.Source.Spreadsheets(ctx)
	if err != nil {
		report.Error = fmt.Sprintf("listing spreadsheets: %v", err)
		report.Finished = o.clock.Now()
		logger.Error("tick failed", "error", err, "error_kind", KindInfrastructure)
		return report
	}
	groups, err := o.config.Directory.Groups(ctx)
	if err != nil {
		report.Error = fmt.Sprintf("listing groups: %v", err)
		report.Finished = o.clock.Now()
		logger.Error("tick failed", "error", err, "error_kind", KindInfrastructure)
		return report
	}

	for _, document := range spreadsheets {
		if ctx.Err() != nil {
			break
		}
		result := o.runSpreadsheet(ctx, document, groups, logger)
		report.Sheets = append(report.Sheets, result)
	}

	report.Finished = o.clock.Now()
	logger.Info("tick finished",
		"spreadsheets", len(report.Sheets),
		"failures", report.Failures(),
		"duration", report.Finished.Sub(report.Started),
	)
	return report
}

// runSpreadsheet is the per-spreadsheet error boundary.
func (o *Orchestrator) runSpreadsheet(ctx context.Context, document spreadsheet.Spreadsheet, groups []community.Group, tickLogger *slog.Logger) (result SheetResult) {
	result = SheetResult{SpreadsheetID: document.ID(), Title: document.Title()}
	logger := tickLogger.With("spreadsheet", document.Title())

	defer func() {
		if recovered := recover(); recovered != nil {
			sheetErr := &SheetError{
				Spreadsheet: document.Title(),
				Kind:        KindPanic,
				Err:         fmt.Errorf("panic: %v", recovered),
				Stack:       string(debug.Stack()),
			}
			result.ErrorKind = sheetErr.Kind
			result.Error = sheetErr.Error()
			logger.Error("spreadsheet failed", "error", sheetErr, "error_kind", sheetErr.Kind, "stack", sheetErr.Stack)
		}
	}()

	if err := o.reconcileSpreadsheet(ctx, document, groups, &result, logger); err != nil {
		sheetErr := classify(document.Title(), err)
		result.ErrorKind = sheetErr.Kind
		result.Error = sheetErr.Error()
		logger.Error("spreadsheet failed", "error", sheetErr, "error_kind", sheetErr.Kind)
	}
	return result
}

func (o *Orchestrator) reconcileSpreadsheet(ctx context.Context, document spreadsheet.Spreadsheet, groups []community.Group, result *SheetResult, logger *slog.Logger) error {
	found, ok, err := o.config.Patterns.Find(ctx, document)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("spreadsheet has no marker cell, skipping")
		return nil
	}
	result.Participating = true
	result.Worksheet = found.Worksheet.Title()
	logger = logger.With("worksheet", found.Worksheet.Title(), "group", found.GroupName, "tag", found.TagName)

	writer := annotate.New(found.Worksheet, annotate.Options{
		Column: roster.StatusColumn,
		Batch:  o.config.BatchAnnotations,
		DryRun: o.config.DryRun,
		Logger: logger,
	})
	defer func() { result.Writes = len(writer.Applied()) }()

	group, ok := community.FindGroup(groups, found.GroupName)
	if !ok {
		logger.Info("group not visible to the bot")
		report, err := o.config.Engine.MissingGroup(ctx, found.GroupName, found.TagName, writer)
		result.Report = &report
		return errors.Join(err, writer.Flush(ctx))
	}

	grid, err := found.Worksheet.Rows(ctx)
	if err != nil {
		return fmt.Errorf("reading rows of %q: %w", found.Worksheet.Title(), err)
	}
	writer.Seed(grid)
	result.Digest = Digest(grid)

	report, runErr := o.config.Engine.Run(ctx, group, found.TagName, roster.Records(grid), writer)
	result.Report = &report
	// Flush even after a failure so annotations decided before it land.
	return errors.Join(runErr, writer.Flush(ctx))
}

// Digest returns a short BLAKE3 digest of a cell grid.
func Digest(grid [][]string) string {
	hasher := blake3.New()
	for _, row := range grid {
		for _, cell := range row {
			hasher.Write([]byte(cell))
			hasher.Write([]byte{0x1f})
		}
		hasher.Write([]byte{0x1e})
	}
	return hex.EncodeToString(hasher.Sum(nil)[:16])
}
