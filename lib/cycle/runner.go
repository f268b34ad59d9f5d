// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/rolesync/lib/clock"
	"github.com/bureau-foundation/rolesync/lib/schedule"
)

// Ticker runs one tick. *Orchestrator implements it.
type Ticker interface {
	RunTick(ctx context.Context) TickReport
}

// Runner calls a Ticker on a schedule.
type Runner struct {
	Ticker   Ticker
	Schedule schedule.Schedule

	// RunOnStart runs a tick immediately instead of waiting for the
	// first scheduled time.
	RunOnStart bool

	// OnTick, when set, receives every report after its tick.
	OnTick func(TickReport)

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Run ticks until ctx is cancelled, then returns nil. A tick in
// progress when ctx is cancelled finishes its current spreadsheet and
// stops.
func (r *Runner) Run(ctx context.Context) error {
	if r.Ticker == nil || r.Schedule == nil {
		return fmt.Errorf("cycle: runner needs a Ticker and a Schedule")
	}
	runClock := r.Clock
	if runClock == nil {
		runClock = clock.Real()
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if r.RunOnStart {
		r.tick(ctx)
	}
	for {
		now := runClock.Now()
		next, err := r.Schedule.Next(now)
		if err != nil {
			return fmt.Errorf("computing next tick after %s: %w", now.Format(time.RFC3339), err)
		}
		logger.Debug("next tick scheduled", "at", next, "schedule", r.Schedule.String())

		select {
		case <-ctx.Done():
			return nil
		case <-runClock.After(next.Sub(now)):
		}
		if ctx.Err() != nil {
			return nil
		}
		r.tick(ctx)
	}
}

func (r *Runner) tick(ctx context.Context) {
	report := r.Ticker.RunTick(ctx)
	if r.OnTick != nil {
		r.OnTick(report)
	}
}
