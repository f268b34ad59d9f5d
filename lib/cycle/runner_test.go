// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/rolesync/lib/clock"
	"github.com/bureau-foundation/rolesync/lib/schedule"
	"github.com/bureau-foundation/rolesync/lib/testutil"
)

type countingTicker struct {
	calls atomic.Int32
	clock clock.Clock
}

func (c *countingTicker) RunTick(ctx context.Context) TickReport {
	c.calls.Add(1)
	return TickReport{Started: c.clock.Now(), Finished: c.clock.Now()}
}

func TestRunnerTicksOnSchedule(t *testing.T) {
	fake := clock.Fake(epoch)
	every, err := schedule.Every(time.Hour)
	if err != nil {
		t.Fatalf("Every: %v", err)
	}
	ticker := &countingTicker{clock: fake}
	reports := make(chan TickReport, 4)
	runner := &Runner{
		Ticker:   ticker,
		Schedule: every,
		Clock:    fake,
		Logger:   testutil.Logger(),
		OnTick:   func(report TickReport) { reports <- report },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	fake.WaitForTimers(1)
	if ticker.calls.Load() != 0 {
		t.Fatal("ticked before the first scheduled time")
	}

	fake.Advance(time.Hour)
	first := testutil.RequireReceive(t, reports, 5*time.Second, "first tick")
	if !first.Started.Equal(epoch.Add(time.Hour)) {
		t.Errorf("first tick started at %v", first.Started)
	}

	fake.WaitForTimers(1)
	fake.Advance(time.Hour)
	testutil.RequireReceive(t, reports, 5*time.Second, "second tick")

	fake.WaitForTimers(1)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "Run return"); err != nil {
		t.Errorf("Run returned %v, want nil", err)
	}
	if got := ticker.calls.Load(); got != 2 {
		t.Errorf("ticked %d times, want 2", got)
	}
}

func TestRunnerRunOnStart(t *testing.T) {
	fake := clock.Fake(epoch)
	every, _ := schedule.Every(time.Minute)
	ticker := &countingTicker{clock: fake}
	reports := make(chan TickReport, 1)
	runner := &Runner{
		Ticker:     ticker,
		Schedule:   every,
		RunOnStart: true,
		Clock:      fake,
		Logger:     testutil.Logger(),
		OnTick:     func(report TickReport) { reports <- report },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	report := testutil.RequireReceive(t, reports, 5*time.Second, "startup tick")
	if !report.Started.Equal(epoch) {
		t.Errorf("startup tick started at %v, want %v", report.Started, epoch)
	}
	cancel()
	testutil.RequireReceive(t, done, 5*time.Second, "Run return")
}

func TestRunnerRequiresScheduleAndTicker(t *testing.T) {
	if err := (&Runner{}).Run(context.Background()); err == nil {
		t.Error("Run without Ticker or Schedule succeeded")
	}
}
