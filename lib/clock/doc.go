// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the tick
// runner.
//
// Production code holds a [Clock] and calls Now and After on it instead
// of the time package. [Real] is the standard library behavior. [Fake]
// stands still until the test calls [FakeClock.Advance], so a test can
// let exactly one scheduled tick fire:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go runner.Run(ctx)
//	fake.WaitForTimers(1)    // runner is now waiting for its next tick
//	fake.Advance(time.Hour)  // release it
package clock
