// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schedule decides when the next reconciliation tick starts.
//
// A [Schedule] is either a fixed interval ([Every]) measured from the
// end of the previous tick, or a standard 5-field cron expression
// ([ParseCron]) evaluated in UTC:
//
//	minute hour day-of-month month day-of-week
//
// Cron fields accept single values, ranges (1-5), lists (1,3,5), steps
// (*/15, 1-30/5) and the wildcard. There are no @hourly shortcuts, no
// seconds field and no month or weekday names.
package schedule
