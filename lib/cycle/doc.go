// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cycle drives reconciliation ticks.
//
// [Orchestrator.RunTick] makes one pass over every accessible
// spreadsheet: find its descriptor, resolve the group, read the grid,
// reconcile, flush annotations. Each spreadsheet runs inside its own
// error boundary, so a malformed sheet, a failed remote call or even a
// panic is recorded in that sheet's [SheetResult] and the pass moves on
// to the next spreadsheet. RunTick itself never fails.
//
// [Runner] calls RunTick on a schedule. Ticks run strictly one after
// another; the next start time is computed after the previous tick
// finishes, so ticks never overlap.
package cycle
