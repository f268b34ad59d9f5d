// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests that wait on goroutines driven by a fake clock never
// hang. These are the only real wall-clock timeouts in the test suite.
//
// [Logger] returns a logger that discards output, for components that
// keep logging from background goroutines after a test finishes.
//
// All helpers call t.Fatalf on failure.
package testutil
