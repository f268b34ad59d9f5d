// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package inmemory implements the community and spreadsheet boundaries
// entirely in memory. Every mutation is applied to the in-memory state
// and recorded, so tests can assert both the resulting state and the
// exact calls that produced it.
//
// All types are safe for concurrent use.
package inmemory
