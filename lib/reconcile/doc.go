// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reconcile brings a group's tag assignments in line with the
// records of one worksheet.
//
// For every record the [Engine] looks the member up by exact name and
// discriminator, compares tag possession against the approval flag and
// grants or revokes only when they differ. A second run over unchanged
// inputs therefore makes no mutation calls. Problems an operator can
// fix in the sheet (unknown group, tag or member, unreadable approval)
// are written to the status column and are not errors; only failed
// remote calls, and approval errors under [AbortSheet], are returned.
package reconcile
