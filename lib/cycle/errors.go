// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/rolesync/lib/roster"
)

// ErrorKind classifies a spreadsheet failure.
type ErrorKind string

const (
	// KindData is a problem with sheet contents that annotations could
	// not absorb (an unreadable approval under the abort-sheet policy).
	KindData ErrorKind = "data"

	// KindInfrastructure is a failed remote call: network, auth, rate
	// limit, permissions. The next tick retries from scratch.
	KindInfrastructure ErrorKind = "infrastructure"

	// KindPanic is a recovered panic.
	KindPanic ErrorKind = "panic"
)

// SheetError is the failure of one spreadsheet within a tick.
type SheetError struct {
	Spreadsheet string
	Kind        ErrorKind
	Err         error

	// Stack is set for KindPanic.
	Stack string
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("spreadsheet %q: %s error: %v", e.Spreadsheet, e.Kind, e.Err)
}

func (e *SheetError) Unwrap() error { return e.Err }

// classify wraps err for the spreadsheet titled title.
func classify(title string, err error) *SheetError {
	kind := KindInfrastructure
	if errors.Is(err, roster.ErrInvalidApproval) {
		kind = KindData
	}
	return &SheetError{Spreadsheet: title, Kind: kind, Err: err}
}
