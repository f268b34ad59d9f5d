// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"errors"
	"fmt"
	"strings"
)

// approvalWords is the complete approval vocabulary. Matching is
// case-insensitive after trimming whitespace.
var approvalWords = map[string]bool{
	"true":  true,
	"t":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"1":     true,
	"false": false,
	"f":     false,
	"no":    false,
	"n":     false,
	"off":   false,
	"0":     false,
}

// ErrInvalidApproval matches every *ApprovalError.
var ErrInvalidApproval = errors.New("approval value not recognized")

// ApprovalError reports an approval cell outside the vocabulary.
type ApprovalError struct {
	Text string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("approval value not recognized: %q", e.Text)
}

// Is makes errors.Is(err, ErrInvalidApproval) true.
func (e *ApprovalError) Is(target error) bool {
	return target == ErrInvalidApproval
}

// ParseApproval maps text onto the approval vocabulary.
func ParseApproval(text string) (bool, error) {
	value, ok := approvalWords[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return false, &ApprovalError{Text: text}
	}
	return value, nil
}
