// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"iter"
	"strings"
)

// Record is one parsed data row.
type Record struct {
	// Index is the 0-based offset from FirstDataRow.
	Index int

	MemberName    string
	Discriminator string
	Approval      bool

	// ApprovalText is the approval cell as written.
	ApprovalText string
}

// Row returns the 1-based sheet row the record came from.
func (r Record) Row() int {
	return StatusRow(r.Index)
}

// Identity returns "name#discriminator".
func (r Record) Identity() string {
	return r.MemberName + "#" + r.Discriminator
}

// ParseRow parses the cells of one data row. ok is false when the row
// marks the end of the table. When the approval cell is malformed the
// identity fields are still filled in and err is an *ApprovalError.
//
// Cells right of the data table, including the status column, are
// ignored.
func ParseRow(index int, cells []string) (record Record, ok bool, err error) {
	if len(cells) > DataColumns {
		cells = cells[:DataColumns]
	}
	filled := make([]string, 0, len(cells))
	for _, cell := range cells {
		if cell != "" {
			filled = append(filled, cell)
		}
	}
	if len(filled) < MinFilledCells {
		return Record{}, false, nil
	}

	name, discriminator, ok := splitIdentity(filled[identityField])
	if !ok {
		return Record{}, false, nil
	}

	record = Record{
		Index:         index,
		MemberName:    name,
		Discriminator: discriminator,
		ApprovalText:  strings.TrimSpace(filled[approvalField]),
	}
	record.Approval, err = ParseApproval(filled[approvalField])
	return record, true, err
}

// splitIdentity splits "name#discriminator" into two non-empty parts.
func splitIdentity(field string) (name, discriminator string, ok bool) {
	parts := strings.Split(strings.TrimSpace(field), "#")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Records lazily parses grid, where grid[0] is sheet row 1, starting at
// FirstDataRow. The sequence stops at the first row that ends the table
// or when the grid runs out. Rows with a malformed approval cell are
// yielded with an *ApprovalError and the sequence continues.
func Records(grid [][]string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for row := FirstDataRow; row <= len(grid); row++ {
			record, ok, err := ParseRow(row-FirstDataRow, grid[row-1])
			if !ok {
				return
			}
			if !yield(record, err) {
				return
			}
		}
	}
}
