// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

// Worksheet layout. Rows and columns are 1-based.
const (
	// HeaderRow is the column-label row; its status cell carries
	// group and tag errors.
	HeaderRow = 5

	// FirstDataRow is the first row parsed as a record.
	FirstDataRow = HeaderRow + 1

	// DataColumns is the width of the data table (A-K).
	DataColumns = 11

	// StatusColumn is immediately right of the data table (L).
	StatusColumn = DataColumns + 1

	// MinFilledCells is the number of non-empty cells a row needs to
	// be a record.
	MinFilledCells = 10

	// identityField and approvalField index the non-empty cells.
	identityField = 5
	approvalField = 9
)

// StatusRow returns the sheet row of the record at index.
func StatusRow(index int) int {
	return FirstDataRow + index
}
