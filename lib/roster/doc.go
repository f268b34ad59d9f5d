// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package roster parses the data rows of a participating worksheet.
//
// The worksheet layout is fixed:
//
//   - rows 1-4 hold the marker cell and free-form instructions,
//   - row 5 holds column labels, and its status cell (L5) carries
//     sheet-level errors,
//   - data starts at row 6 and spans columns A-K,
//   - column L is the status column, written only by the bot.
//
// Rows are strictly contiguous. A row with fewer than ten non-empty
// cells, or whose identity field is not "name#discriminator", ends the
// table; nothing below it is read.
//
// Fields are located after dropping empty cells: the sixth non-empty
// cell is the member identity and the tenth is the approval flag.
package roster
