// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gsheets is a spreadsheet.Source over Google Sheets, using a
// service account. The spreadsheets visible to the account are exactly
// the ones shared with its email address; Drive is used to list them
// and the Sheets API to read and write cells.
package gsheets
