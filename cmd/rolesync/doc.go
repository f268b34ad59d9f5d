// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Rolesync grants and revokes Discord roles from approval spreadsheets.
// It provides the daemon (run), a single pass (once), and read-only
// views of what the bot can reach (connections), what the spreadsheets
// declare (inspect), and what the last tick did (status).
package main
