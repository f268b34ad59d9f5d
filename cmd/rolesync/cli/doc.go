// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the rolesync
// binary.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function
// that receives the process context. Commands are assembled into a tree
// by the commands package and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and help output with
// examples.
//
// Unknown subcommands and flags are matched against the known names by
// Levenshtein edit distance, and the closest one within distance 3 is
// suggested.
//
// [NewLogger] builds the process logger from the logging section of the
// configuration, and [ExitError] lets a command choose its exit code
// after printing its own report.
package cli
