// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the bot token outside the Go heap.
//
// [Buffer] memory comes from an anonymous mmap, is locked against swap
// and excluded from core dumps. Close zeroes and unmaps it.
//
// The token reaches a Buffer from a file ([ReadFromPath]) or an
// environment variable ([FromEnv]). FromEnv unsets the variable after
// reading it, so child processes do not inherit the token.
package secret
