// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger creates the process logger. format is "auto", "json" or
// "text"; "auto" (or empty) picks slog.TextHandler when w is a
// terminal and slog.JSONHandler otherwise, so piped output stays
// machine-parseable. level is "debug", "info", "warn" or "error";
// empty means info.
//
// Callers scope the logger with command-specific context via With():
//
//	logger = logger.With("command", "once")
func NewLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var minimum slog.Level
	if level != "" {
		if err := minimum.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("logging level %q: %w", level, err)
		}
	}
	options := &slog.HandlerOptions{Level: minimum}

	var handler slog.Handler
	switch format {
	case "", "auto":
		if isTerminal(w) {
			handler = slog.NewTextHandler(w, options)
		} else {
			handler = slog.NewJSONHandler(w, options)
		}
	case "text":
		handler = slog.NewTextHandler(w, options)
	case "json":
		handler = slog.NewJSONHandler(w, options)
	default:
		return nil, fmt.Errorf("logging format %q: must be auto, json or text", format)
	}
	return slog.New(handler), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
