// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/commands"
	"github.com/bureau-foundation/rolesync/lib/process"
)

func main() {
	process.Exit(run())
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root(commands.Env{Stdout: os.Stdout, Stderr: os.Stderr}).Execute(ctx, os.Args[1:])
}
