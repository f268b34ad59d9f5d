// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the rolesync command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/config"
	"github.com/bureau-foundation/rolesync/lib/version"
)

// Env is what the commands read from and write to.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// OpenDirectory returns the group directory for one-shot commands.
	// Nil means a REST-only Discord client using the configured token.
	OpenDirectory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (community.Directory, error)

	// Now defaults to time.Now.
	Now func() time.Time
}

func (e Env) withDefaults() Env {
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.OpenDirectory == nil {
		e.OpenDirectory = openDiscordDirectory
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return e
}

// Root builds and returns the complete rolesync command tree.
func Root(env Env) *cli.Command {
	env = env.withDefaults()
	return &cli.Command{
		Name: "rolesync",
		Description: `rolesync: grant and revoke Discord roles from spreadsheet approvals.

Each participating spreadsheet names a Discord server and role in its
first cell. Every tick, each approved row's member is given the role,
every other listed member loses it, and problems are written back to
the row's status cell.`,
		HelpOutput: env.Stderr,
		Subcommands: []*cli.Command{
			runCommand(env),
			onceCommand(env),
			connectionsCommand(env),
			inspectCommand(env),
			statusCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Fprintf(env.Stdout, "rolesync %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run the daemon",
				Command:     "rolesync run --config /etc/rolesync/rolesync.yaml",
			},
			{
				Description: "Preview one tick without changing roles or cells",
				Command:     "rolesync once --dry-run",
			},
			{
				Description: "Show the last recorded tick",
				Command:     "rolesync status",
			},
		},
	}
}
