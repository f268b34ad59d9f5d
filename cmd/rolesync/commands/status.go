// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/tickstate"
)

func statusCommand(env Env) *cli.Command {
	var (
		params     configParams
		jsonOutput bool
	)
	return &cli.Command{
		Name:    "status",
		Summary: "Show the last recorded tick",
		Description: `Read state.file and print the most recent tick. When that tick was
skipped, the last completed tick is printed as well.`,
		Usage: "rolesync status [--json] [--config path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			params.bind(flagSet)
			flagSet.BoolVar(&jsonOutput, "json", false, "output the state record as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			if cfg.State.File == "" {
				return fmt.Errorf("state.file is not configured; no ticks are recorded")
			}
			record, err := tickstate.Read(cfg.State.File)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(env.Stdout, "No tick recorded yet.")
				return nil
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return cli.WriteJSON(env.Stdout, record)
			}
			s := newStyles(env.Stdout)
			fmt.Fprintln(env.Stdout, s.faint.Render(fmt.Sprintf("%d ticks recorded, last written %s (%s ago)",
				record.Ticks, record.Written.UTC().Format(time.RFC3339), env.Now().Sub(record.Written).Round(time.Second))))
			fmt.Fprintln(env.Stdout)
			renderTick(env.Stdout, record.Last)
			if record.Last.Skipped && record.LastCompleted != nil {
				fmt.Fprintln(env.Stdout)
				fmt.Fprintln(env.Stdout, s.heading.Render("Last completed tick"))
				renderTick(env.Stdout, *record.LastCompleted)
			}
			return nil
		},
	}
}
