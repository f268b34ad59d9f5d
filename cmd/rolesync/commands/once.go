// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/tickstate"
)

func onceCommand(env Env) *cli.Command {
	var (
		params     configParams
		dryRun     bool
		jsonOutput bool
	)
	return &cli.Command{
		Name:    "once",
		Summary: "Run one reconciliation tick and exit",
		Description: `Run a single tick over every accessible spreadsheet and print its
report. The tick is recorded to state.file like a daemon tick.

Exits 1 when the tick failed or any spreadsheet ended with an error.`,
		Usage: "rolesync once [--dry-run] [--json] [--config path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("once", pflag.ContinueOnError)
			params.bind(flagSet)
			flagSet.BoolVar(&dryRun, "dry-run", false, "compute outcomes without changing roles or status cells")
			flagSet.BoolVar(&jsonOutput, "json", false, "output the tick report as JSON")
			return flagSet
		},
		Examples: []cli.Example{
			{Description: "Show what the next tick would change", Command: "rolesync once --dry-run"},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(env, cfg, "once")
			if err != nil {
				return err
			}
			if err := cfg.EnsurePaths(); err != nil {
				return err
			}
			recorder, err := tickstate.NewRecorder(cfg.State.File, env.Now)
			if err != nil {
				return err
			}
			directory, err := env.OpenDirectory(ctx, cfg, logger)
			if err != nil {
				return err
			}
			source, _, err := openSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			orchestrator, err := newOrchestrator(cfg, directory, source, dryRun || cfg.Reconcile.DryRun, nil, logger)
			if err != nil {
				return err
			}

			report := orchestrator.RunTick(ctx)
			if err := recorder.Record(report); err != nil {
				logger.Error("recording tick failed", "tick_id", report.ID, "error", err)
			}

			if jsonOutput {
				if err := cli.WriteJSON(env.Stdout, report); err != nil {
					return err
				}
			} else {
				renderTick(env.Stdout, report)
			}
			if report.Error != "" || report.Failures() > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
