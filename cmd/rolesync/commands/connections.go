// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/cycle"
)

func connectionsCommand(env Env) *cli.Command {
	var (
		params     configParams
		jsonOutput bool
	)
	return &cli.Command{
		Name:    "connections",
		Summary: "List reachable Discord servers, roles and spreadsheets",
		Description: `List every Discord server the bot belongs to with its roles, and
every spreadsheet the configured backend can open. Nothing is changed.`,
		Usage: "rolesync connections [--json] [--config path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("connections", pflag.ContinueOnError)
			params.bind(flagSet)
			flagSet.BoolVar(&jsonOutput, "json", false, "output as JSON")
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
			logger, err := newLogger(env, cfg, "connections")
			if err != nil {
				return err
			}
			directory, err := env.OpenDirectory(ctx, cfg, logger)
			if err != nil {
				return err
			}
			source, serviceAccount, err := openSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			survey, err := cycle.TakeSurvey(ctx, directory, source)
			if err != nil {
				return err
			}
			if jsonOutput {
				return cli.WriteJSON(env.Stdout, survey)
			}
			renderSurvey(env.Stdout, survey, serviceAccount)
			return nil
		},
	}
}
