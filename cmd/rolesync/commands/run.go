// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/cycle"
	"github.com/bureau-foundation/rolesync/lib/discord"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
	"github.com/bureau-foundation/rolesync/lib/statusapi"
	"github.com/bureau-foundation/rolesync/lib/tickstate"
	"github.com/bureau-foundation/rolesync/lib/version"
)

func runCommand(env Env) *cli.Command {
	var params configParams
	return &cli.Command{
		Name:    "run",
		Summary: "Connect to Discord and reconcile on a schedule",
		Description: `Connect to the Discord gateway and reconcile every participating
spreadsheet on the configured schedule until interrupted.

Chat commands are answered while connected. Ticks are skipped while the
gateway connection is down. Each tick is recorded to state.file, and
served on status.listen when set.`,
		Usage: "rolesync run [--config path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			params.bind(flagSet)
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
			logger, err := newLogger(env, cfg, "run")
			if err != nil {
				return err
			}
			if err := cfg.EnsurePaths(); err != nil {
				return err
			}
			tickSchedule, err := cfg.Schedule.Build()
			if err != nil {
				return err
			}
			recorder, err := tickstate.NewRecorder(cfg.State.File, env.Now)
			if err != nil {
				return err
			}
			source, serviceAccount, err := openSource(ctx, cfg, logger)
			if err != nil {
				return err
			}

			var commands *discord.Commands
			if cfg.Discord.CommandsEnabled {
				commands = &discord.Commands{
					Prefix:         cfg.Discord.CommandPrefix,
					ServiceAccount: serviceAccount,
					Source:         source,
				}
			}

			firstReady, onReady := surveyOnReady(ctx, source, serviceAccount, logger)
			token, err := readToken(cfg.Discord)
			if err != nil {
				return err
			}
			session, err := discord.Open(discord.SessionConfig{
				Token:    token.String(),
				Commands: commands,
				OnReady:  func(directory *discord.Directory) { onReady(directory) },
				Logger:   logger,
			})
			token.Close()
			if err != nil {
				return err
			}

			orchestrator, err := newOrchestrator(cfg, session.Directory(), source, cfg.Reconcile.DryRun, session.Ready, logger)
			if err != nil {
				session.Close()
				return err
			}
			runner := &cycle.Runner{
				Ticker:     orchestrator,
				Schedule:   tickSchedule,
				RunOnStart: cfg.Schedule.RunOnStart,
				OnTick: func(report cycle.TickReport) {
					if err := recorder.Record(report); err != nil {
						logger.Error("recording tick failed", "tick_id", report.ID, "error", err)
					}
				},
				Logger: logger,
			}

			logger.Info("rolesync starting",
				"version", version.Info(),
				"schedule", tickSchedule.String(),
				"backend", cfg.Sheets.Backend,
				"dry_run", cfg.Reconcile.DryRun,
			)

			var status http.Handler
			if cfg.Status.Listen != "" {
				status = statusapi.NewRouter(statusapi.NewHandler(recorder, session.Ready, version.Info()), logger)
			}
			err = serve(ctx, firstReady, runner, cfg.Status.Listen, status, session.Close, logger)
			logger.Info("rolesync stopped")
			return err
		},
	}
}

// surveyOnReady returns a channel closed by the first gateway Ready and
// the handler that closes it. Every Ready also logs a startup survey.
func surveyOnReady(ctx context.Context, source spreadsheet.Source, serviceAccount string, logger *slog.Logger) (<-chan struct{}, func(community.Directory)) {
	firstReady := make(chan struct{})
	var once sync.Once
	return firstReady, func(directory community.Directory) {
		once.Do(func() { close(firstReady) })
		survey, err := cycle.TakeSurvey(ctx, directory, source)
		if err != nil {
			logger.Error("startup survey failed", "error", err)
			return
		}
		survey.Log(logger, serviceAccount)
	}
}

// serve runs the tick runner once firstReady is closed, serves status
// on listen when it is set, and calls closeSession when ctx is done or
// either of the others fails.
func serve(ctx context.Context, firstReady <-chan struct{}, runner *cycle.Runner, listen string, status http.Handler, closeSession func() error, logger *slog.Logger) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		select {
		case <-firstReady:
		case <-groupCtx.Done():
			return nil
		}
		return runner.Run(groupCtx)
	})
	if listen != "" {
		group.Go(func() error {
			return statusapi.Serve(groupCtx, listen, status, logger)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		if err := closeSession(); err != nil {
			return fmt.Errorf("closing discord session: %w", err)
		}
		return nil
	})
	return group.Wait()
}
