// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/config"
	"github.com/bureau-foundation/rolesync/lib/cycle"
	"github.com/bureau-foundation/rolesync/lib/discord"
	"github.com/bureau-foundation/rolesync/lib/gsheets"
	"github.com/bureau-foundation/rolesync/lib/reconcile"
	"github.com/bureau-foundation/rolesync/lib/secret"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
	"github.com/bureau-foundation/rolesync/lib/xlsx"
)

// configParams is the --config flag shared by every command that
// needs configuration.
type configParams struct {
	path string
}

func (p *configParams) bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.path, "config", "", "path to rolesync.yaml (default: $"+config.EnvironmentVariable+")")
}

// load reads and validates the configuration.
func (p *configParams) load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if p.path != "" {
		cfg, err = config.LoadFile(p.path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(env Env, cfg *config.Config, command string) (*slog.Logger, error) {
	logger, err := cli.NewLogger(env.Stderr, cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logger.With("command", command), nil
}

// readToken reads the bot token from the configured file, or else from
// the configured environment variable.
func readToken(discordConfig config.DiscordConfig) (*secret.Buffer, error) {
	if discordConfig.TokenFile != "" {
		token, err := secret.ReadFromPath(discordConfig.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("reading discord token: %w", err)
		}
		return token, nil
	}
	token, err := secret.FromEnv(discordConfig.TokenEnv)
	if err != nil {
		return nil, fmt.Errorf("reading discord token: %w", err)
	}
	return token, nil
}

func openDiscordDirectory(_ context.Context, cfg *config.Config, logger *slog.Logger) (community.Directory, error) {
	token, err := readToken(cfg.Discord)
	if err != nil {
		return nil, err
	}
	defer token.Close()
	directory, err := discord.NewRESTDirectory(token.String(), logger)
	if err != nil {
		return nil, err
	}
	return directory, nil
}

// openSource returns the configured spreadsheet backend and, for
// Google, the service account spreadsheets must be shared with.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (spreadsheet.Source, string, error) {
	switch cfg.Sheets.Backend {
	case config.BackendGoogle:
		credentials, err := gsheets.LoadCredentials(cfg.Sheets.Google.CredentialsFile)
		if err != nil {
			return nil, "", err
		}
		source, err := gsheets.New(ctx, credentials, logger)
		if err != nil {
			return nil, "", err
		}
		return source, source.ServiceAccount(), nil
	case config.BackendXLSX:
		source, err := xlsx.New(cfg.Sheets.XLSX.Directory, logger)
		if err != nil {
			return nil, "", err
		}
		return source, "", nil
	default:
		return nil, "", fmt.Errorf("unknown sheets backend %q", cfg.Sheets.Backend)
	}
}

// newOrchestrator wires the reconciliation engine and orchestrator.
// ready may be nil.
func newOrchestrator(cfg *config.Config, directory community.Directory, source spreadsheet.Source, dryRun bool, ready func() bool, logger *slog.Logger) (*cycle.Orchestrator, error) {
	engine := reconcile.New(reconcile.Options{
		DryRun:          dryRun,
		InvalidApproval: reconcile.ApprovalPolicy(cfg.Reconcile.InvalidApproval),
		Logger:          logger,
	})
	return cycle.New(cycle.Config{
		Directory:        directory,
		Source:           source,
		Engine:           engine,
		BatchAnnotations: cfg.Reconcile.BatchAnnotations,
		DryRun:           dryRun,
		Ready:            ready,
		Logger:           logger,
	})
}

func noArguments(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return nil
}
