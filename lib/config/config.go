// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/rolesync/lib/schedule"
)

// EnvironmentVariable names the variable Load reads the config path
// from.
const EnvironmentVariable = "ROLESYNC_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local runs.
	Development Environment = "development"
	// Staging is for a bot connected to test servers.
	Staging Environment = "staging"
	// Production is for the live bot.
	Production Environment = "production"
)

// Sheet backends.
const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"
)

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	Discord   DiscordConfig   `yaml:"discord"`
	Sheets    SheetsConfig    `yaml:"sheets"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	State     StateConfig     `yaml:"state"`
	Status    StatusConfig    `yaml:"status"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Schedule *ScheduleConfig `yaml:"schedule,omitempty"`
	State    *StateConfig    `yaml:"state,omitempty"`
	Status   *StatusConfig   `yaml:"status,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
}

// DiscordConfig configures the bot account.
type DiscordConfig struct {
	// TokenFile is a file holding the bot token. Takes precedence over
	// TokenEnv.
	TokenFile string `yaml:"token_file"`

	// TokenEnv names the environment variable holding the bot token.
	// Default: DISCORD_TOKEN
	TokenEnv string `yaml:"token_env"`

	// CommandsEnabled answers the chat commands.
	// Default: true
	CommandsEnabled bool `yaml:"commands_enabled"`

	// CommandPrefix precedes chat command names.
	// Default: !role_bot_
	CommandPrefix string `yaml:"command_prefix"`
}

// SheetsConfig selects and configures the spreadsheet backend.
type SheetsConfig struct {
	// Backend is "google" or "xlsx".
	// Default: google
	Backend string `yaml:"backend"`

	Google GoogleConfig `yaml:"google"`
	XLSX   XLSXConfig   `yaml:"xlsx"`
}

// GoogleConfig configures the Google Sheets backend.
type GoogleConfig struct {
	// CredentialsFile is the service account key.
	CredentialsFile string `yaml:"credentials_file"`
}

// XLSXConfig configures the local workbook backend.
type XLSXConfig struct {
	// Directory holds the .xlsx workbooks.
	Directory string `yaml:"directory"`
}

// ScheduleConfig sets when ticks run. Interval and Cron are exclusive.
type ScheduleConfig struct {
	// Interval between tick starts, as a Go duration.
	// Default: 1h
	Interval string `yaml:"interval"`

	// Cron is a 5-field cron expression, evaluated in UTC.
	Cron string `yaml:"cron"`

	// RunOnStart runs a tick as soon as the daemon is ready.
	// Default: true
	RunOnStart bool `yaml:"run_on_start"`
}

// ReconcileConfig tunes reconciliation.
type ReconcileConfig struct {
	// DryRun computes outcomes without changing roles or cells.
	DryRun bool `yaml:"dry_run"`

	// InvalidApproval is "skip-row" or "abort-sheet".
	// Default: skip-row
	InvalidApproval string `yaml:"invalid_approval"`

	// BatchAnnotations sends a worksheet's status writes in one call.
	BatchAnnotations bool `yaml:"batch_annotations"`
}

// StateConfig configures the last-tick record.
type StateConfig struct {
	// File is where the last tick is recorded. Empty disables it.
	File string `yaml:"file"`
}

// StatusConfig configures the HTTP status endpoint.
type StatusConfig struct {
	// Listen is a host:port. Empty disables the endpoint.
	Listen string `yaml:"listen"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Format is "auto" (text on a terminal, JSON otherwise), "json" or
	// "text".
	Format string `yaml:"format"`

	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
}

var (
	backends        = []string{BackendGoogle, BackendXLSX}
	approvalActions = []string{"skip-row", "abort-sheet"}
	logFormats      = []string{"auto", "json", "text"}
	logLevels       = []string{"debug", "info", "warn", "error"}
)

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
func Default() *Config {
	return &Config{
		Environment: Development,
		Discord: DiscordConfig{
			TokenEnv:        "DISCORD_TOKEN",
			CommandsEnabled: true,
			CommandPrefix:   "!role_bot_",
		},
		Sheets: SheetsConfig{
			Backend: BackendGoogle,
			Google: GoogleConfig{
				CredentialsFile: "${HOME}/.config/rolesync/service-account.json",
			},
		},
		Schedule: ScheduleConfig{
			Interval:   "1h",
			RunOnStart: true,
		},
		Reconcile: ReconcileConfig{
			InvalidApproval: "skip-row",
		},
		State: StateConfig{
			File: "${HOME}/.local/state/rolesync/last-tick.cbor",
		},
		Logging: LoggingConfig{
			Format: "auto",
			Level:  "info",
		},
	}
}

// Load loads configuration from the ROLESYNC_CONFIG environment
// variable. There is no fallback when it is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your rolesync.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	// A file that only sets a cron expression replaces the default
	// interval rather than conflicting with it.
	var explicit struct {
		Schedule struct {
			Interval *string `yaml:"interval"`
		} `yaml:"schedule"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.Schedule.Cron != "" && explicit.Schedule.Interval == nil {
		c.Schedule.Interval = ""
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{Logging: &LoggingConfig{Format: "json"}}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Schedule != nil {
		// Interval and Cron are exclusive, so an override of either
		// replaces both.
		if overrides.Schedule.Interval != "" || overrides.Schedule.Cron != "" {
			c.Schedule.Interval = overrides.Schedule.Interval
			c.Schedule.Cron = overrides.Schedule.Cron
		}
		// RunOnStart is a bool, so we always apply it from overrides.
		c.Schedule.RunOnStart = overrides.Schedule.RunOnStart
	}
	if overrides.State != nil && overrides.State.File != "" {
		c.State.File = overrides.State.File
	}
	if overrides.Status != nil && overrides.Status.Listen != "" {
		c.Status.Listen = overrides.Status.Listen
	}
	if overrides.Logging != nil {
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Discord.TokenFile = expandVars(c.Discord.TokenFile, vars)
	c.Sheets.Google.CredentialsFile = expandVars(c.Sheets.Google.CredentialsFile, vars)
	c.Sheets.XLSX.Directory = expandVars(c.Sheets.XLSX.Directory, vars)
	c.State.File = expandVars(c.State.File, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Discord.TokenFile == "" && c.Discord.TokenEnv == "" {
		errs = append(errs, fmt.Errorf("discord.token_file or discord.token_env is required"))
	}
	if c.Discord.CommandsEnabled && c.Discord.CommandPrefix == "" {
		errs = append(errs, fmt.Errorf("discord.command_prefix is required when commands are enabled"))
	}

	switch c.Sheets.Backend {
	case BackendGoogle:
		if c.Sheets.Google.CredentialsFile == "" {
			errs = append(errs, fmt.Errorf("sheets.google.credentials_file is required for the google backend"))
		}
	case BackendXLSX:
		if c.Sheets.XLSX.Directory == "" {
			errs = append(errs, fmt.Errorf("sheets.xlsx.directory is required for the xlsx backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("sheets.backend must be one of: %v", backends))
	}

	if _, err := c.Schedule.Build(); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains(approvalActions, c.Reconcile.InvalidApproval) {
		errs = append(errs, fmt.Errorf("reconcile.invalid_approval must be one of: %v", approvalActions))
	}

	if c.Status.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Status.Listen); err != nil {
			errs = append(errs, fmt.Errorf("status.listen: %w", err))
		}
	}

	if !slices.Contains(logFormats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", logFormats))
	}
	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}

	return errors.Join(errs...)
}

// Build returns the configured schedule.
func (s ScheduleConfig) Build() (schedule.Schedule, error) {
	switch {
	case s.Interval != "" && s.Cron != "":
		return nil, fmt.Errorf("schedule.interval and schedule.cron are exclusive")
	case s.Cron != "":
		cron, err := schedule.ParseCron(s.Cron)
		if err != nil {
			return nil, fmt.Errorf("schedule.cron: %w", err)
		}
		return cron, nil
	case s.Interval != "":
		interval, err := time.ParseDuration(s.Interval)
		if err != nil {
			return nil, fmt.Errorf("schedule.interval: %w", err)
		}
		every, err := schedule.Every(interval)
		if err != nil {
			return nil, fmt.Errorf("schedule.interval: %w", err)
		}
		return every, nil
	default:
		return nil, fmt.Errorf("schedule.interval or schedule.cron is required")
	}
}

// EnsurePaths creates the directories configured paths live in.
func (c *Config) EnsurePaths() error {
	if c.State.File == "" {
		return nil
	}
	directory := filepath.Dir(c.State.File)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}
