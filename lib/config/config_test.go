// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rolesync.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Discord.TokenEnv != "DISCORD_TOKEN" {
		t.Errorf("expected token_env=DISCORD_TOKEN, got %s", cfg.Discord.TokenEnv)
	}
	if cfg.Sheets.Backend != BackendGoogle {
		t.Errorf("expected backend=google, got %s", cfg.Sheets.Backend)
	}
	if cfg.Reconcile.InvalidApproval != "skip-row" {
		t.Errorf("expected invalid_approval=skip-row, got %s", cfg.Reconcile.InvalidApproval)
	}
	if !cfg.Schedule.RunOnStart {
		t.Error("expected run_on_start=true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when ROLESYNC_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "ROLESYNC_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	path := writeConfig(t, `
environment: staging
sheets:
  backend: xlsx
  xlsx:
    directory: /srv/workbooks
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Sheets.Backend != BackendXLSX || cfg.Sheets.XLSX.Directory != "/srv/workbooks" {
		t.Errorf("sheets = %+v", cfg.Sheets)
	}
	if cfg.Discord.TokenEnv != "DISCORD_TOKEN" {
		t.Errorf("default token_env lost: %q", cfg.Discord.TokenEnv)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
environment: development
discord:
  token_file: /run/secrets/discord
  commands_enabled: false
schedule:
  interval: ""
  cron: "0 * * * *"
reconcile:
  dry_run: true
  invalid_approval: abort-sheet
  batch_annotations: true
state:
  file: /var/lib/rolesync/last-tick.cbor
status:
  listen: 127.0.0.1:8085
logging:
  level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Discord.TokenFile != "/run/secrets/discord" || cfg.Discord.CommandsEnabled {
		t.Errorf("discord = %+v", cfg.Discord)
	}
	if !cfg.Reconcile.DryRun || cfg.Reconcile.InvalidApproval != "abort-sheet" || !cfg.Reconcile.BatchAnnotations {
		t.Errorf("reconcile = %+v", cfg.Reconcile)
	}
	if cfg.Status.Listen != "127.0.0.1:8085" || cfg.Logging.Level != "debug" {
		t.Errorf("status/logging = %+v / %+v", cfg.Status, cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	built, err := cfg.Schedule.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	next, err := built.Next(time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if want := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestLoadFileCronReplacesDefaultInterval(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "schedule:\n  cron: \"*/30 * * * *\"\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Schedule.Interval != "" {
		t.Errorf("interval = %q, want cleared", cfg.Schedule.Interval)
	}
	if _, err := cfg.Schedule.Build(); err != nil {
		t.Errorf("Build: %v", err)
	}

	cfg, err = LoadFile(writeConfig(t, "schedule:\n  interval: 2h\n  cron: \"*/30 * * * *\"\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if _, err := cfg.Schedule.Build(); err == nil {
		t.Error("explicit interval and cron accepted together")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := LoadFile(writeConfig(t, "discord: [unclosed")); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantFormat string
		wantLevel  string
		wantCron   string
	}{
		{
			name:       "production default forces json",
			content:    "environment: production\n",
			wantFormat: "json",
			wantLevel:  "info",
		},
		{
			name: "production section",
			content: `
environment: production
production:
  logging:
    level: warn
  schedule:
    cron: "*/15 * * * *"
`,
			wantFormat: "auto",
			wantLevel:  "warn",
			wantCron:   "*/15 * * * *",
		},
		{
			name: "section for another environment is ignored",
			content: `
environment: development
production:
  logging:
    level: error
`,
			wantFormat: "auto",
			wantLevel:  "info",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if cfg.Logging.Format != tt.wantFormat || cfg.Logging.Level != tt.wantLevel {
				t.Errorf("logging = %+v, want format=%s level=%s", cfg.Logging, tt.wantFormat, tt.wantLevel)
			}
			if cfg.Schedule.Cron != tt.wantCron {
				t.Errorf("cron = %q, want %q", cfg.Schedule.Cron, tt.wantCron)
			}
			if tt.wantCron != "" && cfg.Schedule.Interval != "" {
				t.Errorf("interval %q survived a cron override", cfg.Schedule.Interval)
			}
		})
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	t.Setenv("ROLESYNC_STATUS_LISTEN", "0.0.0.0:1")
	cfg, err := LoadFile(writeConfig(t, "status:\n  listen: 127.0.0.1:9000\n"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Status.Listen != "127.0.0.1:9000" {
		t.Errorf("expected listen from file, got %s", cfg.Status.Listen)
	}
}

func TestPathExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/ops")
	t.Setenv("ROLESYNC_DATA", "")
	cfg, err := LoadFile(writeConfig(t, `
sheets:
  backend: xlsx
  xlsx:
    directory: ${ROLESYNC_DATA:-/srv/rolesync}/workbooks
`))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Sheets.XLSX.Directory != "/srv/rolesync/workbooks" {
		t.Errorf("directory = %s", cfg.Sheets.XLSX.Directory)
	}
	if cfg.State.File != "/home/ops/.local/state/rolesync/last-tick.cbor" {
		t.Errorf("state file = %s", cfg.State.File)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/rolesync",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/rolesync",
		},
		{
			input:    "${ROLESYNC_TEST_MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "invalid environment", modify: func(c *Config) { c.Environment = "invalid" }, wantErr: "invalid environment"},
		{
			name: "no token source",
			modify: func(c *Config) {
				c.Discord.TokenEnv = ""
				c.Discord.TokenFile = ""
			},
			wantErr: "discord.token_file or discord.token_env",
		},
		{name: "unknown backend", modify: func(c *Config) { c.Sheets.Backend = "csv" }, wantErr: "sheets.backend"},
		{name: "xlsx without directory", modify: func(c *Config) { c.Sheets.Backend = BackendXLSX }, wantErr: "sheets.xlsx.directory"},
		{name: "both schedules", modify: func(c *Config) { c.Schedule.Cron = "0 * * * *" }, wantErr: "exclusive"},
		{name: "no schedule", modify: func(c *Config) { c.Schedule.Interval = "" }, wantErr: "schedule.interval or schedule.cron"},
		{name: "bad interval", modify: func(c *Config) { c.Schedule.Interval = "hourly" }, wantErr: "schedule.interval"},
		{name: "zero interval", modify: func(c *Config) { c.Schedule.Interval = "0s" }, wantErr: "schedule.interval"},
		{
			name: "bad cron",
			modify: func(c *Config) {
				c.Schedule.Interval = ""
				c.Schedule.Cron = "61 * * * *"
			},
			wantErr: "schedule.cron",
		},
		{name: "bad approval action", modify: func(c *Config) { c.Reconcile.InvalidApproval = "ignore" }, wantErr: "reconcile.invalid_approval"},
		{name: "bad listen", modify: func(c *Config) { c.Status.Listen = "8080" }, wantErr: "status.listen"},
		{name: "bad log format", modify: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
		{name: "bad log level", modify: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Sheets.Backend = "csv"
	cfg.Logging.Level = "trace"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"sheets.backend", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestEnsurePaths(t *testing.T) {
	cfg := Default()
	cfg.State.File = filepath.Join(t.TempDir(), "state", "nested", "last-tick.cbor")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}
	info, err := os.Stat(filepath.Dir(cfg.State.File))
	if err != nil {
		t.Fatalf("state directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("state directory is not a directory")
	}
}
