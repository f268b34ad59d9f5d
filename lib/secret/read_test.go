// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
		wantErr  bool
	}{
		{name: "plain value", content: "my-bot-token", expected: "my-bot-token"},
		{name: "trailing newline", content: "my-bot-token\n", expected: "my-bot-token"},
		{name: "surrounding whitespace", content: "  my-bot-token \n", expected: "my-bot-token"},
		{name: "empty", content: "", wantErr: true},
		{name: "whitespace only", content: "  \n\t\n", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			result, err := ReadFromPath(path)
			if test.wantErr {
				if err == nil {
					result.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFromPath() error: %v", err)
			}
			defer result.Close()
			if result.String() != test.expected {
				t.Errorf("ReadFromPath() = %q, want %q", result.String(), test.expected)
			}
		})
	}
}

func TestReadFromPath_FileNotFound(t *testing.T) {
	if _, err := ReadFromPath("/nonexistent/path/to/secret"); err == nil {
		t.Error("ReadFromPath() with nonexistent file should return error")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ROLESYNC_TEST_TOKEN", " env-token\n")

	buffer, err := FromEnv("ROLESYNC_TEST_TOKEN")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "env-token" {
		t.Errorf("FromEnv() = %q", buffer.String())
	}
	if _, ok := os.LookupEnv("ROLESYNC_TEST_TOKEN"); ok {
		t.Error("variable still set after FromEnv")
	}
}

func TestFromEnv_Missing(t *testing.T) {
	t.Setenv("ROLESYNC_TEST_TOKEN", "")
	os.Unsetenv("ROLESYNC_TEST_TOKEN")
	if _, err := FromEnv("ROLESYNC_TEST_TOKEN"); err == nil {
		t.Error("missing variable accepted")
	}

	t.Setenv("ROLESYNC_TEST_TOKEN", "   ")
	if _, err := FromEnv("ROLESYNC_TEST_TOKEN"); err == nil {
		t.Error("blank variable accepted")
	}
}
