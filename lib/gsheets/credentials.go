// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gsheets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Credentials is a service account key file.
type Credentials struct {
	// JSON is the key in plain JSON, comments and trailing commas
	// removed.
	JSON []byte

	// ClientEmail is the account's address. Spreadsheets must be
	// shared with it.
	ClientEmail string
}

// LoadCredentials reads a service account key file. Comments and
// trailing commas are tolerated.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service account key: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials parses a service account key.
func ParseCredentials(data []byte) (*Credentials, error) {
	plain := jsonc.ToJSON(data)
	var key struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(plain, &key); err != nil {
		return nil, fmt.Errorf("parsing service account key: %w", err)
	}
	if key.ClientEmail == "" {
		return nil, fmt.Errorf("service account key has no client_email")
	}
	if key.Type != "" && key.Type != "service_account" {
		return nil, fmt.Errorf("key type is %q, want service_account", key.Type)
	}
	return &Credentials{JSON: plain, ClientEmail: key.ClientEmail}, nil
}
