// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFromPath reads a secret from a file. Surrounding whitespace is
// trimmed; an empty result is an error.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret file %s is empty", path)
	}
	return NewFromBytes(trimmed)
}

// FromEnv reads a secret from the environment variable name and unsets
// it. Surrounding whitespace is trimmed; a missing or empty variable is
// an error.
func FromEnv(name string) (*Buffer, error) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return nil, fmt.Errorf("environment variable %s is not set", name)
	}
	if err := os.Unsetenv(name); err != nil {
		return nil, fmt.Errorf("unsetting %s: %w", name, err)
	}
	data := []byte(value)
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("environment variable %s is empty", name)
	}
	return NewFromBytes(trimmed)
}
