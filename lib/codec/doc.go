// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration used for
// on-disk state.
//
// JSON is used where people or other programs read the data: the
// status API and `--json` CLI output. CBOR is used for files only this
// program reads back, such as the last-tick record.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same value always produces identical bytes. Times are encoded as
// RFC 3339 strings with nanoseconds.
//
// # Struct Tag Rules
//
// fxamacker/cbor reads `json` tags when `cbor` tags are absent. Types
// that appear in both formats carry only `json` tags; types written
// only as CBOR carry only `cbor` tags. Never put both on one field.
package codec
