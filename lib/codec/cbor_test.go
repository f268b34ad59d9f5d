// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// level is a text-marshaled enum, like reconcile.Outcome.
type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte([]string{"low", "high"}[l]), nil
}

func (l *level) UnmarshalText(text []byte) error {
	if string(text) == "high" {
		*l = 1
	} else {
		*l = 0
	}
	return nil
}

type sampleRecord struct {
	Sheet   string    `json:"sheet"`
	Note    string    `json:"note,omitempty"`
	Level   level     `json:"level"`
	Written time.Time `json:"written"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Sheet:   "Signups",
		Note:    "first pass",
		Level:   1,
		Written: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Sheet != original.Sheet || decoded.Note != original.Note || decoded.Level != original.Level {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if !decoded.Written.Equal(original.Written) {
		t.Errorf("time lost precision: got %v, want %v", decoded.Written, original.Written)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{"b": 2, "a": 1, "c": []string{"x"}}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestTextMarshalerEncodesAsString(t *testing.T) {
	data, err := Marshal(sampleRecord{Sheet: "s", Level: 1})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"level": "high"`) {
		t.Errorf("notation %s does not carry the enum name", notation)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	withNote, err := Marshal(sampleRecord{Sheet: "a", Note: "x"})
	if err != nil {
		t.Fatal(err)
	}
	withoutNote, err := Marshal(sampleRecord{Sheet: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(withoutNote) >= len(withNote) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes", len(withoutNote), len(withNote))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestUnmarshalAnyUsesStringKeys(t *testing.T) {
	data, err := Marshal(map[string]any{"sheet": "Signups"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded.(map[string]any); !ok {
		t.Errorf("decoded %T, want map[string]any", decoded)
	}
}
