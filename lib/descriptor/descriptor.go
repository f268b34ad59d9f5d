// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package descriptor finds the worksheet that configures a spreadsheet
// for reconciliation.
//
// A participating worksheet carries a marker in cell A1 naming the
// target group and tag, for example:
//
//	Discord: Clan Alpha
//	Role: Member
//
// Both labels are case-insensitive, may be followed by any number of
// colons and whitespace, and their value runs to the end of the line.
// Worksheets whose marker cell is empty or incomplete are skipped; a
// spreadsheet with no matching worksheet simply does not participate.
package descriptor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// MarkerRow and MarkerColumn locate the marker cell (A1).
const (
	MarkerRow    = 1
	MarkerColumn = 1
)

// Descriptor is the resolved configuration of one worksheet.
type Descriptor struct {
	GroupName string
	TagName   string
	Worksheet spreadsheet.Worksheet
}

// Patterns holds the two independent label patterns. Each must have
// exactly one capture group holding the value.
type Patterns struct {
	Group *regexp.Regexp
	Tag   *regexp.Regexp
}

// DefaultPatterns recognises "Discord: <group>" and "Role: <tag>". A
// value never continues onto the next line.
var DefaultPatterns = Patterns{
	Group: regexp.MustCompile(`(?i)\bdiscord[ \t]*:*[ \t]*(.+?)(?:$|\n)`),
	Tag:   regexp.MustCompile(`(?i)\brole[ \t]*:*[ \t]*(.+?)(?:$|\n)`),
}

// Extract parses marker text with DefaultPatterns.
func Extract(text string) (groupName, tagName string, ok bool) {
	return DefaultPatterns.Extract(text)
}

// Extract returns the first group and tag values in text. ok is false
// unless both patterns match with a non-blank value.
func (p Patterns) Extract(text string) (groupName, tagName string, ok bool) {
	groupName = firstCapture(p.Group, text)
	tagName = firstCapture(p.Tag, text)
	if groupName == "" || tagName == "" {
		return "", "", false
	}
	return groupName, tagName, true
}

func firstCapture(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// Find returns the first worksheet, in listing order, whose marker cell
// names both a group and a tag. ok is false when none does.
func Find(ctx context.Context, document spreadsheet.Spreadsheet) (Descriptor, bool, error) {
	return DefaultPatterns.Find(ctx, document)
}

// Find is Find with these patterns.
func (p Patterns) Find(ctx context.Context, document spreadsheet.Spreadsheet) (Descriptor, bool, error) {
	worksheets, err := document.Worksheets(ctx)
	if err != nil {
		return Descriptor{}, false, fmt.Errorf("listing worksheets of %q: %w", document.Title(), err)
	}

	for _, worksheet := range worksheets {
		marker, err := worksheet.Cell(ctx, MarkerRow, MarkerColumn)
		if err != nil {
			return Descriptor{}, false, fmt.Errorf("reading marker cell of %q/%q: %w",
				document.Title(), worksheet.Title(), err)
		}
		if marker == "" {
			continue
		}
		groupName, tagName, ok := p.Extract(marker)
		if !ok {
			continue
		}
		return Descriptor{GroupName: groupName, TagName: tagName, Worksheet: worksheet}, true, nil
	}
	return Descriptor{}, false, nil
}
