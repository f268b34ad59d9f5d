// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// Survey is what the bot can reach: the visible groups with their
// tags, and the accessible spreadsheets.
type Survey struct {
	Groups       []GroupSummary       `json:"groups"`
	Spreadsheets []SpreadsheetSummary `json:"spreadsheets"`
}

// GroupSummary names a group and its tags.
type GroupSummary struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// SpreadsheetSummary names a spreadsheet.
type SpreadsheetSummary struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TakeSurvey lists every group, tag and spreadsheet. It reads only.
func TakeSurvey(ctx context.Context, directory community.Directory, source spreadsheet.Source) (Survey, error) {
	var survey Survey

	groups, err := directory.Groups(ctx)
	if err != nil {
		return survey, fmt.Errorf("listing groups: %w", err)
	}
	for _, group := range groups {
		tags, err := group.Tags(ctx)
		if err != nil {
			return survey, fmt.Errorf("listing tags of %s: %w", group.Name(), err)
		}
		summary := GroupSummary{Name: group.Name(), Tags: make([]string, 0, len(tags))}
		for _, tag := range tags {
			summary.Tags = append(summary.Tags, tag.Name)
		}
		survey.Groups = append(survey.Groups, summary)
	}

	documents, err := source.Spreadsheets(ctx)
	if err != nil {
		return survey, fmt.Errorf("listing spreadsheets: %w", err)
	}
	for _, document := range documents {
		survey.Spreadsheets = append(survey.Spreadsheets, SpreadsheetSummary{Title: document.Title(), URL: document.URL()})
	}
	return survey, nil
}

// Log writes the survey as the startup report. With no spreadsheets it
// warns, naming shareWith when set (the account spreadsheets must be
// shared with).
func (s Survey) Log(logger *slog.Logger, shareWith string) {
	for _, group := range s.Groups {
		logger.Info("visible group", "group", group.Name, "tags", group.Tags)
	}
	for _, document := range s.Spreadsheets {
		logger.Info("accessible spreadsheet", "spreadsheet", document.Title, "url", document.URL)
	}
	if len(s.Spreadsheets) == 0 {
		if shareWith != "" {
			logger.Warn("no spreadsheets available; share them with the service account", "service_account", shareWith)
		} else {
			logger.Warn("no spreadsheets available")
		}
	}
	logger.Info("startup survey complete", "groups", len(s.Groups), "spreadsheets", len(s.Spreadsheets))
}
