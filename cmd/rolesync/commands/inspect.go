// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/rolesync/cmd/rolesync/cli"
	"github.com/bureau-foundation/rolesync/lib/descriptor"
	"github.com/bureau-foundation/rolesync/lib/roster"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// inspection is what one spreadsheet declares and lists.
type inspection struct {
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Participating bool            `json:"participating"`
	Worksheet     string          `json:"worksheet,omitempty"`
	Group         string          `json:"group,omitempty"`
	Tag           string          `json:"tag,omitempty"`
	Records       []inspectRecord `json:"records,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type inspectRecord struct {
	Row      int    `json:"row"`
	Member   string `json:"member"`
	Approval string `json:"approval"`
	Approved bool   `json:"approved"`
	Invalid  bool   `json:"invalid,omitempty"`
}

func inspectCommand(env Env) *cli.Command {
	var (
		params     configParams
		jsonOutput bool
	)
	return &cli.Command{
		Name:    "inspect",
		Summary: "Show spreadsheet markers and parsed rows",
		Description: `Read every accessible spreadsheet (or only those named by title or ID)
and show which worksheet carries the marker, the Discord server and
role it names, and each row as the reconciler would parse it. Discord
is not contacted and nothing is written.`,
		Usage: "rolesync inspect [title-or-id...] [--json] [--config path]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			params.bind(flagSet)
			flagSet.BoolVar(&jsonOutput, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			cfg, err := params.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(env, cfg, "inspect")
			if err != nil {
				return err
			}
			source, _, err := openSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			documents, err := source.Spreadsheets(ctx)
			if err != nil {
				return err
			}

			var inspections []inspection
			for _, document := range documents {
				if len(args) > 0 && !slices.Contains(args, document.Title()) && !slices.Contains(args, document.ID()) {
					continue
				}
				inspections = append(inspections, inspectSpreadsheet(ctx, document))
			}
			if len(args) > 0 && len(inspections) == 0 {
				return fmt.Errorf("no spreadsheet matches %v", args)
			}

			if jsonOutput {
				return cli.WriteJSON(env.Stdout, inspections)
			}
			renderInspections(env.Stdout, inspections)
			return nil
		},
	}
}

func inspectSpreadsheet(ctx context.Context, document spreadsheet.Spreadsheet) inspection {
	result := inspection{Title: document.Title(), URL: document.URL()}

	found, ok, err := descriptor.Find(ctx, document)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if !ok {
		return result
	}
	result.Participating = true
	result.Worksheet = found.Worksheet.Title()
	result.Group = found.GroupName
	result.Tag = found.TagName

	grid, err := found.Worksheet.Rows(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for record, err := range roster.Records(grid) {
		result.Records = append(result.Records, inspectRecord{
			Row:      record.Row(),
			Member:   record.Identity(),
			Approval: record.ApprovalText,
			Approved: record.Approval,
			Invalid:  errors.Is(err, roster.ErrInvalidApproval),
		})
	}
	return result
}

func renderInspections(w io.Writer, inspections []inspection) {
	s := newStyles(w)
	for index, result := range inspections {
		if index > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, s.heading.Render(result.Title)+" "+s.faint.Render(result.URL))
		switch {
		case result.Error != "":
			fmt.Fprintln(w, s.failure.Render("error: "+result.Error))
			continue
		case !result.Participating:
			fmt.Fprintln(w, s.faint.Render("not participating: no worksheet names a Discord server and role"))
			continue
		}
		fmt.Fprintf(w, "worksheet %q: server %q, role %q\n", result.Worksheet, result.Group, result.Tag)
		if len(result.Records) == 0 {
			fmt.Fprintln(w, s.warning.Render("no rows"))
			continue
		}
		rows := make([][]string, 0, len(result.Records))
		for _, record := range result.Records {
			state := "not approved"
			switch {
			case record.Invalid:
				state = s.failure.Render("invalid")
			case record.Approved:
				state = s.good.Render("approved")
			}
			rows = append(rows, []string{strconv.Itoa(record.Row), record.Member, record.Approval, state})
		}
		fmt.Fprintln(w, s.table([]string{"Row", "Member", "Approval", "Parsed"}, rows))
	}
}
