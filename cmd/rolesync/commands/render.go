// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/bureau-foundation/rolesync/lib/cycle"
	"github.com/bureau-foundation/rolesync/lib/reconcile"
)

// styles are bound to one writer so colour is only emitted to a
// terminal.
type styles struct {
	heading lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	faint   lipgloss.Style
	border  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	renderer := lipgloss.NewRenderer(w)
	return styles{
		heading: renderer.NewStyle().Bold(true),
		good:    renderer.NewStyle().Foreground(lipgloss.Color("2")),
		warning: renderer.NewStyle().Foreground(lipgloss.Color("3")),
		failure: renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		faint:   renderer.NewStyle().Faint(true),
		border:  renderer.NewStyle().Faint(true),
	}
}

func (s styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.border).
		Headers(headers...).
		Rows(rows...).
		String()
}

// renderTick writes a tick report: a heading line, one table row per
// spreadsheet, and a summary line.
func renderTick(w io.Writer, report cycle.TickReport) {
	s := newStyles(w)

	heading := "Tick " + report.ID
	if report.DryRun {
		heading += " (dry run)"
	}
	fmt.Fprintln(w, s.heading.Render(heading))
	fmt.Fprintln(w, s.faint.Render(fmt.Sprintf("started %s, took %s",
		report.Started.UTC().Format(time.RFC3339), report.Finished.Sub(report.Started).Round(time.Millisecond))))

	switch {
	case report.Skipped:
		fmt.Fprintln(w, s.warning.Render("skipped: chat session not ready"))
		return
	case report.Error != "":
		fmt.Fprintln(w, s.failure.Render("tick failed: "+report.Error))
		return
	case len(report.Sheets) == 0:
		fmt.Fprintln(w, s.warning.Render("no spreadsheets available"))
		return
	}

	headers := []string{"Spreadsheet", "Worksheet", "Server", "Role", "Granted", "Revoked", "Unchanged", "Not found", "Invalid", "Writes", "Result"}
	rows := make([][]string, 0, len(report.Sheets))
	for _, sheet := range report.Sheets {
		row := []string{sheet.Title, sheet.Worksheet, "", "", "", "", "", "", "", strconv.Itoa(sheet.Writes), sheetResult(s, sheet)}
		if sheet.Report != nil {
			r := sheet.Report
			row[2], row[3] = r.GroupName, r.TagName
			row[4] = strconv.Itoa(r.Count(reconcile.Grant))
			row[5] = strconv.Itoa(r.Count(reconcile.Revoke))
			row[6] = strconv.Itoa(r.Count(reconcile.NoOp))
			row[7] = strconv.Itoa(r.Count(reconcile.MemberNotFound))
			row[8] = strconv.Itoa(r.Count(reconcile.InvalidApproval))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(w, s.table(headers, rows))

	summary := fmt.Sprintf("%d spreadsheets, %d failed", len(report.Sheets), report.Failures())
	if report.Failures() > 0 {
		fmt.Fprintln(w, s.failure.Render(summary))
	} else {
		fmt.Fprintln(w, s.good.Render(summary))
	}
}

func sheetResult(s styles, sheet cycle.SheetResult) string {
	switch {
	case sheet.Failed():
		return s.failure.Render(fmt.Sprintf("%s error: %s", sheet.ErrorKind, sheet.Error))
	case !sheet.Participating:
		return s.faint.Render("not participating")
	case sheet.Report != nil && sheet.Report.Outcome != reconcile.NoOp:
		return s.warning.Render(sheet.Report.Outcome.String())
	default:
		return s.good.Render("ok")
	}
}

// renderSurvey writes the groups and spreadsheets the bot can reach.
func renderSurvey(w io.Writer, survey cycle.Survey, serviceAccount string) {
	s := newStyles(w)

	fmt.Fprintln(w, s.heading.Render("Discord servers"))
	if len(survey.Groups) == 0 {
		fmt.Fprintln(w, s.warning.Render("The bot is not a member of any server."))
	} else {
		rows := make([][]string, 0, len(survey.Groups))
		for _, group := range survey.Groups {
			tags := make([]string, 0, len(group.Tags))
			for _, tag := range group.Tags {
				tags = append(tags, strings.TrimPrefix(tag, "@"))
			}
			rows = append(rows, []string{group.Name, strings.Join(tags, ", ")})
		}
		fmt.Fprintln(w, s.table([]string{"Server", "Roles"}, rows))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.heading.Render("Spreadsheets"))
	if len(survey.Spreadsheets) == 0 {
		hint := "No spreadsheets available."
		if serviceAccount != "" {
			hint += " Share the spreadsheet with the service account: " + serviceAccount
		}
		fmt.Fprintln(w, s.warning.Render(hint))
		return
	}
	rows := make([][]string, 0, len(survey.Spreadsheets))
	for _, document := range survey.Spreadsheets {
		rows = append(rows, []string{document.Title, document.URL})
	}
	fmt.Fprintln(w, s.table([]string{"Title", "URL"}, rows))
}
