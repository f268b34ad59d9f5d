// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/roster"
)

// ApprovalPolicy decides what a malformed approval cell does.
type ApprovalPolicy string

const (
	// SkipRow annotates the row and continues with the next one.
	SkipRow ApprovalPolicy = "skip-row"

	// AbortSheet stops the worksheet and returns the error.
	AbortSheet ApprovalPolicy = "abort-sheet"
)

// Annotator sets the status cell of a sheet row. *annotate.Writer
// implements it.
type Annotator interface {
	Set(ctx context.Context, row int, message string) error
}

// RowResult is the outcome for one record.
type RowResult struct {
	Index    int     `json:"index"`
	Row      int     `json:"row"`
	Identity string  `json:"identity"`
	Outcome  Outcome `json:"outcome"`
}

// Report summarizes one worksheet.
type Report struct {
	GroupName string `json:"group"`
	TagName   string `json:"tag"`

	// Outcome is TagNotFound or GroupNotFound when the sheet stopped
	// before its rows, NoOp otherwise.
	Outcome Outcome `json:"outcome"`

	Rows []RowResult `json:"rows,omitempty"`
}

// Count returns how many rows ended with outcome.
func (r Report) Count(outcome Outcome) int {
	count := 0
	for _, row := range r.Rows {
		if row.Outcome == outcome {
			count++
		}
	}
	return count
}

// Options configures an Engine.
type Options struct {
	// DryRun computes outcomes without calling GrantTag or RevokeTag.
	DryRun bool

	// InvalidApproval defaults to SkipRow.
	InvalidApproval ApprovalPolicy

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Engine reconciles worksheets. It holds no per-sheet state and may be
// reused across sheets and ticks.
type Engine struct {
	dryRun         bool
	approvalPolicy ApprovalPolicy
	logger         *slog.Logger
}

// New returns an Engine.
func New(options Options) *Engine {
	policy := options.InvalidApproval
	if policy == "" {
		policy = SkipRow
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		dryRun:         options.DryRun,
		approvalPolicy: policy,
		logger:         logger,
	}
}

// MissingGroup records that groupName is not visible: the header status
// cell is set and no rows are read.
func (e *Engine) MissingGroup(ctx context.Context, groupName, tagName string, annotator Annotator) (Report, error) {
	report := Report{GroupName: groupName, TagName: tagName, Outcome: GroupNotFound}
	if err := annotator.Set(ctx, roster.HeaderRow, GroupNotFoundMessage(groupName)); err != nil {
		return report, err
	}
	return report, nil
}

// Run reconciles records against tagName in group.
func (e *Engine) Run(ctx context.Context, group community.Group, tagName string, records iter.Seq2[roster.Record, error], annotator Annotator) (Report, error) {
	report := Report{GroupName: group.Name(), TagName: tagName}
	logger := e.logger.With("group", group.Name(), "tag", tagName)

	tags, err := group.Tags(ctx)
	if err != nil {
		return report, fmt.Errorf("listing tags of %q: %w", group.Name(), err)
	}
	tag, ok := community.FindTag(tags, tagName)
	if !ok {
		report.Outcome = TagNotFound
		logger.Info("tag not found in group")
		return report, annotator.Set(ctx, roster.HeaderRow, TagNotFoundMessage(tagName))
	}
	if err := annotator.Set(ctx, roster.HeaderRow, ""); err != nil {
		return report, err
	}

	members, err := group.Members(ctx)
	if err != nil {
		return report, fmt.Errorf("listing members of %q: %w", group.Name(), err)
	}

	for record, parseErr := range records {
		result := RowResult{Index: record.Index, Row: record.Row(), Identity: record.Identity()}

		if parseErr != nil {
			if e.approvalPolicy == AbortSheet {
				return report, fmt.Errorf("row %d: %w", record.Row(), parseErr)
			}
			result.Outcome = InvalidApproval
			report.Rows = append(report.Rows, result)
			logger.Warn("skipping row with unreadable approval", "row", record.Row(), "approval", record.ApprovalText)
			if err := annotator.Set(ctx, record.Row(), InvalidApprovalMessage(record.ApprovalText)); err != nil {
				return report, err
			}
			continue
		}

		index := community.FindMember(members, record.MemberName, record.Discriminator)
		if index < 0 {
			result.Outcome = MemberNotFound
			report.Rows = append(report.Rows, result)
			logger.Info("member not found", "row", record.Row(), "identity", record.Identity())
			if err := annotator.Set(ctx, record.Row(), MemberNotFoundMessage(record.MemberName, record.Discriminator)); err != nil {
				return report, err
			}
			continue
		}

		member := members[index]
		result.Outcome = Decide(member.Holds(tag), record.Approval)
		if err := e.apply(ctx, group, &members[index], tag, result.Outcome); err != nil {
			return report, fmt.Errorf("row %d: %w", record.Row(), err)
		}
		report.Rows = append(report.Rows, result)
		if result.Outcome != NoOp {
			logger.Info("tag updated",
				"row", record.Row(),
				"identity", record.Identity(),
				"action", result.Outcome.String(),
				"dry_run", e.dryRun,
			)
		}

		if err := annotator.Set(ctx, roster.HeaderRow, ""); err != nil {
			return report, err
		}
		if err := annotator.Set(ctx, record.Row(), ""); err != nil {
			return report, err
		}
	}
	return report, nil
}

// apply performs a Grant or Revoke and mirrors it into the local
// snapshot, so a duplicate row later in the sheet sees the new state.
func (e *Engine) apply(ctx context.Context, group community.Group, member *community.Member, tag community.Tag, outcome Outcome) error {
	switch outcome {
	case Grant:
		if !e.dryRun {
			if err := group.GrantTag(ctx, *member, tag); err != nil {
				return fmt.Errorf("granting %q to %s: %w", tag.Name, member.Identity(), err)
			}
		}
		member.TagIDs = append(member.TagIDs, tag.ID)
	case Revoke:
		if !e.dryRun {
			if err := group.RevokeTag(ctx, *member, tag); err != nil {
				return fmt.Errorf("revoking %q from %s: %w", tag.Name, member.Identity(), err)
			}
		}
		kept := member.TagIDs[:0:0]
		for _, id := range member.TagIDs {
			if id != tag.ID {
				kept = append(kept, id)
			}
		}
		member.TagIDs = kept
	}
	return nil
}
