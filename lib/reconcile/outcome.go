// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reconcile

import "fmt"

// Outcome classifies what reconciliation did for a row or a sheet.
type Outcome int

const (
	// NoOp means the member already matches the record.
	NoOp Outcome = iota

	// Grant means the member lacked the tag and was approved.
	Grant

	// Revoke means the member held the tag and was not approved.
	Revoke

	// MemberNotFound means no member matches the record's identity.
	MemberNotFound

	// InvalidApproval means the approval cell is outside the
	// vocabulary.
	InvalidApproval

	// TagNotFound means the group has no tag with the declared name.
	// No rows are processed.
	TagNotFound

	// GroupNotFound means no visible group has the declared name. No
	// rows are processed.
	GroupNotFound
)

var outcomeNames = [...]string{
	NoOp:            "noop",
	Grant:           "grant",
	Revoke:          "revoke",
	MemberNotFound:  "member_not_found",
	InvalidApproval: "invalid_approval",
	TagNotFound:     "tag_not_found",
	GroupNotFound:   "group_not_found",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText makes outcomes readable in JSON and CBOR.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	for index, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(index)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Decide returns Grant, Revoke or NoOp for a resolved member.
func Decide(holdsTag, approved bool) Outcome {
	switch {
	case holdsTag && !approved:
		return Revoke
	case !holdsTag && approved:
		return Grant
	default:
		return NoOp
	}
}

// Status cell messages.

// GroupNotFoundMessage is written to the header status cell.
func GroupNotFoundMessage(groupName string) string {
	return "Bot does not have access to Discord Server: " + groupName
}

// TagNotFoundMessage is written to the header status cell.
func TagNotFoundMessage(tagName string) string {
	return "Role was not found in Discord Server: " + tagName
}

// MemberNotFoundMessage is written to the row status cell.
func MemberNotFoundMessage(name, discriminator string) string {
	return "User was not found in Discord Server: " + name + "#" + discriminator
}

// InvalidApprovalMessage is written to the row status cell.
func InvalidApprovalMessage(text string) string {
	return fmt.Sprintf("Approval value not recognized: %q", text)
}
