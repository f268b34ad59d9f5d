// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package community describes the chat side of reconciliation: groups
// (servers), the tags (roles) defined in them, and their members.
//
// The interfaces here are the whole contract the engine needs from a
// chat platform. lib/discord implements them against the Discord API
// and lib/inmemory implements them for tests.
package community

import (
	"context"
	"slices"
)

// Tag is a membership marker defined in a group.
type Tag struct {
	ID   string
	Name string
}

// Member is a participant of a group as observed at snapshot time.
type Member struct {
	ID            string
	Name          string
	Discriminator string

	// TagIDs lists the IDs of the tags the member holds.
	TagIDs []string
}

// Identity returns the member's "name#discriminator" form.
func (m Member) Identity() string {
	return m.Name + "#" + m.Discriminator
}

// Holds reports whether the member holds tag.
func (m Member) Holds(tag Tag) bool {
	return slices.Contains(m.TagIDs, tag.ID)
}

// Group is one community the bot can see.
type Group interface {
	ID() string
	Name() string

	// Tags lists every tag defined in the group.
	Tags(ctx context.Context) ([]Tag, error)

	// Members lists every member of the group.
	Members(ctx context.Context) ([]Member, error)

	// GrantTag gives tag to member.
	GrantTag(ctx context.Context, member Member, tag Tag) error

	// RevokeTag removes tag from member.
	RevokeTag(ctx context.Context, member Member, tag Tag) error
}

// Directory lists the groups visible to the bot.
type Directory interface {
	Groups(ctx context.Context) ([]Group, error)
}

// FindGroup returns the first group named exactly name.
func FindGroup(groups []Group, name string) (Group, bool) {
	for _, group := range groups {
		if group.Name() == name {
			return group, true
		}
	}
	return nil, false
}

// FindTag returns the first tag named exactly name.
func FindTag(tags []Tag, name string) (Tag, bool) {
	for _, tag := range tags {
		if tag.Name == name {
			return tag, true
		}
	}
	return Tag{}, false
}

// FindMember returns the index of the member whose name and
// discriminator both match exactly, or -1.
func FindMember(members []Member, name, discriminator string) int {
	for index, member := range members {
		if member.Name == name && member.Discriminator == discriminator {
			return index
		}
	}
	return -1
}
