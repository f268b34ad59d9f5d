// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inmemory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/bureau-foundation/rolesync/lib/community"
)

// Directory is an in-memory community.Directory.
type Directory struct {
	mu     sync.Mutex
	groups []*Group

	// Err, when set, is returned by Groups.
	Err error
}

// NewDirectory returns a Directory listing groups in order.
func NewDirectory(groups ...*Group) *Directory {
	return &Directory{groups: groups}
}

// Groups implements community.Directory.
func (d *Directory) Groups(ctx context.Context) ([]community.Group, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	result := make([]community.Group, len(d.groups))
	for index, group := range d.groups {
		result[index] = group
	}
	return result, nil
}

// Mutation records one GrantTag or RevokeTag call.
type Mutation struct {
	MemberID string
	TagID    string
}

// Group is an in-memory community.Group.
type Group struct {
	mu      sync.Mutex
	id      string
	name    string
	tags    []community.Tag
	members []community.Member
	grants  []Mutation
	revokes []Mutation

	// MutationErr, when set, is returned by GrantTag and RevokeTag
	// without changing state.
	MutationErr error
}

// NewGroup returns an empty group.
func NewGroup(id, name string) *Group {
	return &Group{id: id, name: name}
}

// AddTag defines a tag and returns it.
func (g *Group) AddTag(name string) community.Tag {
	g.mu.Lock()
	defer g.mu.Unlock()
	tag := community.Tag{ID: g.id + "-tag-" + strconv.Itoa(len(g.tags)+1), Name: name}
	g.tags = append(g.tags, tag)
	return tag
}

// AddMember adds a member holding tags and returns it.
func (g *Group) AddMember(name, discriminator string, tags ...community.Tag) community.Member {
	g.mu.Lock()
	defer g.mu.Unlock()
	member := community.Member{
		ID:            g.id + "-member-" + strconv.Itoa(len(g.members)+1),
		Name:          name,
		Discriminator: discriminator,
	}
	for _, tag := range tags {
		member.TagIDs = append(member.TagIDs, tag.ID)
	}
	g.members = append(g.members, member)
	return member
}

// Member returns the current state of the member with id.
func (g *Group) Member(id string) (community.Member, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	index := g.indexOf(id)
	if index < 0 {
		return community.Member{}, false
	}
	return cloneMember(g.members[index]), true
}

// Grants returns every successful GrantTag call so far.
func (g *Group) Grants() []Mutation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.grants)
}

// Revokes returns every successful RevokeTag call so far.
func (g *Group) Revokes() []Mutation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.revokes)
}

// ID implements community.Group.
func (g *Group) ID() string { return g.id }

// Name implements community.Group.
func (g *Group) Name() string { return g.name }

// Tags implements community.Group.
func (g *Group) Tags(ctx context.Context) ([]community.Tag, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.tags), nil
}

// Members implements community.Group.
func (g *Group) Members(ctx context.Context) ([]community.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make([]community.Member, len(g.members))
	for index, member := range g.members {
		result[index] = cloneMember(member)
	}
	return result, nil
}

// GrantTag implements community.Group.
func (g *Group) GrantTag(ctx context.Context, member community.Member, tag community.Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.MutationErr != nil {
		return g.MutationErr
	}
	index := g.indexOf(member.ID)
	if index < 0 {
		return fmt.Errorf("inmemory: unknown member %s", member.ID)
	}
	if !slices.Contains(g.members[index].TagIDs, tag.ID) {
		g.members[index].TagIDs = append(g.members[index].TagIDs, tag.ID)
	}
	g.grants = append(g.grants, Mutation{MemberID: member.ID, TagID: tag.ID})
	return nil
}

// RevokeTag implements community.Group.
func (g *Group) RevokeTag(ctx context.Context, member community.Member, tag community.Tag) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.MutationErr != nil {
		return g.MutationErr
	}
	index := g.indexOf(member.ID)
	if index < 0 {
		return fmt.Errorf("inmemory: unknown member %s", member.ID)
	}
	g.members[index].TagIDs = slices.DeleteFunc(g.members[index].TagIDs, func(id string) bool {
		return id == tag.ID
	})
	g.revokes = append(g.revokes, Mutation{MemberID: member.ID, TagID: tag.ID})
	return nil
}

func (g *Group) indexOf(id string) int {
	return slices.IndexFunc(g.members, func(member community.Member) bool {
		return member.ID == id
	})
}

func cloneMember(member community.Member) community.Member {
	member.TagIDs = slices.Clone(member.TagIDs)
	return member
}
