// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/rolesync/lib/community"
)

const (
	// guildPageSize is the maximum page size of the current-user
	// guilds endpoint.
	guildPageSize = 200

	// memberPageSize is the maximum page size of the list-members
	// endpoint.
	memberPageSize = 1000

	auditLogReason = "rolesync: sheet approval"
)

// API is the subset of *discordgo.Session used by Directory.
type API interface {
	UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMembers(guildID, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

var _ API = (*discordgo.Session)(nil)

// Directory lists the guilds the bot has joined. It holds no cache;
// every call reads current state from Discord.
type Directory struct {
	api    API
	logger *slog.Logger
}

// NewDirectory returns a Directory over api, usually a
// *discordgo.Session.
func NewDirectory(api API, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{api: api, logger: logger}
}

// Groups implements community.Directory.
func (d *Directory) Groups(ctx context.Context) ([]community.Group, error) {
	var groups []community.Group
	after := ""
	for {
		page, err := d.api.UserGuilds(guildPageSize, "", after, false, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing guilds: %w", err)
		}
		for _, guild := range page {
			groups = append(groups, &guildGroup{api: d.api, id: guild.ID, name: guild.Name, logger: d.logger})
		}
		if len(page) < guildPageSize {
			return groups, nil
		}
		after = page[len(page)-1].ID
	}
}

// guildGroup is one guild.
type guildGroup struct {
	api    API
	id     string
	name   string
	logger *slog.Logger
}

func (g *guildGroup) ID() string   { return g.id }
func (g *guildGroup) Name() string { return g.name }

func (g *guildGroup) Tags(ctx context.Context) ([]community.Tag, error) {
	roles, err := g.api.GuildRoles(g.id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing roles of guild %s: %w", g.id, err)
	}
	tags := make([]community.Tag, 0, len(roles))
	for _, role := range roles {
		tags = append(tags, community.Tag{ID: role.ID, Name: role.Name})
	}
	return tags, nil
}

func (g *guildGroup) Members(ctx context.Context) ([]community.Member, error) {
	var members []community.Member
	after := ""
	for {
		page, err := g.api.GuildMembers(g.id, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing members of guild %s after %q: %w", g.id, after, err)
		}
		for _, member := range page {
			if member.User == nil {
				continue
			}
			members = append(members, community.Member{
				ID:            member.User.ID,
				Name:          member.User.Username,
				Discriminator: member.User.Discriminator,
				TagIDs:        member.Roles,
			})
		}
		if len(page) < memberPageSize || page[len(page)-1].User == nil {
			break
		}
		after = page[len(page)-1].User.ID
	}
	g.logger.Debug("listed guild members", "group", g.name, "members", len(members))
	return members, nil
}

func (g *guildGroup) GrantTag(ctx context.Context, member community.Member, tag community.Tag) error {
	err := g.api.GuildMemberRoleAdd(g.id, member.ID, tag.ID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(auditLogReason))
	return g.mutationError("adding", member, tag, err)
}

func (g *guildGroup) RevokeTag(ctx context.Context, member community.Member, tag community.Tag) error {
	err := g.api.GuildMemberRoleRemove(g.id, member.ID, tag.ID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(auditLogReason))
	return g.mutationError("removing", member, tag, err)
}

func (g *guildGroup) mutationError(verb string, member community.Member, tag community.Tag, err error) error {
	if err == nil {
		return nil
	}
	if IsForbidden(err) {
		return fmt.Errorf("%s role %q for %s in %q: bot role must be above %q and hold Manage Roles: %w",
			verb, tag.Name, member.Identity(), g.name, tag.Name, err)
	}
	return fmt.Errorf("%s role %q for %s in %q: %w", verb, tag.Name, member.Identity(), g.name, err)
}
