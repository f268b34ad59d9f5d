// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/inmemory"
	"github.com/bureau-foundation/rolesync/lib/testutil"
)

// fakeAPI serves guilds, roles and members from memory and records
// role changes.
type fakeAPI struct {
	guilds  []*discordgo.UserGuild
	roles   map[string][]*discordgo.Role
	members map[string][]*discordgo.Member

	guildPages  int
	memberPages int
	added       []string
	removed     []string
	mutationErr error
}

func (f *fakeAPI) UserGuilds(limit int, beforeID, afterID string, withCounts bool, options ...discordgo.RequestOption) ([]*discordgo.UserGuild, error) {
	f.guildPages++
	start := 0
	if afterID != "" {
		for index, guild := range f.guilds {
			if guild.ID == afterID {
				start = index + 1
			}
		}
	}
	end := min(start+limit, len(f.guilds))
	return f.guilds[start:end], nil
}

func (f *fakeAPI) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles[guildID], nil
}

func (f *fakeAPI) GuildMembers(guildID, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	f.memberPages++
	all := f.members[guildID]
	start := 0
	if after != "" {
		for index, member := range all {
			if member.User.ID == after {
				start = index + 1
			}
		}
	}
	end := min(start+limit, len(all))
	return all[start:end], nil
}

func (f *fakeAPI) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.mutationErr != nil {
		return f.mutationErr
	}
	f.added = append(f.added, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeAPI) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.mutationErr != nil {
		return f.mutationErr
	}
	f.removed = append(f.removed, guildID+"/"+userID+"/"+roleID)
	return nil
}

func member(id, username, discriminator string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: id, Username: username, Discriminator: discriminator},
		Roles: roles,
	}
}

func restError(status int, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: strconv.Itoa(status) + " " + http.StatusText(status)},
		Message:  &discordgo.APIErrorMessage{Code: code},
	}
}

func TestDirectoryGroupsPages(t *testing.T) {
	api := &fakeAPI{}
	for index := range guildPageSize + 5 {
		api.guilds = append(api.guilds, &discordgo.UserGuild{ID: fmt.Sprintf("g%03d", index), Name: fmt.Sprintf("Guild %d", index)})
	}
	groups, err := NewDirectory(api, testutil.Logger()).Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != guildPageSize+5 {
		t.Errorf("got %d groups, want %d", len(groups), guildPageSize+5)
	}
	if api.guildPages != 2 {
		t.Errorf("fetched %d pages, want 2", api.guildPages)
	}
	if groups[guildPageSize].Name() != fmt.Sprintf("Guild %d", guildPageSize) {
		t.Errorf("first group of second page = %q", groups[guildPageSize].Name())
	}
}

func TestGroupTagsAndMembers(t *testing.T) {
	api := &fakeAPI{
		guilds: []*discordgo.UserGuild{{ID: "g1", Name: "Clan Alpha"}},
		roles: map[string][]*discordgo.Role{
			"g1": {{ID: "r0", Name: "@everyone"}, {ID: "r1", Name: "Member"}},
		},
		members: map[string][]*discordgo.Member{},
	}
	for index := range memberPageSize + 1 {
		api.members["g1"] = append(api.members["g1"], member(fmt.Sprintf("u%04d", index), fmt.Sprintf("user%d", index), "0"))
	}
	api.members["g1"][0].Roles = []string{"r1"}

	groups, err := NewDirectory(api, testutil.Logger()).Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	group, ok := community.FindGroup(groups, "Clan Alpha")
	if !ok {
		t.Fatal("Clan Alpha not found")
	}

	tags, err := group.Tags(context.Background())
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	tag, ok := community.FindTag(tags, "Member")
	if !ok || tag.ID != "r1" {
		t.Errorf("FindTag(Member) = %+v, %v", tag, ok)
	}

	members, err := group.Members(context.Background())
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != memberPageSize+1 {
		t.Errorf("got %d members, want %d", len(members), memberPageSize+1)
	}
	if api.memberPages != 2 {
		t.Errorf("fetched %d member pages, want 2", api.memberPages)
	}
	if !members[0].Holds(tag) {
		t.Error("first member does not hold Member")
	}
	if members[0].Identity() != "user0#0" {
		t.Errorf("Identity() = %q", members[0].Identity())
	}
}

func TestGroupGrantRevoke(t *testing.T) {
	api := &fakeAPI{guilds: []*discordgo.UserGuild{{ID: "g1", Name: "Clan Alpha"}}}
	groups, _ := NewDirectory(api, testutil.Logger()).Groups(context.Background())
	group := groups[0]
	target := community.Member{ID: "u1", Name: "Alice", Discriminator: "1234"}
	tag := community.Tag{ID: "r1", Name: "Member"}

	if err := group.GrantTag(context.Background(), target, tag); err != nil {
		t.Fatalf("GrantTag: %v", err)
	}
	if err := group.RevokeTag(context.Background(), target, tag); err != nil {
		t.Fatalf("RevokeTag: %v", err)
	}
	if len(api.added) != 1 || api.added[0] != "g1/u1/r1" {
		t.Errorf("added = %v", api.added)
	}
	if len(api.removed) != 1 || api.removed[0] != "g1/u1/r1" {
		t.Errorf("removed = %v", api.removed)
	}

	api.mutationErr = restError(http.StatusForbidden, discordgo.ErrCodeMissingPermissions)
	err := group.GrantTag(context.Background(), target, tag)
	if !IsForbidden(err) {
		t.Fatalf("GrantTag error %v is not forbidden", err)
	}
	if !strings.Contains(err.Error(), "bot role must be above") {
		t.Errorf("error lacks permission hint: %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		notFound  bool
		forbidden bool
	}{
		{"unknown member", restError(http.StatusNotFound, discordgo.ErrCodeUnknownMember), true, false},
		{"bare 404", restError(http.StatusNotFound, 0), true, false},
		{"missing access", restError(http.StatusForbidden, discordgo.ErrCodeMissingAccess), false, true},
		{"wrapped", fmt.Errorf("outer: %w", restError(http.StatusForbidden, 0)), false, true},
		{"server error", restError(http.StatusInternalServerError, 0), false, false},
		{"plain", errors.New("boom"), false, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsNotFound(test.err); got != test.notFound {
				t.Errorf("IsNotFound = %v, want %v", got, test.notFound)
			}
			if got := IsForbidden(test.err); got != test.forbidden {
				t.Errorf("IsForbidden = %v, want %v", got, test.forbidden)
			}
		})
	}
}

func newCommands(documents ...*inmemory.Spreadsheet) *Commands {
	group := inmemory.NewGroup("g1", "Clan Alpha")
	group.AddTag("@everyone")
	group.AddTag("Member")
	return &Commands{
		ServiceAccount: "bot@project.iam.gserviceaccount.com",
		Directory:      inmemory.NewDirectory(group),
		Source:         inmemory.NewSource(documents...),
	}
}

func TestCommandsRespond(t *testing.T) {
	ctx := context.Background()
	document := inmemory.NewSpreadsheet("s1", "Signups")

	tests := []struct {
		name     string
		commands *Commands
		content  string
		ok       bool
		contains []string
	}{
		{"not a command", newCommands(), "hello", false, nil},
		{"unknown command", newCommands(), "!role_bot_dance", false, nil},
		{"help", newCommands(), "!role_bot_help", true, []string{"bot@project.iam.gserviceaccount.com", "!role_bot_connections"}},
		{"connections", newCommands(document), "!role_bot_connections", true, []string{
			"Clan Alpha with Roles: everyone,Member",
			"Title: Signups, URL: memory://s1",
		}},
		{"connections without sheets", newCommands(), " !role_bot_connections ", true, []string{
			"No spreadsheets available. Please share the spreadsheet with the service account: bot@project.iam.gserviceaccount.com",
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reply, ok, err := test.commands.Respond(ctx, test.content)
			if err != nil {
				t.Fatalf("Respond: %v", err)
			}
			if ok != test.ok {
				t.Fatalf("ok = %v, want %v", ok, test.ok)
			}
			for _, want := range test.contains {
				if !strings.Contains(reply, want) {
					t.Errorf("reply missing %q:\n%s", want, reply)
				}
			}
		})
	}
}

func TestCommandsCustomPrefix(t *testing.T) {
	commands := newCommands()
	commands.Prefix = "?sync "
	if _, ok, _ := commands.Respond(context.Background(), "!role_bot_help"); ok {
		t.Error("default prefix accepted with a custom prefix configured")
	}
	reply, ok, _ := commands.Respond(context.Background(), "?sync help")
	if !ok || !strings.Contains(reply, "?sync connections") {
		t.Errorf("custom prefix help = %q, %v", reply, ok)
	}
}

type recordingSender struct {
	replies []string
}

func (r *recordingSender) ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	r.replies = append(r.replies, content)
	return &discordgo.Message{}, nil
}

func TestHandleMessageIgnoresSelf(t *testing.T) {
	sender := &recordingSender{}
	commands := newCommands()
	message := &discordgo.Message{ID: "m1", ChannelID: "c1", Content: "!role_bot_help", Author: &discordgo.User{ID: "bot"}}

	handleMessage(context.Background(), sender, commands, "bot", message, testutil.Logger())
	if len(sender.replies) != 0 {
		t.Errorf("bot answered itself: %v", sender.replies)
	}

	message.Author = &discordgo.User{ID: "human"}
	handleMessage(context.Background(), sender, commands, "bot", message, testutil.Logger())
	if len(sender.replies) != 1 {
		t.Errorf("got %d replies, want 1", len(sender.replies))
	}
}

func TestSplitMessage(t *testing.T) {
	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 50)

	chunks := splitMessage(text)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for index, chunk := range chunks {
		if len(chunk) > maxMessageLength {
			t.Errorf("chunk %d has %d bytes", index, len(chunk))
		}
	}
	if strings.Join(chunks, "\n") != text {
		t.Error("chunks do not reassemble the text")
	}
	if got := splitMessage(""); len(got) != 0 {
		t.Errorf("splitMessage(\"\") = %v", got)
	}
}

func TestSplitMessageKeepsCharactersWhole(t *testing.T) {
	text := "x" + strings.Repeat("é", 1500)

	chunks := splitMessage(text)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for index, chunk := range chunks {
		if len(chunk) > maxMessageLength {
			t.Errorf("chunk %d has %d bytes", index, len(chunk))
		}
		if !utf8.ValidString(chunk) {
			t.Errorf("chunk %d is not valid UTF-8", index)
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("chunks do not reassemble the text")
	}
}
