// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bureau-foundation/rolesync/lib/community"
	"github.com/bureau-foundation/rolesync/lib/spreadsheet"
)

// DefaultCommandPrefix precedes every chat command name.
const DefaultCommandPrefix = "!role_bot_"

// maxMessageLength is Discord's limit on message content.
const maxMessageLength = 2000

// Commands answers chat commands.
type Commands struct {
	// Prefix defaults to DefaultCommandPrefix.
	Prefix string

	// ServiceAccount is the address spreadsheets must be shared with.
	ServiceAccount string

	Directory community.Directory
	Source    spreadsheet.Source
}

// Respond returns the reply to a message with the given content. ok is
// false when the content is not a command.
func (c *Commands) Respond(ctx context.Context, content string) (reply string, ok bool, err error) {
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultCommandPrefix
	}
	name, isCommand := strings.CutPrefix(strings.TrimSpace(content), prefix)
	if !isCommand {
		return "", false, nil
	}
	switch name {
	case "help":
		return c.help(prefix), true, nil
	case "connections":
		reply, err := c.connections(ctx)
		return reply, true, err
	default:
		return "", false, nil
	}
}

func (c *Commands) help(prefix string) string {
	var builder strings.Builder
	builder.WriteString("Setting up the role bot:\n")
	builder.WriteString("1. The bot needs the Server Members intent to read every member of the server, and the Manage Roles permission.\n")
	builder.WriteString("2. The bot's role must be above every role it assigns.\n")
	fmt.Fprintf(&builder, "3. Share the spreadsheet with the service account: %s\n", c.ServiceAccount)
	builder.WriteString("\nSheet layout:\n")
	builder.WriteString("1. Only one worksheet per spreadsheet is read: the first whose A1 cell reads \"Discord: <server>\" and \"Role: <role>\" on separate lines.\n")
	builder.WriteString("2. The header is row 5 and data starts on row 6.\n")
	builder.WriteString("3. There are no blank rows between filled rows.\n")
	builder.WriteString("4. Problems are reported in column L, to the right of the data.\n")
	fmt.Fprintf(&builder, "\nCheck connections to Discord servers and spreadsheets with %sconnections. It also lists the roles of each server.", prefix)
	return builder.String()
}

func (c *Commands) connections(ctx context.Context) (string, error) {
	var builder strings.Builder
	builder.WriteString("Available Discord Servers:\n")

	groups, err := c.Directory.Groups(ctx)
	if err != nil {
		return "", err
	}
	for _, group := range groups {
		tags, err := group.Tags(ctx)
		if err != nil {
			return "", err
		}
		names := make([]string, 0, len(tags))
		for _, tag := range tags {
			names = append(names, strings.ReplaceAll(tag.Name, "@", ""))
		}
		fmt.Fprintf(&builder, "%s with Roles: %s\n", group.Name(), strings.Join(names, ","))
	}

	documents, err := c.Source.Spreadsheets(ctx)
	if err != nil {
		return "", err
	}
	if len(documents) == 0 {
		fmt.Fprintf(&builder, "\nNo spreadsheets available. Please share the spreadsheet with the service account: %s", c.ServiceAccount)
		return builder.String(), nil
	}
	builder.WriteString("\nAvailable spreadsheets:\n")
	for _, document := range documents {
		fmt.Fprintf(&builder, "Title: %s, URL: %s\n", document.Title(), document.URL())
	}
	return builder.String(), nil
}

// splitMessage breaks text into chunks that fit in one message,
// preferring line boundaries and never splitting a character.
func splitMessage(text string) []string {
	var chunks []string
	for len(text) > maxMessageLength {
		cut := strings.LastIndexByte(text[:maxMessageLength], '\n')
		if cut <= 0 {
			cut = maxMessageLength
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
