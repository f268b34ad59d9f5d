// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord adapts a Discord bot account to the community
// interfaces. Guilds are groups, roles are tags.
//
// [Directory] talks to the REST API only and can be used without a
// gateway connection. [Session] adds the gateway: it tracks readiness
// for the tick runner and answers the chat commands handled by
// [Commands].
//
// The bot needs the Server Members privileged intent to page through
// guild members, the Manage Roles permission, and a role positioned
// above every role it assigns.
package discord
