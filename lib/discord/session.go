// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds the remote calls made to answer one command.
const commandTimeout = 30 * time.Second

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent

// messageSender is the subset of *discordgo.Session used for replies.
type messageSender interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Session is a gateway connection for a bot account.
type Session struct {
	session  *discordgo.Session
	commands *Commands
	logger   *slog.Logger

	ready  atomic.Bool
	selfID atomic.Pointer[string]

	// onReady, when set, runs after each Ready event.
	onReady func(*Directory)
}

// SessionConfig configures Open.
type SessionConfig struct {
	Token string

	// Commands answers chat commands. Nil disables them. A nil
	// Commands.Directory is set to the session's Directory.
	Commands *Commands

	// OnReady runs after the gateway reports ready, once per
	// (re)connection.
	OnReady func(*Directory)

	Logger *slog.Logger
}

// Open connects to the gateway.
func Open(config SessionConfig) (*Session, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("discord: token is empty")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = intents

	s := &Session{session: session, commands: config.Commands, logger: logger, onReady: config.OnReady}
	if s.commands != nil && s.commands.Directory == nil {
		s.commands.Directory = s.Directory()
	}
	session.AddHandler(s.handleReady)
	session.AddHandler(s.handleDisconnect)
	if config.Commands != nil {
		session.AddHandler(s.handleMessageCreate)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("opening discord gateway: %w", err)
	}
	return s, nil
}

// NewRESTDirectory returns a Directory that uses only the REST API,
// for one-shot commands that never open the gateway.
func NewRESTDirectory(token string, logger *slog.Logger) (*Directory, error) {
	if token == "" {
		return nil, fmt.Errorf("discord: token is empty")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return NewDirectory(session, logger), nil
}

// Directory returns a Directory sharing this session's connection.
func (s *Session) Directory() *Directory {
	return NewDirectory(s.session, s.logger)
}

// Ready reports whether the gateway connection is established.
func (s *Session) Ready() bool {
	return s.ready.Load()
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	s.ready.Store(false)
	return s.session.Close()
}

func (s *Session) handleReady(_ *discordgo.Session, event *discordgo.Ready) {
	if event.User != nil {
		id := event.User.ID
		s.selfID.Store(&id)
		s.logger.Info("discord session ready", "user", event.User.Username, "guilds", len(event.Guilds))
	}
	s.ready.Store(true)
	if s.onReady != nil {
		go s.onReady(s.Directory())
	}
}

func (s *Session) handleDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	s.ready.Store(false)
	s.logger.Warn("discord session disconnected")
}

func (s *Session) handleMessageCreate(session *discordgo.Session, event *discordgo.MessageCreate) {
	selfID := ""
	if id := s.selfID.Load(); id != nil {
		selfID = *id
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	handleMessage(ctx, session, s.commands, selfID, event.Message, s.logger)
}

// handleMessage answers message when it is a command not sent by the
// bot itself.
func handleMessage(ctx context.Context, sender messageSender, commands *Commands, selfID string, message *discordgo.Message, logger *slog.Logger) {
	if message == nil || message.Author == nil || message.Author.ID == selfID {
		return
	}
	reply, ok, err := commands.Respond(ctx, message.Content)
	if !ok {
		return
	}
	logger = logger.With("channel", message.ChannelID, "author", message.Author.Username)
	if err != nil {
		logger.Error("answering chat command failed", "command", message.Content, "error", err)
		reply = "Something went wrong while answering this command. Check the bot logs."
	}
	for _, chunk := range splitMessage(reply) {
		if _, err := sender.ChannelMessageSendReply(message.ChannelID, chunk, message.Reference(), discordgo.WithContext(ctx)); err != nil {
			logger.Error("sending chat reply failed", "error", err)
			return
		}
	}
}
