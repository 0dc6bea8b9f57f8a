// Package discord bridges the Discord gateway to the command dispatcher.
// It owns the session, the message-create handler, chest announcements
// and the cached role lookups; all game logic lives behind the handler.
package discord

import (
	"context"
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"

	"github.com/osse101/LootChestBot_Go/internal/handler"
	"github.com/osse101/LootChestBot_Go/internal/logger"
)

// Config holds the bot configuration
type Config struct {
	Token string
}

// Bot represents the Discord bot
type Bot struct {
	Session    *discordgo.Session
	dispatcher *handler.Dispatcher
}

// New creates a new Discord bot. The session is created here so that
// the notifier and role resolver can share it; wire the dispatcher with
// SetDispatcher before calling Start.
func New(cfg Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Bot{Session: s}, nil
}

// SetDispatcher attaches the command dispatcher. Must be called before Start.
func (b *Bot) SetDispatcher(d *handler.Dispatcher) {
	b.dispatcher = d
}

// Start opens the gateway connection and begins handling messages.
func (b *Bot) Start() error {
	b.Session.AddHandler(b.ready)
	b.Session.AddHandler(b.messageCreate)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() {
	b.Session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	logger.FromContext(context.Background()).Info("Bot is ready", "user", s.State.User.Username)
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Bots and DMs don't play.
	if b.dispatcher == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := context.Background()
	reply := b.dispatcher.Dispatch(ctx, &handler.Message{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Content:   m.Content,
	})
	if reply == nil {
		return
	}

	if err := sendReply(s, m.ChannelID, reply); err != nil {
		logger.FromContext(ctx).Error("Failed to send reply", "channel", m.ChannelID, "error", err)
	}
}

// sendReply posts a dispatcher reply, attaching any files that still
// exist on disk.
func sendReply(s *discordgo.Session, channelID string, reply *handler.Reply) error {
	send := &discordgo.MessageSend{Content: reply.Content}

	var open []*os.File
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()
	for _, file := range reply.Files {
		f, err := os.Open(file.Path)
		if err != nil {
			continue
		}
		open = append(open, f)
		send.Files = append(send.Files, &discordgo.File{Name: file.Name, Reader: f})
	}

	_, err := s.ChannelMessageSendComplex(channelID, send)
	return err
}
