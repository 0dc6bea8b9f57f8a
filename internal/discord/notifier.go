package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/rarity"
)

var announcePrinter = message.NewPrinter(language.English)

// Notifier posts chest drop announcements to guild channels.
type Notifier struct {
	session *discordgo.Session
	prefix  string
}

// NewNotifier creates a Notifier. prefix is the command prefix shown in
// the open hint.
func NewNotifier(session *discordgo.Session, prefix string) *Notifier {
	return &Notifier{session: session, prefix: prefix}
}

// AnnounceChest posts the drop message, attaching the chest image when
// one was generated.
func (n *Notifier) AnnounceChest(ctx context.Context, channelID string, chest *domain.Chest) error {
	content := fmt.Sprintf(
		"🎁 **A loot chest drops!**\n"+
			"**ID:** `%s`\n"+
			"**Rarity:** %s %s *(Score: %s)*\n"+
			"**Description:** %s\n\n"+
			"Use `%sopen %s` to open it (costs 1 key).",
		chest.ID,
		rarity.ColorFor(chest.Rarity), chest.Rarity,
		announcePrinter.Sprintf("%d", chest.Score),
		chest.Description,
		n.prefix, chest.ID,
	)

	send := &discordgo.MessageSend{Content: content}
	if chest.ImageRef != "" {
		if f, err := os.Open(chest.ImageRef); err == nil {
			defer f.Close()
			send.Files = []*discordgo.File{{Name: filepath.Base(chest.ImageRef), Reader: f}}
		}
	}

	_, err := n.session.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return fmt.Errorf("failed to announce chest %s: %w", chest.ID, err)
	}
	return nil
}
