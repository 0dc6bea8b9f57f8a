package handler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/osse101/LootChestBot_Go/internal/chest"
	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/economy"
	"github.com/osse101/LootChestBot_Go/internal/rarity"
)

const (
	msgGenericError = "⚠️ Something went wrong. Please try again later."
	msgNoPermission = "🚫 You don't have permission to use that command."
	pointsPerKey    = economy.PointsPerKey
)

// scorePrinter renders scores with thousands separators (99,483).
var scorePrinter = message.NewPrinter(language.English)

func formatScore(n int) string {
	return scorePrinter.Sprintf("%d", n)
}

func colorFor(tier string) string {
	return rarity.ColorFor(tier)
}

func itemLine(item domain.LootItem) string {
	return fmt.Sprintf("%s **%d. \"%s\"** (Rarity: %s | Score: %s)\n> %s",
		colorFor(item.Rarity), item.Ordinal, item.Name, item.Rarity,
		formatScore(item.Score), item.Description)
}

// openReply lists a chest's contents and attaches any item images that
// made it to disk.
func openReply(result *chest.OpenResult) *Reply {
	var b strings.Builder
	if result.AlreadyOpened {
		b.WriteString("📦 This chest was already opened. Its contents:\n")
	} else {
		fmt.Fprintf(&b, "📦 You opened the %s **%s** chest! Claim one item with `claim <number>`:\n",
			colorFor(result.Chest.Rarity), result.Chest.Rarity)
	}
	for _, item := range result.Items {
		b.WriteString(itemLine(item))
		b.WriteString("\n")
	}

	reply := &Reply{Content: strings.TrimRight(b.String(), "\n")}
	for _, item := range result.Items {
		if f, ok := attachment(item.ImageRef); ok {
			reply.Files = append(reply.Files, f)
		}
	}
	return reply
}

// attachment turns an on-disk image reference into a sendable file.
// Missing files are skipped silently; image generation is best effort.
func attachment(ref string) (File, bool) {
	if ref == "" {
		return File{}, false
	}
	if _, err := os.Stat(ref); err != nil {
		return File{}, false
	}
	return File{Name: filepath.Base(ref), Path: ref}, true
}

func inventoryReply(header string, entries []domain.InventoryEntry) *Reply {
	if len(entries) == 0 {
		return &Reply{Content: "🧾 The inventory is empty."}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s **\"%s\"** (Rarity: %s | Score: %s)\n",
			i+1, colorFor(entry.Rarity), entry.Name, entry.Rarity, formatScore(entry.Score))
	}
	return &Reply{Content: strings.TrimRight(b.String(), "\n")}
}

func scrapAllSummary(result *economy.ScrapAllResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "♻️ Scrapped your whole inventory for **%d** point(s):\n", result.TotalPoints)
	for _, rc := range result.Breakdown {
		fmt.Fprintf(&b, "%s %s × %d → %d point(s)\n", colorFor(rc.Rarity), rc.Rarity, rc.Count, rc.Points)
	}
	return strings.TrimRight(b.String(), "\n")
}

func leaderboardSummary(records []domain.CommunityRecord) string {
	var b strings.Builder
	b.WriteString("👥 **Community Top Loot:**\n")
	for i, rec := range records {
		fmt.Fprintf(&b, "%d. %s **\"%s\"** (Rarity: %s | Score: %s) — %s\n",
			i+1, colorFor(rec.Rarity), rec.Name, rec.Rarity, formatScore(rec.Score), rec.Username)
	}
	return strings.TrimRight(b.String(), "\n")
}

// helpText lists the commands the caller is allowed to run.
func (d *Dispatcher) helpText(ctx context.Context, msg *Message) string {
	var b strings.Builder
	b.WriteString("📖 **Commands:**\n")
	for _, cmd := range d.commands {
		if cmd.access != accessEveryone && !d.hasAccess(ctx, cmd, msg) {
			continue
		}
		fmt.Fprintf(&b, "`%s%s` — %s\n", d.prefix, cmd.usage, cmd.summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
