package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/osse101/LootChestBot_Go/internal/chest"
	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/logger"
)

// UseDropCost is the key price of forcing a spawn with usedrop.
const UseDropCost = 5

type accessLevel int

const (
	accessEveryone accessLevel = iota
	accessDrop
	accessGrant
)

type command struct {
	name    string
	usage   string
	summary string
	access  accessLevel
	run     func(d *Dispatcher, ctx context.Context, msg *Message, args []string) (*Reply, error)
}

func commandTable() []*command {
	return []*command{
		{
			name:    "setchannel",
			usage:   "setchannel",
			summary: "Set this channel for loot drops",
			run:     (*Dispatcher).handleSetChannel,
		},
		{
			name:    "drop",
			usage:   "drop",
			summary: "Manually spawn a loot chest",
			access:  accessDrop,
			run:     (*Dispatcher).handleDrop,
		},
		{
			name:    "usedrop",
			usage:   "usedrop",
			summary: fmt.Sprintf("Spend %d keys to force a chest drop", UseDropCost),
			run:     (*Dispatcher).handleUseDrop,
		},
		{
			name:    "open",
			usage:   "open <chestId>",
			summary: "Open a chest using 1 key",
			run:     (*Dispatcher).handleOpen,
		},
		{
			name:    "claim",
			usage:   "claim <itemNumber>",
			summary: "Claim an item from an opened chest",
			run:     (*Dispatcher).handleClaim,
		},
		{
			name:    "inventory",
			usage:   "inventory",
			summary: "View your personal loot inventory",
			run:     (*Dispatcher).handleInventory,
		},
		{
			name:    "view",
			usage:   "view @user",
			summary: "View another user's inventory",
			run:     (*Dispatcher).handleView,
		},
		{
			name:    "scrap",
			usage:   "scrap <itemNumber>",
			summary: "Scrap an item for points",
			run:     (*Dispatcher).handleScrap,
		},
		{
			name:    "scrapall",
			usage:   "scrapall",
			summary: "Scrap your whole inventory for points",
			run:     (*Dispatcher).handleScrapAll,
		},
		{
			name:    "points",
			usage:   "points",
			summary: "Check your point balance",
			run:     (*Dispatcher).handlePoints,
		},
		{
			name:    "redeemkeys",
			usage:   "redeemkeys <amount>",
			summary: "Convert 100 points into a key, per key",
			run:     (*Dispatcher).handleRedeemKeys,
		},
		{
			name:    "keys",
			usage:   "keys",
			summary: "Check how many keys you have",
			run:     (*Dispatcher).handleKeys,
		},
		{
			name:    "givekeys",
			usage:   "givekeys @user <amount>",
			summary: "Grant keys to any user",
			access:  accessGrant,
			run:     (*Dispatcher).handleGiveKeys,
		},
		{
			name:    "community",
			usage:   "community",
			summary: "See the top 10 loot scores",
			run:     (*Dispatcher).handleCommunity,
		},
		{
			name:    "help",
			usage:   "help",
			summary: "List available commands",
			run:     (*Dispatcher).handleHelp,
		},
	}
}

func (d *Dispatcher) handleSetChannel(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if err := d.chests.SetChannel(ctx, msg.GuildID, msg.ChannelID); err != nil {
		return nil, err
	}
	return &Reply{Content: "✅ This channel is now set as the drop zone for this server."}, nil
}

func (d *Dispatcher) handleDrop(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	c, err := d.chests.Spawn(ctx, msg.GuildID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("💠 Dropped a %s chest (`%s`).", c.Rarity, c.ID)}, nil
}

func (d *Dispatcher) handleUseDrop(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	keys, err := d.economy.Keys(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	if keys < UseDropCost {
		return nil, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientKeys, keys, UseDropCost)
	}

	// Charge only once the spawn succeeded, mirroring open's
	// generate-then-charge rule.
	c, err := d.chests.Spawn(ctx, msg.GuildID)
	if err != nil {
		return nil, err
	}
	if err := d.economy.SpendKeys(ctx, msg.UserID, UseDropCost); err != nil {
		logger.FromContext(ctx).Error("Forced drop charge failed after spawn", "user", msg.UserID, "chest", c.ID, "error", err)
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("💠 You spent %d keys to drop a %s chest (`%s`).", UseDropCost, c.Rarity, c.ID)}, nil
}

func (d *Dispatcher) handleOpen(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 1 {
		return nil, usageError("open <chestId>")
	}
	chestID := args[0]

	var result *chest.OpenResult
	err := d.guard.Run(ctx, msg.UserID, func(ctx context.Context) error {
		var openErr error
		result, openErr = d.chests.Open(ctx, msg.GuildID, msg.UserID, chestID)
		return openErr
	})
	if err != nil {
		// A bad chest ID or an empty pocket is not a real open attempt;
		// don't burn the cooldown window on it.
		if errors.Is(err, domain.ErrChestNotFound) || errors.Is(err, domain.ErrInsufficientKeys) {
			d.guard.Reset(msg.UserID)
		}
		return nil, err
	}

	return openReply(result), nil
}

func (d *Dispatcher) handleClaim(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 1 {
		return nil, usageError("claim <itemNumber>")
	}
	ordinal, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, usageError("claim <itemNumber>")
	}

	entry, err := d.chests.Claim(ctx, msg.GuildID, msg.UserID, msg.Username, ordinal)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("✅ Claimed %s **\"%s\"**!", colorFor(entry.Rarity), entry.Name)}, nil
}

func (d *Dispatcher) handleInventory(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	entries, err := d.economy.Inventory(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	return inventoryReply("🧾 **Your Inventory:**", entries), nil
}

func (d *Dispatcher) handleView(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 1 {
		return nil, usageError("view @user")
	}
	targetID := parseMention(args[0])
	if targetID == "" {
		return nil, usageError("view @user")
	}

	entries, err := d.economy.Inventory(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return inventoryReply(fmt.Sprintf("🧾 **Inventory of <@%s>:**", targetID), entries), nil
}

func (d *Dispatcher) handleScrap(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 1 {
		return nil, usageError("scrap <itemNumber>")
	}
	ordinal, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, usageError("scrap <itemNumber>")
	}

	result, err := d.economy.Scrap(ctx, msg.UserID, ordinal)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("♻️ Scrapped %s **\"%s\"** for **%d** points.",
		colorFor(result.Rarity), result.Name, result.Points)}, nil
}

func (d *Dispatcher) handleScrapAll(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	result, err := d.economy.ScrapAll(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: scrapAllSummary(result)}, nil
}

func (d *Dispatcher) handlePoints(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	points, err := d.economy.Points(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("🎖️ You have **%d** point(s).", points)}, nil
}

func (d *Dispatcher) handleRedeemKeys(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 1 {
		return nil, usageError("redeemkeys <amount>")
	}
	amount, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, usageError("redeemkeys <amount>")
	}

	if err := d.economy.RedeemKeys(ctx, msg.UserID, amount); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("🔑 Redeemed **%d** point(s) for **%d** key(s).",
		amount*pointsPerKey, amount)}, nil
}

func (d *Dispatcher) handleKeys(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	keys, err := d.economy.Keys(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("🔑 You have **%d** key(s).", keys)}, nil
}

func (d *Dispatcher) handleGiveKeys(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	if len(args) < 2 {
		return nil, usageError("givekeys @user <amount>")
	}
	targetID := parseMention(args[0])
	amount, err := strconv.Atoi(args[1])
	if err != nil || targetID == "" {
		return nil, usageError("givekeys @user <amount>")
	}

	if err := d.economy.GrantKeys(ctx, targetID, amount); err != nil {
		return nil, err
	}
	return &Reply{Content: fmt.Sprintf("✅ Gave %d key(s) to <@%s>.", amount, targetID)}, nil
}

func (d *Dispatcher) handleCommunity(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	records, err := d.economy.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Reply{Content: "👥 No loot claimed yet."}, nil
	}
	return &Reply{Content: leaderboardSummary(records)}, nil
}

func (d *Dispatcher) handleHelp(ctx context.Context, msg *Message, args []string) (*Reply, error) {
	return &Reply{Content: d.helpText(ctx, msg)}, nil
}
