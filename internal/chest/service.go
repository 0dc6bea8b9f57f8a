package chest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/economy"
	"github.com/osse101/LootChestBot_Go/internal/ledger"
	"github.com/osse101/LootChestBot_Go/internal/logger"
	"github.com/osse101/LootChestBot_Go/internal/metrics"
	"github.com/osse101/LootChestBot_Go/internal/rarity"
)

// ItemsPerChest is how many loot items a chest yields on first open.
const ItemsPerChest = 3

// OpenCost is the key price of opening a chest.
const OpenCost = 1

// GeneratedItem is the structured result the content generator returns
// for one loot item. The generator guarantees the fields are populated,
// falling back to placeholders for malformed model output.
type GeneratedItem struct {
	Name        string
	Description string
	Rarity      string
	Score       int
	ImageRef    string
}

// Generator produces chest descriptions, artwork and loot items.
// Implemented by the genai adapter; long-latency calls, so they happen
// outside the ledger lock.
type Generator interface {
	ChestDescription(ctx context.Context, rarity string, avoid []string) (string, error)
	ChestImage(ctx context.Context, rarity, description string) (string, error)
	LootItems(ctx context.Context, rarity string, count int) ([]GeneratedItem, error)
}

// Notifier announces a spawned chest to a guild's registered channel.
type Notifier interface {
	AnnounceChest(ctx context.Context, channelID string, chest *domain.Chest) error
}

// OpenResult is the outcome of an open operation.
type OpenResult struct {
	Chest         *domain.Chest
	Items         []domain.LootItem
	AlreadyOpened bool // true when the items existed before this call; no key was charged
}

// Service manages chest lifecycle: spawn, open, claim.
type Service interface {
	Spawn(ctx context.Context, guildID string) (*domain.Chest, error)
	Open(ctx context.Context, guildID, userID, chestID string) (*OpenResult, error)
	Claim(ctx context.Context, guildID, userID, username string, ordinal int) (*domain.InventoryEntry, error)
	SetChannel(ctx context.Context, guildID, channelID string) error
	RegisteredGuilds(ctx context.Context) ([]string, error)
}

type service struct {
	store    *ledger.Store
	gen      Generator
	notifier Notifier
	economy  economy.Service
	roller   *rarity.Roller
	now      func() time.Time
}

// NewService creates a chest lifecycle service.
func NewService(store *ledger.Store, gen Generator, notifier Notifier, eco economy.Service) Service {
	return &service{
		store:    store,
		gen:      gen,
		notifier: notifier,
		economy:  eco,
		roller:   rarity.New(),
		now:      time.Now,
	}
}

// Spawn rolls a new chest, generates its description and artwork, commits
// it to the ledger and announces it to the guild's registered channel.
// A delivery failure is logged but does not undo the spawn; the chest
// stays openable.
func (s *service) Spawn(ctx context.Context, guildID string) (*domain.Chest, error) {
	log := logger.FromContext(ctx)

	tier := s.roller.Roll()
	score := s.roller.ScoreFor(tier)

	var avoid []string
	err := s.store.View(func(snap *ledger.Snapshot) error {
		avoid = append(avoid, snap.History...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	desc, err := s.gen.ChestDescription(ctx, tier, avoid)
	if err != nil {
		log.Error("Chest description generation failed", "guild", guildID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	imageRef, err := s.gen.ChestImage(ctx, tier, desc)
	if err != nil {
		log.Error("Chest image generation failed", "guild", guildID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	chest := &domain.Chest{
		Rarity:      tier,
		Score:       score,
		Description: desc,
		ImageRef:    imageRef,
		GuildID:     guildID,
	}

	var channelID string
	err = s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		created := s.now()
		chest.CreatedAt = created
		chest.ID = uniqueChestID(snap, created)
		snap.Chests = append(snap.Chests, chest)
		snap.AddDescription(desc)
		channelID = snap.Servers[guildID]
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordChestSpawned(tier)
	log.Info("Chest spawned", "guild", guildID, "chest", chest.ID, "rarity", tier)

	if channelID == "" {
		log.Warn("No drop channel registered for guild", "guild", guildID)
		return chest, nil
	}
	if err := s.notifier.AnnounceChest(ctx, channelID, chest); err != nil {
		log.Error("Chest announcement failed", "guild", guildID, "channel", channelID, "error", err)
	}
	return chest, nil
}

// uniqueChestID derives an ID from the spawn time, nudging it forward on
// the rare millisecond collision.
func uniqueChestID(snap *ledger.Snapshot, created time.Time) string {
	ms := created.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		taken := false
		for _, c := range snap.Chests {
			if c.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}

// Open populates the chest's items on its first call and charges the
// caller one key, but only after generation succeeds; a generator error
// leaves both the chest and the balance untouched. Any later open is a
// no-op returning the existing items at no charge.
func (s *service) Open(ctx context.Context, guildID, userID, chestID string) (*OpenResult, error) {
	log := logger.FromContext(ctx)

	// Eligibility checks before any long-latency work.
	var tier string
	var existing []domain.LootItem
	err := s.store.View(func(snap *ledger.Snapshot) error {
		c := snap.FindChest(guildID, chestID)
		if c == nil {
			return fmt.Errorf("%w: %s", domain.ErrChestNotFound, chestID)
		}
		tier = c.Rarity
		if c.Opened() {
			existing = append(existing, c.Items...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.openResult(guildID, chestID, existing, true)
	}

	keys, err := s.economy.Keys(ctx, userID)
	if err != nil {
		return nil, err
	}
	if keys < OpenCost {
		return nil, fmt.Errorf("%w: have %d", domain.ErrInsufficientKeys, keys)
	}

	generated, err := s.gen.LootItems(ctx, tier, ItemsPerChest)
	if err != nil {
		log.Error("Loot generation failed", "chest", chestID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	// An empty batch must not reach the commit: charging for it would
	// leave the chest unopened and charge the next opener again.
	if len(generated) == 0 {
		log.Error("Loot generation returned no items", "chest", chestID)
		return nil, fmt.Errorf("%w: no items generated", domain.ErrGenerationFailed)
	}

	items := make([]domain.LootItem, 0, len(generated))
	for i, g := range generated {
		items = append(items, sanitizeItem(g, i+1))
	}

	// Commit: re-verify under the lock, then populate items and charge in
	// one step. If another user's open won the race, keep their items and
	// treat this call as a free re-open.
	raced := false
	err = s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		c := snap.FindChest(guildID, chestID)
		if c == nil {
			return fmt.Errorf("%w: %s", domain.ErrChestNotFound, chestID)
		}
		if c.Opened() {
			raced = true
			items = append([]domain.LootItem(nil), c.Items...)
			return nil
		}

		u := snap.EnsureUser(userID)
		if u.KeyBalance < OpenCost {
			return fmt.Errorf("%w: have %d", domain.ErrInsufficientKeys, u.KeyBalance)
		}
		u.KeyBalance -= OpenCost
		c.Items = items
		c.Claimants = []string{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if raced {
		return s.openResult(guildID, chestID, items, true)
	}

	metrics.RecordChestOpened()
	metrics.RecordKeysSpent(OpenCost)
	log.Info("Chest opened", "chest", chestID, "user", userID, "items", len(items))
	return s.openResult(guildID, chestID, items, false)
}

func (s *service) openResult(guildID, chestID string, items []domain.LootItem, already bool) (*OpenResult, error) {
	var c domain.Chest
	err := s.store.View(func(snap *ledger.Snapshot) error {
		found := snap.FindChest(guildID, chestID)
		if found == nil {
			return fmt.Errorf("%w: %s", domain.ErrChestNotFound, chestID)
		}
		c = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OpenResult{Chest: &c, Items: items, AlreadyOpened: already}, nil
}

// sanitizeItem guarantees every stored item has a name, description and
// score even when the generator degraded.
func sanitizeItem(g GeneratedItem, ordinal int) domain.LootItem {
	item := domain.LootItem{
		Ordinal:     ordinal,
		Name:        g.Name,
		Description: g.Description,
		Rarity:      g.Rarity,
		Score:       g.Score,
		ImageRef:    g.ImageRef,
	}
	if item.Name == "" {
		item.Name = fmt.Sprintf("Mysterious Trinket #%d", ordinal)
	}
	if item.Description == "" {
		item.Description = "An oddity that defies description."
	}
	if item.Rarity == "" {
		item.Rarity = "Common"
	}
	if item.Score <= 0 {
		item.Score = 10000
	}
	return item
}

// Claim copies one item from the most recent eligible opened chest in the
// guild into the user's inventory and records it on the community board.
// A user claims at most once per chest; the chest's own copy is never
// mutated.
func (s *service) Claim(ctx context.Context, guildID, userID, username string, ordinal int) (*domain.InventoryEntry, error) {
	var entry domain.InventoryEntry
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		snap.EnsureUser(userID)

		// Most recently spawned chest with items the user hasn't claimed from.
		var target *domain.Chest
		for i := len(snap.Chests) - 1; i >= 0; i-- {
			c := snap.Chests[i]
			if c.GuildID != guildID || !c.Opened() || c.HasClaimant(userID) {
				continue
			}
			target = c
			break
		}
		if target == nil {
			return domain.ErrChestNotEligible
		}

		// Idempotency backstop: one inventory entry per source chest.
		for _, held := range snap.Inventories[userID] {
			if held.SourceChestID == target.ID {
				return fmt.Errorf("%w: chest %s", domain.ErrAlreadyClaimed, target.ID)
			}
		}

		var item *domain.LootItem
		for i := range target.Items {
			if target.Items[i].Ordinal == ordinal {
				item = &target.Items[i]
				break
			}
		}
		if item == nil {
			return fmt.Errorf("%w: ordinal %d", domain.ErrItemNotFound, ordinal)
		}

		entry = domain.InventoryEntry{LootItem: *item, SourceChestID: target.ID}
		snap.Inventories[userID] = append(snap.Inventories[userID], entry)
		snap.Community = append(snap.Community, domain.CommunityRecord{InventoryEntry: entry, Username: username})
		target.Claimants = append(target.Claimants, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordItemsClaimed(1)
	logger.FromContext(ctx).Info("Item claimed", "user", userID, "chest", entry.SourceChestID, "item", entry.Name)
	return &entry, nil
}

// SetChannel registers the guild's drop channel. Last call wins.
func (s *service) SetChannel(ctx context.Context, guildID, channelID string) error {
	return s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		snap.Servers[guildID] = channelID
		return nil
	})
}

// RegisteredGuilds lists every guild with a drop channel, for the
// scheduled spawner.
func (s *service) RegisteredGuilds(ctx context.Context) ([]string, error) {
	var guilds []string
	err := s.store.View(func(snap *ledger.Snapshot) error {
		for guildID := range snap.Servers {
			guilds = append(guilds, guildID)
		}
		return nil
	})
	return guilds, err
}
