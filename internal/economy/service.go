package economy

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/ledger"
	"github.com/osse101/LootChestBot_Go/internal/logger"
	"github.com/osse101/LootChestBot_Go/internal/metrics"
	"github.com/osse101/LootChestBot_Go/internal/rarity"
)

// PointsPerKey is the fixed redemption exchange rate.
const PointsPerKey = 100

// LeaderboardSize caps the community leaderboard length.
const LeaderboardSize = 10

// RarityCount is one row of a scrap-all breakdown.
type RarityCount struct {
	Rarity string
	Count  int
	Points int
}

// ScrapResult describes a single scrapped item.
type ScrapResult struct {
	Name   string
	Rarity string
	Points int
}

// ScrapAllResult describes emptying a whole inventory.
type ScrapAllResult struct {
	TotalPoints int
	Breakdown   []RarityCount // most frequent rarity first
}

// Service defines the keys/points economy operations
type Service interface {
	Keys(ctx context.Context, userID string) (int, error)
	Points(ctx context.Context, userID string) (int, error)
	SpendKeys(ctx context.Context, userID string, n int) error
	GrantKeys(ctx context.Context, userID string, n int) error
	RedeemKeys(ctx context.Context, userID string, amount int) error
	Inventory(ctx context.Context, userID string) ([]domain.InventoryEntry, error)
	Scrap(ctx context.Context, userID string, ordinal int) (*ScrapResult, error)
	ScrapAll(ctx context.Context, userID string) (*ScrapAllResult, error)
	Leaderboard(ctx context.Context) ([]domain.CommunityRecord, error)
}

type service struct {
	store *ledger.Store
}

// NewService creates a new economy service backed by the ledger store.
func NewService(store *ledger.Store) Service {
	return &service{store: store}
}

// Keys returns the user's key balance, initializing a first-contact user
// to the default balance.
func (s *service) Keys(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		balance = snap.EnsureUser(userID).KeyBalance
		return nil
	})
	return balance, err
}

func (s *service) Points(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		balance = snap.EnsureUser(userID).PointBalance
		return nil
	})
	return balance, err
}

// SpendKeys decrements the balance, failing without mutation when it
// would go negative.
func (s *service) SpendKeys(ctx context.Context, userID string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: spend amount must be positive", domain.ErrInvalidInput)
	}
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		u := snap.EnsureUser(userID)
		if u.KeyBalance < n {
			return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientKeys, u.KeyBalance, n)
		}
		u.KeyBalance -= n
		return nil
	})
	if err == nil {
		metrics.RecordKeysSpent(n)
	}
	return err
}

func (s *service) GrantKeys(ctx context.Context, userID string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: grant amount must be positive", domain.ErrInvalidInput)
	}
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		snap.EnsureUser(userID).KeyBalance += n
		return nil
	})
	if err == nil {
		metrics.RecordKeysGranted(n)
	}
	return err
}

// RedeemKeys converts points into keys at the fixed rate. Both balances
// move in one update or not at all.
func (s *service) RedeemKeys(ctx context.Context, userID string, amount int) error {
	if amount < 1 {
		return fmt.Errorf("%w: redeem amount must be positive", domain.ErrInvalidInput)
	}
	// An amount large enough to overflow the cost would wrap negative and
	// slip past the balance check.
	if amount > math.MaxInt/PointsPerKey {
		return fmt.Errorf("%w: redeem amount too large", domain.ErrInvalidInput)
	}
	cost := amount * PointsPerKey
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		u := snap.EnsureUser(userID)
		if u.PointBalance < cost {
			return fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientPoints, u.PointBalance, cost)
		}
		u.PointBalance -= cost
		u.KeyBalance += amount
		return nil
	})
	if err == nil {
		logger.FromContext(ctx).Info("Keys redeemed", "user", userID, "keys", amount, "points", cost)
		metrics.RecordKeysGranted(amount)
	}
	return err
}

func (s *service) Inventory(ctx context.Context, userID string) ([]domain.InventoryEntry, error) {
	var entries []domain.InventoryEntry
	err := s.store.View(func(snap *ledger.Snapshot) error {
		entries = append(entries, snap.Inventories[userID]...)
		return nil
	})
	return entries, err
}

// Scrap destroys one inventory entry by 1-based position and credits its
// rarity's scrap value.
func (s *service) Scrap(ctx context.Context, userID string, ordinal int) (*ScrapResult, error) {
	var result ScrapResult
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		inv := snap.Inventories[userID]
		if ordinal < 1 || ordinal > len(inv) {
			return fmt.Errorf("%w: position %d", domain.ErrItemNotFound, ordinal)
		}

		entry := inv[ordinal-1]
		points := rarity.ScrapValueFor(entry.Rarity)
		snap.Inventories[userID] = append(inv[:ordinal-1], inv[ordinal:]...)
		snap.EnsureUser(userID).PointBalance += points

		result = ScrapResult{Name: entry.Name, Rarity: entry.Rarity, Points: points}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordItemsScrapped(1)
	return &result, nil
}

// ScrapAll empties the inventory in one step, crediting the summed scrap
// value and reporting a per-rarity breakdown, most frequent rarity first.
func (s *service) ScrapAll(ctx context.Context, userID string) (*ScrapAllResult, error) {
	var result ScrapAllResult
	err := s.store.Update(ctx, func(snap *ledger.Snapshot) error {
		inv := snap.Inventories[userID]
		if len(inv) == 0 {
			return domain.ErrEmptyInventory
		}

		byRarity := map[string]*RarityCount{}
		order := []string{}
		for _, entry := range inv {
			points := rarity.ScrapValueFor(entry.Rarity)
			result.TotalPoints += points
			rc, ok := byRarity[entry.Rarity]
			if !ok {
				rc = &RarityCount{Rarity: entry.Rarity}
				byRarity[entry.Rarity] = rc
				order = append(order, entry.Rarity)
			}
			rc.Count++
			rc.Points += points
		}

		sort.SliceStable(order, func(i, j int) bool {
			return byRarity[order[i]].Count > byRarity[order[j]].Count
		})
		for _, r := range order {
			result.Breakdown = append(result.Breakdown, *byRarity[r])
		}

		scrapped := len(inv)
		delete(snap.Inventories, userID)
		snap.EnsureUser(userID).PointBalance += result.TotalPoints

		logger.FromContext(ctx).Info("Inventory scrapped", "user", userID, "items", scrapped, "points", result.TotalPoints)
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordItemsScrapped(countItems(result.Breakdown))
	return &result, nil
}

func countItems(breakdown []RarityCount) int {
	n := 0
	for _, rc := range breakdown {
		n += rc.Count
	}
	return n
}

// Leaderboard returns the top community claims by score, descending,
// capped at LeaderboardSize. Ties keep their claim order.
func (s *service) Leaderboard(ctx context.Context) ([]domain.CommunityRecord, error) {
	var records []domain.CommunityRecord
	err := s.store.View(func(snap *ledger.Snapshot) error {
		records = append(records, snap.Community...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	if len(records) > LeaderboardSize {
		records = records[:LeaderboardSize]
	}
	return records, nil
}
