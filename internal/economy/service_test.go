package economy

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/ledger"
)

func newTestService(t *testing.T) (Service, *ledger.Store) {
	t.Helper()
	st, err := ledger.Open(filepath.Join(t.TempDir(), "snapshot.json"))
	require.NoError(t, err)
	return NewService(st), st
}

func seedInventory(t *testing.T, st *ledger.Store, userID string, rarities ...string) {
	t.Helper()
	err := st.Update(context.Background(), func(snap *ledger.Snapshot) error {
		for i, r := range rarities {
			snap.Inventories[userID] = append(snap.Inventories[userID], domain.InventoryEntry{
				LootItem:      domain.LootItem{Ordinal: i + 1, Name: fmt.Sprintf("item-%d", i+1), Rarity: r, Score: 10000},
				SourceChestID: fmt.Sprintf("chest-%d", i+1),
			})
		}
		return nil
	})
	require.NoError(t, err)
}

func TestKeysDefaultsToThreeExactlyOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	keys, err := svc.Keys(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, 3, keys)

	require.NoError(t, svc.SpendKeys(ctx, "newcomer", 2))

	keys, err = svc.Keys(ctx, "newcomer")
	require.NoError(t, err)
	assert.Equal(t, 1, keys, "second touch must not reset the default")
}

func TestSpendKeysInsufficientLeavesBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SpendKeys(ctx, "u1", 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientKeys)

	keys, err := svc.Keys(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, keys)
}

func TestSpendKeysRejectsNonPositive(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.SpendKeys(context.Background(), "u1", 0), domain.ErrInvalidInput)
}

func TestGrantKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantKeys(ctx, "u1", 10))
	keys, err := svc.Keys(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 13, keys)
}

func TestRedeemKeys(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		amount     int
		wantErr    error
		wantPoints int
		wantKeys   int
	}{
		{"insufficient points", 150, 2, domain.ErrInsufficientPoints, 150, 3},
		{"exact redemption", 250, 2, nil, 50, 5},
		{"zero amount", 500, 0, domain.ErrInvalidInput, 500, 3},
		{"negative amount", 500, -1, domain.ErrInvalidInput, 500, 3},
		// A cost that wraps negative must not pass the balance check.
		{"overflowing amount", 0, math.MaxInt/PointsPerKey + 1, domain.ErrInvalidInput, 0, 3},
		{"largest safe amount still checked", 0, math.MaxInt / PointsPerKey, domain.ErrInsufficientPoints, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := newTestService(t)
			ctx := context.Background()
			require.NoError(t, st.Update(ctx, func(snap *ledger.Snapshot) error {
				snap.EnsureUser("u1").PointBalance = tt.points
				return nil
			}))

			err := svc.RedeemKeys(ctx, "u1", tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			points, err := svc.Points(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPoints, points)

			keys, err := svc.Keys(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantKeys, keys)
		})
	}
}

func TestScrapRemovesOneEntry(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedInventory(t, st, "u1", "Common", "Rare", "Epic")

	result, err := svc.Scrap(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, "Rare", result.Rarity)
	assert.Equal(t, 40, result.Points)

	inv, err := svc.Inventory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, inv, 2)
	assert.Equal(t, "Common", inv[0].Rarity)
	assert.Equal(t, "Epic", inv[1].Rarity)

	points, err := svc.Points(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 40, points)
}

func TestScrapOutOfRange(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedInventory(t, st, "u1", "Common")

	_, err := svc.Scrap(ctx, "u1", 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = svc.Scrap(ctx, "u1", 2)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	inv, err := svc.Inventory(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, inv, 1)
}

func TestScrapAll(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedInventory(t, st, "u1", "Common", "Rare", "Common")

	result, err := svc.ScrapAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 60, result.TotalPoints, "2*10 + 40")

	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "Common", result.Breakdown[0].Rarity, "most frequent first")
	assert.Equal(t, 2, result.Breakdown[0].Count)
	assert.Equal(t, "Rare", result.Breakdown[1].Rarity)

	inv, err := svc.Inventory(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, inv)

	points, err := svc.Points(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 60, points)
}

func TestScrapAllEmptyInventory(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ScrapAll(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrEmptyInventory)
}

func TestScrapUnknownRarityDegrades(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	seedInventory(t, st, "u1", "Corrupted")

	result, err := svc.Scrap(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Points)
}

func TestLeaderboardSortedAndTruncated(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(snap *ledger.Snapshot) error {
		for i := 0; i < 25; i++ {
			snap.Community = append(snap.Community, domain.CommunityRecord{
				InventoryEntry: domain.InventoryEntry{
					LootItem: domain.LootItem{Name: fmt.Sprintf("item-%d", i), Score: (i * 37) % 100},
				},
				Username: fmt.Sprintf("user-%d", i),
			})
		}
		return nil
	}))

	board, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, LeaderboardSize)
	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].Score, board[i].Score)
	}
}

func TestLeaderboardStableTies(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(snap *ledger.Snapshot) error {
		for _, name := range []string{"first", "second", "third"} {
			snap.Community = append(snap.Community, domain.CommunityRecord{
				InventoryEntry: domain.InventoryEntry{LootItem: domain.LootItem{Name: name, Score: 500}},
				Username:       name,
			})
		}
		return nil
	}))

	board, err := svc.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "first", board[0].Username)
	assert.Equal(t, "second", board[1].Username)
	assert.Equal(t, "third", board[2].Username)
}
