package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/LootChestBot_Go/internal/domain"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	st, err := Open(path)
	require.NoError(t, err)
	return st, path
}

func TestEnsureUserDefaultsOnce(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	err := st.Update(ctx, func(s *Snapshot) error {
		u := s.EnsureUser("user1")
		assert.Equal(t, 3, u.KeyBalance)
		assert.Equal(t, 0, u.PointBalance)
		u.KeyBalance = 9
		return nil
	})
	require.NoError(t, err)

	// Second touch must not reset the balance.
	err = st.Update(ctx, func(s *Snapshot) error {
		u := s.EnsureUser("user1")
		assert.Equal(t, 9, u.KeyBalance)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	st, path := tempStore(t)
	ctx := context.Background()

	err := st.Update(ctx, func(s *Snapshot) error {
		s.Chests = append(s.Chests, &domain.Chest{ID: "123", GuildID: "g1", Rarity: "Rare"})
		s.Servers["g1"] = "chan1"
		s.EnsureUser("u1").PointBalance = 250
		return nil
	})
	require.NoError(t, err)

	reloaded, err := Open(path)
	require.NoError(t, err)

	err = reloaded.View(func(s *Snapshot) error {
		require.Len(t, s.Chests, 1)
		assert.Equal(t, "Rare", s.Chests[0].Rarity)
		assert.Equal(t, "chan1", s.Servers["g1"])
		assert.Equal(t, 250, s.Users["u1"].PointBalance)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdateErrorDoesNotPersist(t *testing.T) {
	st, path := tempStore(t)
	ctx := context.Background()

	require.NoError(t, st.Update(ctx, func(s *Snapshot) error { return nil }))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	failure := errors.New("boom")
	err = st.Update(ctx, func(s *Snapshot) error { return failure })
	assert.ErrorIs(t, err, failure)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateHonorsContextCancellation(t *testing.T) {
	st, _ := tempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := st.Update(ctx, func(s *Snapshot) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestAddDescriptionBounded(t *testing.T) {
	s := newSnapshot()
	for i := 0; i < DescriptionHistoryLimit+50; i++ {
		s.AddDescription(fmt.Sprintf("desc-%d", i))
	}

	assert.Len(t, s.History, DescriptionHistoryLimit)
	// Oldest entries roll off, newest stay.
	assert.Equal(t, "desc-50", s.History[0])
	assert.Equal(t, fmt.Sprintf("desc-%d", DescriptionHistoryLimit+49), s.History[len(s.History)-1])
}

func TestFindChestScopedToGuild(t *testing.T) {
	s := newSnapshot()
	s.Chests = append(s.Chests, &domain.Chest{ID: "c1", GuildID: "g1"})

	assert.NotNil(t, s.FindChest("g1", "c1"))
	assert.Nil(t, s.FindChest("g2", "c1"))
	assert.Nil(t, s.FindChest("g1", "nope"))
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	st, _ := tempStore(t)
	err := st.View(func(s *Snapshot) error {
		assert.Empty(t, s.Chests)
		assert.NotNil(t, s.Users)
		assert.NotNil(t, s.Servers)
		return nil
	})
	require.NoError(t, err)
}
