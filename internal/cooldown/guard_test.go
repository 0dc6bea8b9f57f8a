package cooldown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/LootChestBot_Go/internal/domain"
)

func TestConcurrentOpensOnlyOneProceeds(t *testing.T) {
	g := NewGuard(time.Minute)
	ctx := context.Background()

	entered := make(chan struct{})
	finish := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = g.Run(ctx, "u1", func(context.Context) error {
			close(entered)
			<-finish
			return nil
		})
	}()

	<-entered

	// Second attempt while the first is in flight is rejected immediately.
	err := g.Run(ctx, "u1", func(context.Context) error {
		t.Error("second open must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrOpenInFlight)

	close(finish)
	wg.Wait()
	require.NoError(t, firstErr)
}

func TestLockReleasedAfterFailure(t *testing.T) {
	now := time.Now()
	g := NewGuardWithClock(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	boom := errors.New("generator exploded")
	err := g.Run(ctx, "u1", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	// Lock must be free again; only the cooldown stands in the way.
	now = now.Add(61 * time.Second)
	err = g.Run(ctx, "u1", func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestCooldownEnforced(t *testing.T) {
	now := time.Now()
	g := NewGuardWithClock(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, g.Run(ctx, "u1", func(context.Context) error { return nil }))

	now = now.Add(30 * time.Second)
	err := g.Run(ctx, "u1", func(context.Context) error {
		t.Error("must not run during cooldown")
		return nil
	})

	var onCooldown ErrOnCooldown
	require.ErrorAs(t, err, &onCooldown)
	assert.Equal(t, 30*time.Second, onCooldown.Remaining)

	now = now.Add(31 * time.Second)
	assert.NoError(t, g.Run(ctx, "u1", func(context.Context) error { return nil }))
}

func TestCooldownIsPerUser(t *testing.T) {
	now := time.Now()
	g := NewGuardWithClock(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, g.Run(ctx, "u1", func(context.Context) error { return nil }))
	assert.NoError(t, g.Run(ctx, "u2", func(context.Context) error { return nil }))
}

func TestReset(t *testing.T) {
	now := time.Now()
	g := NewGuardWithClock(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, g.Run(ctx, "u1", func(context.Context) error { return nil }))
	g.Reset("u1")
	assert.NoError(t, g.Run(ctx, "u1", func(context.Context) error { return nil }))
}

func TestErrOnCooldownIs(t *testing.T) {
	err := ErrOnCooldown{Remaining: 5 * time.Second}
	assert.True(t, errors.Is(err, ErrOnCooldown{}))
	assert.Contains(t, err.Error(), "5s remaining")
}
