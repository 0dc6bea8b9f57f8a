package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/LootChestBot_Go/internal/domain"
)

// DefaultOpenCooldown is the minimum time between a user's open attempts.
const DefaultOpenCooldown = 60 * time.Second

// ErrOnCooldown is returned when the action is still on cooldown
type ErrOnCooldown struct {
	Remaining time.Duration
}

func (e ErrOnCooldown) Error() string {
	return fmt.Sprintf("%s: %ds remaining", domain.ErrMsgOnCooldown, int(e.Remaining.Seconds()))
}

// Is allows errors.Is() to work with ErrOnCooldown
func (e ErrOnCooldown) Is(target error) bool {
	_, ok := target.(ErrOnCooldown)
	return ok
}

// Guard serializes a user's open operations. A user holds at most one
// in-flight open; a second concurrent attempt is rejected, never queued.
// The cooldown timestamp is recorded in the same critical section as the
// lock acquisition, so a racing command observes either "locked" or
// "cooldown not elapsed" but never passes both checks twice.
type Guard struct {
	mu       sync.Mutex
	window   time.Duration
	now      func() time.Time
	lastUsed map[string]time.Time
	inFlight map[string]struct{}
}

// NewGuard creates a Guard with the given cooldown window.
func NewGuard(window time.Duration) *Guard {
	return &Guard{
		window:   window,
		now:      time.Now,
		lastUsed: make(map[string]time.Time),
		inFlight: make(map[string]struct{}),
	}
}

// NewGuardWithClock creates a Guard with an injected clock for tests.
func NewGuardWithClock(window time.Duration, now func() time.Time) *Guard {
	g := NewGuard(window)
	g.now = now
	return g
}

// Run executes fn under the user's open lock. fn may suspend on external
// collaborators; the lock is held the entire time and released regardless
// of outcome. The cooldown sticks even when fn fails, matching the
// charge-after-generate flow where a failed generation still rate-limits
// the next attempt.
func (g *Guard) Run(ctx context.Context, userID string, fn func(context.Context) error) error {
	if err := g.acquire(userID); err != nil {
		return err
	}
	defer g.release(userID)

	return fn(ctx)
}

// acquire checks the lock and cooldown atomically, then claims both.
func (g *Guard) acquire(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, held := g.inFlight[userID]; held {
		return domain.ErrOpenInFlight
	}

	now := g.now()
	if last, ok := g.lastUsed[userID]; ok {
		if elapsed := now.Sub(last); elapsed < g.window {
			return ErrOnCooldown{Remaining: g.window - elapsed}
		}
	}

	g.lastUsed[userID] = now
	g.inFlight[userID] = struct{}{}
	return nil
}

func (g *Guard) release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, userID)
}

// Reset clears a user's cooldown (admin/testing).
func (g *Guard) Reset(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.lastUsed, userID)
}
