package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/osse101/LootChestBot_Go/internal/domain"
	"github.com/osse101/LootChestBot_Go/internal/logger"
	"github.com/osse101/LootChestBot_Go/internal/utils"
)

// DropsPerCycle is how many spawns are planned per 24h cycle.
const DropsPerCycle = 3

// MinGap is the minimum spacing between two planned drops.
const MinGap = 30 * time.Minute

// cycleLength is the window the drops are planned into.
const cycleLength = 24 * time.Hour

// Spawner is the slice of the chest service the scheduler drives.
type Spawner interface {
	Spawn(ctx context.Context, guildID string) (*domain.Chest, error)
	RegisteredGuilds(ctx context.Context) ([]string, error)
}

// DropScheduler plans a fresh cycle of random drop times each day and
// spawns a chest into every registered guild at each one. The planned
// times are inspectable and the clock injectable, so cycles can be tested
// without waiting on wall time.
type DropScheduler struct {
	spawner Spawner
	now     func() time.Time
	timerC  func(time.Duration) <-chan time.Time
	randInt func(min, max int) int

	mu   sync.Mutex
	next []time.Time

	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a DropScheduler backed by the wall clock.
func New(spawner Spawner) *DropScheduler {
	return &DropScheduler{
		spawner: spawner,
		now:     time.Now,
		timerC: func(d time.Duration) <-chan time.Time {
			return time.After(d)
		},
		randInt: utils.RandomInt,
		quit:    make(chan struct{}),
	}
}

// NewWithClock creates a DropScheduler with injected time sources for tests.
func NewWithClock(spawner Spawner, now func() time.Time, timerC func(time.Duration) <-chan time.Time, randInt func(min, max int) int) *DropScheduler {
	s := New(spawner)
	s.now = now
	s.timerC = timerC
	s.randInt = randInt
	return s
}

// Start launches the scheduling loop.
func (s *DropScheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run()
	}()
}

// Stop halts the loop and waits for an in-flight spawn round to finish.
func (s *DropScheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}

// NextFireTimes returns the remaining planned drop times of the current cycle.
func (s *DropScheduler) NextFireTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Time, len(s.next))
	copy(out, s.next)
	return out
}

func (s *DropScheduler) run() {
	for {
		times := s.planCycle()
		s.setNext(times)

		for i, fireAt := range times {
			d := fireAt.Sub(s.now())
			if d < 0 {
				d = 0
			}
			select {
			case <-s.timerC(d):
				s.fire()
				s.setNext(times[i+1:])
			case <-s.quit:
				return
			}
		}
	}
}

func (s *DropScheduler) setNext(times []time.Time) {
	s.mu.Lock()
	s.next = append([]time.Time(nil), times...)
	s.mu.Unlock()
}

// planCycle draws DropsPerCycle random offsets within the next cycle,
// redrawing until every pair is at least MinGap apart, and returns them
// in firing order.
func (s *DropScheduler) planCycle() []time.Time {
	base := s.now()
	for {
		offsets := make([]time.Duration, DropsPerCycle)
		for i := range offsets {
			offsets[i] = time.Duration(s.randInt(0, int(cycleLength/time.Minute)-1)) * time.Minute
		}
		sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

		ok := true
		for i := 1; i < len(offsets); i++ {
			if offsets[i]-offsets[i-1] < MinGap {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		times := make([]time.Time, len(offsets))
		for i, off := range offsets {
			times[i] = base.Add(off)
		}
		return times
	}
}

// fire spawns a chest for every guild with a registered drop channel.
func (s *DropScheduler) fire() {
	ctx := logger.WithRequestID(context.Background(), logger.GenerateRequestID())
	log := logger.FromContext(ctx)

	guilds, err := s.spawner.RegisteredGuilds(ctx)
	if err != nil {
		log.Error("Failed to list registered guilds", "error", err)
		return
	}
	if len(guilds) == 0 {
		log.Info("Scheduled drop skipped, no registered guilds")
		return
	}

	for _, guildID := range guilds {
		if _, err := s.spawner.Spawn(ctx, guildID); err != nil {
			log.Error("Scheduled spawn failed", "guild", guildID, "error", err)
		}
	}
	log.Info("Scheduled drop complete", "guilds", len(guilds))
}
