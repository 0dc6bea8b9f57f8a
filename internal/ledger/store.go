package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/osse101/LootChestBot_Go/internal/domain"
)

// DescriptionHistoryLimit bounds the recent-description history kept to
// steer the generator away from repeating itself.
const DescriptionHistoryLimit = 200

// Snapshot is the whole bot state as one serializable document.
// It is written wholesale after every mutating command.
type Snapshot struct {
	Version     int                                `json:"version"`
	Chests      []*domain.Chest                    `json:"chests"`
	Users       map[string]*domain.UserEconomy     `json:"users"`
	Inventories map[string][]domain.InventoryEntry `json:"inventories"`
	Community   []domain.CommunityRecord           `json:"community"`
	Servers     domain.ServerConfig                `json:"servers"`
	History     []string                           `json:"description_history"`
	UpdatedAt   time.Time                          `json:"updated_at"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Version:     1,
		Users:       map[string]*domain.UserEconomy{},
		Inventories: map[string][]domain.InventoryEntry{},
		Servers:     domain.ServerConfig{},
	}
}

// EnsureUser returns the economy record for userID, creating it with the
// default key balance on first contact. Creation happens at most once per
// user; a later touch never resets the balances.
func (s *Snapshot) EnsureUser(userID string) *domain.UserEconomy {
	if u, ok := s.Users[userID]; ok {
		return u
	}
	u := &domain.UserEconomy{KeyBalance: domain.DefaultKeyBalance}
	s.Users[userID] = u
	return u
}

// AddDescription appends a generated description to the history, trimming
// to the newest DescriptionHistoryLimit entries.
func (s *Snapshot) AddDescription(desc string) {
	s.History = append(s.History, desc)
	if len(s.History) > DescriptionHistoryLimit {
		s.History = s.History[len(s.History)-DescriptionHistoryLimit:]
	}
}

// FindChest returns the chest with the given ID belonging to guildID, or nil.
func (s *Snapshot) FindChest(guildID, chestID string) *domain.Chest {
	for _, c := range s.Chests {
		if c.ID == chestID && c.GuildID == guildID {
			return c
		}
	}
	return nil
}

// Store owns the snapshot and its file. All access goes through View and
// Update so callers never hold a reference across the lock boundary.
type Store struct {
	mu   sync.Mutex
	snap *Snapshot
	path string
}

// Open loads the snapshot at path, creating an empty one if the file does
// not exist yet.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	st := &Store{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		st.snap = newSnapshot()
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if snap.Users == nil {
		snap.Users = map[string]*domain.UserEconomy{}
	}
	if snap.Inventories == nil {
		snap.Inventories = map[string][]domain.InventoryEntry{}
	}
	if snap.Servers == nil {
		snap.Servers = domain.ServerConfig{}
	}
	st.snap = &snap
	return st, nil
}

// Update runs fn against the snapshot under the lock and, if fn succeeds,
// persists the whole document. An error from fn leaves the file untouched
// but any in-memory changes fn already made are kept, so fn must not
// mutate before its own checks pass.
func (st *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := fn(st.snap); err != nil {
		return err
	}
	st.snap.UpdatedAt = time.Now()
	return st.flushLocked()
}

// View runs fn against the snapshot under the lock without persisting.
// fn must copy anything it wants to keep.
func (st *Store) View(fn func(*Snapshot) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st.snap)
}

// Save forces a flush of the current snapshot. Used at shutdown.
func (st *Store) Save() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.flushLocked()
}

// flushLocked writes the snapshot to a temp file in the same directory and
// renames it over the target, so a crash mid-write never leaves a torn
// document behind.
func (st *Store) flushLocked() error {
	data, err := json.MarshalIndent(st.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(st.path), filepath.Base(st.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, st.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
