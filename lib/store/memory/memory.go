// Package memory implements a volatile store, cleared when the process ends.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tarancss/supply/lib/store"
)

// Memory holds the snapshot in process memory. Writers are serialized and readers get a copy taken under a read
// lock, so a fetched snapshot is never partially updated.
type Memory struct {
	mu   sync.RWMutex
	snap *store.Snapshot
	now  func() time.Time
}

// New returns an empty Memory store.
func New() *Memory {
	return &Memory{now: time.Now}
}

// Upsert saves s as the current snapshot keeping the ID of a previous one.
func (m *Memory) Upsert(_ context.Context, s store.Snapshot) (store.Snapshot, error) {
	if err := s.Check(); err != nil {
		return store.Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := s.Copy()
	c.UpdatedAt = m.now().UTC()

	if m.snap != nil {
		c.ID = m.snap.ID
	} else {
		id, err := store.NewID()
		if err != nil {
			return store.Snapshot{}, err
		}

		c.ID = id
	}

	m.snap = &c

	return c.Copy(), nil
}

// Fetch returns a copy of the current snapshot.
func (m *Memory) Fetch(_ context.Context) (store.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snap == nil {
		return store.Snapshot{}, false, nil
	}

	return m.snap.Copy(), true, nil
}

// CloseMemory drops the snapshot.
func (m *Memory) CloseMemory() error {
	m.mu.Lock()
	m.snap = nil
	m.mu.Unlock()

	return nil
}

var _ store.DB = (*Memory)(nil)
