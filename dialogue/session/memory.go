package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MemoryStore is the default Store: a mutex-guarded map with TTL expiry.
// State is lost on restart, which matches the single-process deployment.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]*memoryEntry
}

type memoryEntry struct {
	state    *State
	expireAt time.Time
}

// NewMemoryStore creates the store and starts a background sweep that drops
// expired conversations.
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{entries: make(map[int64]*memoryEntry)}
	go ms.cleanupLoop()
	return ms
}

func (ms *MemoryStore) Save(ctx context.Context, userID int64, state *State, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	state.UpdatedAt = time.Now()
	ms.entries[userID] = &memoryEntry{
		state:    state,
		expireAt: time.Now().Add(ttl),
	}
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, userID int64) (*State, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	e, ok := ms.entries[userID]
	if !ok {
		return nil, nil
	}
	// Expired entries read as absent; the sweep removes them later so the
	// read path never needs a write lock.
	if time.Now().After(e.expireAt) {
		return nil, nil
	}
	return e.state, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, userID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, userID)
	return nil
}

func (ms *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ms.cleanup()
	}
}

func (ms *MemoryStore) cleanup() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	removed := 0
	for userID, e := range ms.entries {
		if now.After(e.expireAt) {
			delete(ms.entries, userID)
			removed++
		}
	}
	if removed > 0 {
		logrus.Debugf("[SESSION] Cleanup removed %d expired conversations", removed)
	}
}
