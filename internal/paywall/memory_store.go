package paywall

import (
	"context"
	"sync"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// MemoryStore keeps unlock state in-process. It is the default backend for
// the CLI, where unlock state only needs to live as long as the run.
type MemoryStore struct {
	mu       sync.RWMutex
	unlocked map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{unlocked: make(map[string]struct{})}
}

func (m *MemoryStore) IsUnlocked(_ context.Context, reportID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.unlocked[reportID]
	return ok, nil
}

func (m *MemoryStore) Unlock(_ context.Context, reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked[reportID] = struct{}{}
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func init() {
	RegisterBackend("memory", func(Config, interfaces.Logger) (Store, error) {
		return NewMemoryStore(), nil
	})
}
