package paywall

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
)

// Store persists which reports have been unlocked. Keys are report ids; a
// report id is deterministic for its (analyzer, url, startedAt) triple, so
// unlock state survives re-rendering the same report.
type Store interface {
	// IsUnlocked reports whether the gated sections of reportID are paid for.
	IsUnlocked(ctx context.Context, reportID string) (bool, error)

	// Unlock marks reportID as paid. Unlocking twice is not an error.
	Unlock(ctx context.Context, reportID string) error

	Close() error
}

// Config selects and parameterizes a store backend.
type Config struct {
	// Backend names a registered store backend. Empty selects "memory".
	Backend string `yaml:"backend"`

	// Path is the storage directory for file-backed stores.
	Path string `yaml:"path"`

	// RedisAddr and RedisDB configure the redis backend.
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

// StoreConstructor builds a Store from config.
type StoreConstructor func(cfg Config, logger interfaces.Logger) (Store, error)

var (
	mu       sync.RWMutex
	backends = map[string]StoreConstructor{}
)

// RegisterBackend registers a named store constructor. Registering the same
// name twice overwrites the previous constructor.
func RegisterBackend(name string, ctor StoreConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	backends[strings.ToLower(name)] = ctor
}

// NewStore constructs the configured store backend.
func NewStore(cfg Config, logger interfaces.Logger) (Store, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if name == "" {
		name = "memory"
	}
	mu.RLock()
	ctor, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("paywall: store backend %q not registered", name)
	}
	store, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("paywall: constructing %q store: %w", name, err)
	}
	if store == nil {
		return nil, errors.New("paywall: store constructor returned nil")
	}
	return store, nil
}
