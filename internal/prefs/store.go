// Package prefs persists console UI preferences in a client-local key-value
// store. Values never expire.
package prefs

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/redis"
)

// Store reads and writes boolean flags. found is false when key was never set.
type Store interface {
	GetBool(ctx context.Context, key string) (value, found bool, err error)
	SetBool(ctx context.Context, key string, value bool) error
}

// Flags are stored as "1" and "0".
func encode(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func decode(s string) bool { return s == "1" || s == "true" }

// Open returns the store selected by cfg.Backend along with a close func.
func Open(cfg config.PrefsConfig, rcfg config.RedisConfig) (Store, func() error, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path), func() error { return nil }, nil
	case "memory":
		return NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		client, err := redis.NewClient(rcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("opening redis pref store: %w", err)
		}
		return NewRedisStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown prefs backend %q", cfg.Backend)
	}
}

// MemoryStore keeps flags for the life of the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) GetBool(_ context.Context, key string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return decode(v), ok, nil
}

func (m *MemoryStore) SetBool(_ context.Context, key string, value bool) error {
	m.mu.Lock()
	m.values[key] = encode(value)
	m.mu.Unlock()
	return nil
}
