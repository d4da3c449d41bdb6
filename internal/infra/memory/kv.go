// Package memory is a process-local stand-in for redis, used by the
// "memory" storage driver and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/ports/repository"
)

var _ repository.KV = (*KV)(nil)

type entry struct {
	value     string
	expiresAt time.Time // zero = never
}

// KV is a mutex-guarded map with optional per-key expiry.
type KV struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewKV() *KV {
	return &KV{data: make(map[string]entry), now: time.Now}
}

func (m *KV) Ping(ctx context.Context) error { return ctx.Err() }

func (m *KV) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	e := entry{value: s}
	if expiration > 0 {
		e.expiresAt = m.now().Add(expiration)
	}

	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()
	return nil
}

func (m *KV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || (!e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)) {
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (m *KV) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *KV) Close() error { return nil }
