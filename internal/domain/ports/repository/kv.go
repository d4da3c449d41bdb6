package repository

import (
	"context"
	"time"
)

// KV is the minimal key-value surface shared by the redis client and the
// in-memory store. Get returns domain.ErrNotFound for a missing key.
type KV interface {
	Ping(ctx context.Context) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Close() error
}
