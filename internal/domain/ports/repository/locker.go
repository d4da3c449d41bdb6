package repository

import (
	"context"
	"time"
)

// Locker serialises read-modify-write cycles on one key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
