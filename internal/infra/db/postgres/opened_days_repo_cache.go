package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/domain/ports/repository"
	"advent-calendar/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.OpenedDaysRepository = (*openedDaysCacheDecorator)(nil)

// openedDaysSource is the strict side of OpenedDaysRepo.
type openedDaysSource interface {
	Get(ctx context.Context, visitorID string) (model.OpenedSet, error)
	Save(ctx context.Context, visitorID string, days model.OpenedSet) error
}

type openedDaysCacheDecorator struct {
	inner  openedDaysSource
	cache  repository.KV
	prefix string
	ttl    time.Duration
	log    *zerolog.Logger
}

// NewOpenedDaysCacheDecorator fronts the postgres repo with a read-through
// cache for Load. Get always reads postgres, so writes are never built on a
// cached copy. Only successful reads are cached.
func NewOpenedDaysCacheDecorator(inner openedDaysSource, cache repository.KV, prefix string, ttl time.Duration, logger *zerolog.Logger) repository.OpenedDaysRepository {
	l := logger.With().Str("component", "OpenedDaysCache").Logger()
	return &openedDaysCacheDecorator{inner: inner, cache: cache, prefix: prefix, ttl: ttl, log: &l}
}

func (d *openedDaysCacheDecorator) key(visitorID string) string {
	return fmt.Sprintf("%s:cache:%s", d.prefix, visitorID)
}

func (d *openedDaysCacheDecorator) cached(ctx context.Context, key string) (model.OpenedSet, bool) {
	val, err := d.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			d.log.Debug().Err(err).Msg("cache read failed")
		}
		return nil, false
	}
	set, err := model.DecodeOpenedSet([]byte(val))
	return set, err == nil
}

func (d *openedDaysCacheDecorator) Load(ctx context.Context, visitorID string) model.OpenedSet {
	key := d.key(visitorID)
	if set, ok := d.cached(ctx, key); ok {
		metrics.IncCacheRequest("opened_days", "hit")
		metrics.IncStoreLoad("postgres", "hit")
		return set
	}

	metrics.IncCacheRequest("opened_days", "miss")
	set, err := d.inner.Get(ctx, visitorID)
	if err == nil {
		if set == nil {
			set = model.NewOpenedSet()
		}
		// a Save that landed while postgres was read has already written
		// its value through; the set only grows, so keep the union
		if cur, ok := d.cached(ctx, key); ok {
			for _, day := range cur.Days() {
				set.Add(day)
			}
		}
		if ferr := d.fill(ctx, key, set); ferr != nil {
			d.log.Debug().Err(ferr).Msg("cache fill failed")
		}
	}
	return failOpen(ctx, d.log, "postgres", set, err)
}

func (d *openedDaysCacheDecorator) Get(ctx context.Context, visitorID string) (model.OpenedSet, error) {
	return d.inner.Get(ctx, visitorID)
}

// Save writes the new value through to the cache. If that write fails the
// entry is dropped instead.
func (d *openedDaysCacheDecorator) Save(ctx context.Context, visitorID string, days model.OpenedSet) error {
	if err := d.inner.Save(ctx, visitorID, days); err != nil {
		return err
	}
	key := d.key(visitorID)
	if err := d.fill(ctx, key, days); err != nil {
		d.log.Warn().Err(err).Msg("cache write-through failed; invalidating")
		if err := d.cache.Del(ctx, key); err != nil {
			d.log.Warn().Err(err).Msg("cache invalidation failed")
		}
	}
	return nil
}

func (d *openedDaysCacheDecorator) fill(ctx context.Context, key string, set model.OpenedSet) error {
	data, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return d.cache.Set(ctx, key, data, d.ttl)
}
