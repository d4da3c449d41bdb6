//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"advent-calendar/internal/calendar"
	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/domain/ports/repository"
	"advent-calendar/internal/infra/i18n"
	"advent-calendar/internal/infra/memory"
	red "advent-calendar/internal/infra/redis"
	"advent-calendar/internal/usecase"

	"github.com/rs/zerolog"
)

func newLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

var testOffers = calendar.Offers{
	1: "Today we will be launching fireworks 🎆",
	2: "Today we're sliding down the hill and sipping mulled wine!🍷",
	3: "Time to test the reins",
	4: "A nurse will drop by",
	5: "We're making mulled wine and listening to music",
	6: "Sixth",
	7: "Seventh",
}

func testModeSettings(day int) calendar.Settings {
	return calendar.Settings{Year: 2026, Month: time.January, Mode: calendar.ModeTest, TestDay: day, Location: time.UTC}
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	return tr
}

var errFlaky = errors.New("i/o timeout")

// flakyKV fails the next n reads, like a redis that timed out.
type flakyKV struct {
	*memory.KV
	mu       sync.Mutex
	failGets int
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	if f.failGets > 0 {
		f.failGets--
		f.mu.Unlock()
		return "", errFlaky
	}
	f.mu.Unlock()
	return f.KV.Get(ctx, key)
}

// countingRepo wraps the kv-backed repo and counts writes.
type countingRepo struct {
	*red.OpenedDaysRepo
	kv    *flakyKV
	mu    sync.Mutex
	saves int
	err   error
}

func newCountingRepo() *countingRepo {
	kv := &flakyKV{KV: memory.NewKV()}
	return &countingRepo{
		OpenedDaysRepo: red.NewOpenedDaysRepo(kv, "advent_opened_days_2026", "memory", newLogger()),
		kv:             kv,
	}
}

// failNextGets makes the next n store reads fail.
func (r *countingRepo) failNextGets(n int) {
	r.kv.mu.Lock()
	r.kv.failGets = n
	r.kv.mu.Unlock()
}

// corrupt writes a raw value under the visitor's key.
func (r *countingRepo) corrupt(t *testing.T, visitorID, raw string) {
	t.Helper()
	if err := r.kv.Set(context.Background(), "advent_opened_days_2026:"+visitorID, raw, 0); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
}

func (r *countingRepo) Save(ctx context.Context, visitorID string, days model.OpenedSet) error {
	r.mu.Lock()
	r.saves++
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.OpenedDaysRepo.Save(ctx, visitorID, days)
}

func (r *countingRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// movableClock lets a test advance time between calls.
type movableClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *movableClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func newUC(t *testing.T, settings calendar.Settings, clock calendar.Clock, repo *countingRepo) usecase.CalendarUseCase {
	t.Helper()
	return newUCWithLocker(t, settings, clock, repo, memory.NewLocker())
}

func newUCWithLocker(t *testing.T, settings calendar.Settings, clock calendar.Clock, repo *countingRepo, locker repository.Locker) usecase.CalendarUseCase {
	t.Helper()
	if clock == nil {
		clock = calendar.SystemClock{}
	}
	return usecase.NewCalendarUseCase(settings, clock, testOffers, newTranslator(t), repo, locker, "advent_opened_days_2026", newLogger())
}

// heldLocker reports every key as held by someone else.
type heldLocker struct{}

func (heldLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", domain.ErrLocked
}

func (heldLocker) Unlock(ctx context.Context, key, token string) error { return nil }
