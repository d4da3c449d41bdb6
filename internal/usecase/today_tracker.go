package usecase

import (
	"context"
	"sync"
	"time"

	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/infra/metrics"
	"advent-calendar/internal/render"

	"github.com/rs/zerolog"
)

// TodaySnapshot is the anonymous calendar as of the last refresh.
type TodaySnapshot struct {
	AllowedDay  model.AllowedDay        `json:"allowed_day"`
	Banner      string                  `json:"banner"`
	Counts      map[model.CardState]int `json:"counts"`
	Cards       []*render.CardView      `json:"cards"`
	RefreshedAt time.Time               `json:"refreshed_at"`
}

// TodayTracker re-runs resolve -> classify -> render on demand and keeps the
// result. It is driven by the refresh worker.
type TodayTracker struct {
	uc  CalendarUseCase
	now func() time.Time
	log *zerolog.Logger

	mu       sync.RWMutex
	snap     TodaySnapshot
	hasFirst bool
}

func NewTodayTracker(uc CalendarUseCase, logger *zerolog.Logger) *TodayTracker {
	l := logger.With().Str("component", "TodayTracker").Logger()
	return &TodayTracker{uc: uc, now: time.Now, log: &l}
}

// Refresh recomputes the snapshot and reports a rollover when the allowed
// day changed since the previous call.
func (t *TodayTracker) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	allowed := t.uc.Today()
	board := t.uc.Evaluate(allowed, model.NewOpenedSet())
	views := render.NewCardViews()
	render.Render(views, board.Cards)

	counts := make(map[model.CardState]int, len(model.CardStates))
	for _, c := range board.Cards {
		counts[c.State]++
	}

	t.mu.Lock()
	prev, hadPrev := t.snap.AllowedDay, t.hasFirst
	t.snap = TodaySnapshot{
		AllowedDay:  allowed,
		Banner:      board.Banner,
		Counts:      counts,
		Cards:       views,
		RefreshedAt: t.now(),
	}
	t.hasFirst = true
	t.mu.Unlock()

	day, _ := allowed.Get()
	metrics.SetAllowedDay(int(day))
	for _, s := range model.CardStates {
		metrics.SetCards(string(s), counts[s])
	}

	switch {
	case !hadPrev:
		t.log.Info().Str("allowed_day", allowed.String()).Msg("calendar state initialised")
	case prev != allowed:
		metrics.IncRollover()
		t.log.Info().Str("from", prev.String()).Str("to", allowed.String()).Msg("day rollover")
	}
	return nil
}

// Snapshot returns the latest refresh result.
func (t *TodayTracker) Snapshot() TodaySnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
