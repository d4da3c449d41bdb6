package sched

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Refresher is the job the worker runs on every tick.
type Refresher interface {
	Refresh(ctx context.Context) error
}

const refreshTimeout = 10 * time.Second

// RefreshWorker re-evaluates the calendar on a fixed interval so a day
// rollover is picked up without a request.
type RefreshWorker struct {
	interval time.Duration
	job      Refresher
	log      *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefreshWorker builds a worker that calls job.Refresh every interval.
// If interval <= 0 it defaults to 1 minute.
func NewRefreshWorker(interval time.Duration, job Refresher, logger *zerolog.Logger) *RefreshWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "RefreshWorker").Logger()
	return &RefreshWorker{interval: interval, job: job, log: &l}
}

// Start runs one refresh immediately, then one per tick, in a background
// goroutine. Calling Start on a running worker has no effect.
func (w *RefreshWorker) Start(parentCtx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx, w.done)
}

func (w *RefreshWorker) loop(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	w.log.Info().Dur("interval", w.interval).Msg("refresh worker started")
	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("refresh worker stopping")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *RefreshWorker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	if err := w.job.Refresh(runCtx); err != nil && ctx.Err() == nil {
		w.log.Error().Err(err).Msg("refresh failed")
	}
}

// Stop cancels the loop and waits for it to exit. It is idempotent.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
