package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/domain/ports/repository"
	"advent-calendar/internal/infra/logging"
	"advent-calendar/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ repository.OpenedDaysRepository = (*OpenedDaysRepo)(nil)

// OpenedDaysRepo keeps each visitor's opened set as a JSON array under
// "<prefix>:<visitor>". It works on any repository.KV, so the memory
// driver shares it.
type OpenedDaysRepo struct {
	kv     repository.KV
	prefix string
	driver string
	log    *zerolog.Logger
}

func NewOpenedDaysRepo(kv repository.KV, prefix, driver string, logger *zerolog.Logger) *OpenedDaysRepo {
	l := logger.With().Str("component", "OpenedDaysRepo").Str("driver", driver).Logger()
	return &OpenedDaysRepo{kv: kv, prefix: prefix, driver: driver, log: &l}
}

func (r *OpenedDaysRepo) key(visitorID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, visitorID)
}

// Get is the strict read: domain.ErrNotFound for a missing key,
// domain.ErrCorruptState for an unusable value, or the wrapped backend error.
func (r *OpenedDaysRepo) Get(ctx context.Context, visitorID string) (model.OpenedSet, error) {
	raw, err := r.kv.Get(ctx, r.key(visitorID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get opened days: %w", err)
	}
	return model.DecodeOpenedSet([]byte(raw))
}

func (r *OpenedDaysRepo) Load(ctx context.Context, visitorID string) model.OpenedSet {
	set, err := r.Get(ctx, visitorID)
	log := logging.With(ctx, r.log)
	switch {
	case err == nil:
		metrics.IncStoreLoad(r.driver, "hit")
		return set
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncStoreLoad(r.driver, "miss")
	case errors.Is(err, domain.ErrCorruptState):
		metrics.IncStoreLoad(r.driver, "corrupt")
		log.Warn().Err(err).Msg("corrupt opened days; treating as empty")
	default:
		metrics.IncStoreLoad(r.driver, "error")
		log.Warn().Err(err).Msg("load opened days failed; treating as empty")
	}
	return model.NewOpenedSet()
}

func (r *OpenedDaysRepo) Save(ctx context.Context, visitorID string, days model.OpenedSet) error {
	data, err := json.Marshal(days)
	if err != nil {
		return err
	}
	// no expiry: history lasts the whole season
	if err := r.kv.Set(ctx, r.key(visitorID), data, 0); err != nil {
		return fmt.Errorf("save opened days: %w", err)
	}
	return nil
}
