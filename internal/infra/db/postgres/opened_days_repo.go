package postgres

import (
	"context"
	"errors"
	"fmt"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/domain/ports/repository"
	"advent-calendar/internal/infra/logging"
	"advent-calendar/internal/infra/metrics"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Ensure interface compliance
var _ repository.OpenedDaysRepository = (*OpenedDaysRepo)(nil)

// querier is the subset of *pgxpool.Pool the repo uses.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS advent_opened_days (
  storage_key TEXT        NOT NULL,
  visitor_id  TEXT        NOT NULL,
  days        JSONB       NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (storage_key, visitor_id)
);
`

// OpenedDaysRepo stores one JSONB array per (storage key, visitor).
type OpenedDaysRepo struct {
	db         querier
	storageKey string
	log        *zerolog.Logger
}

func NewOpenedDaysRepo(db querier, storageKey string, logger *zerolog.Logger) *OpenedDaysRepo {
	l := logger.With().Str("component", "OpenedDaysRepo").Str("driver", "postgres").Logger()
	return &OpenedDaysRepo{db: db, storageKey: storageKey, log: &l}
}

// EnsureSchema creates the table if it does not exist.
func (r *OpenedDaysRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Get is the strict read: domain.ErrNotFound for no row,
// domain.ErrCorruptState for an unusable value, or the backend error.
func (r *OpenedDaysRepo) Get(ctx context.Context, visitorID string) (model.OpenedSet, error) {
	const sql = `
SELECT days::text
  FROM advent_opened_days
 WHERE storage_key = $1 AND visitor_id = $2;
`
	var raw string
	if err := r.db.QueryRow(ctx, sql, r.storageKey, visitorID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("Get opened days: %w", err)
	}
	return model.DecodeOpenedSet([]byte(raw))
}

func (r *OpenedDaysRepo) Load(ctx context.Context, visitorID string) model.OpenedSet {
	set, err := r.Get(ctx, visitorID)
	return failOpen(ctx, r.log, "postgres", set, err)
}

func (r *OpenedDaysRepo) Save(ctx context.Context, visitorID string, days model.OpenedSet) error {
	const sql = `
INSERT INTO advent_opened_days (storage_key, visitor_id, days, updated_at)
VALUES ($1, $2, $3::jsonb, now())
ON CONFLICT (storage_key, visitor_id) DO UPDATE
  SET days       = EXCLUDED.days,
      updated_at = EXCLUDED.updated_at;
`
	data, err := days.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql, r.storageKey, visitorID, string(data)); err != nil {
		return fmt.Errorf("Save opened days: %w", err)
	}
	return nil
}

// failOpen turns a strict read result into the never-failing Load contract.
func failOpen(ctx context.Context, base *zerolog.Logger, driver string, set model.OpenedSet, err error) model.OpenedSet {
	log := logging.With(ctx, base)
	switch {
	case err == nil:
		metrics.IncStoreLoad(driver, "hit")
		return set
	case errors.Is(err, domain.ErrNotFound):
		metrics.IncStoreLoad(driver, "miss")
	case errors.Is(err, domain.ErrCorruptState):
		metrics.IncStoreLoad(driver, "corrupt")
		log.Warn().Err(err).Msg("corrupt opened days; treating as empty")
	default:
		metrics.IncStoreLoad(driver, "error")
		log.Warn().Err(err).Msg("load opened days failed; treating as empty")
	}
	return model.NewOpenedSet()
}
