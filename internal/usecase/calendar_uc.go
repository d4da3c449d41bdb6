package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"advent-calendar/internal/calendar"
	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
	"advent-calendar/internal/domain/ports/repository"
	"advent-calendar/internal/infra/logging"
	"advent-calendar/internal/infra/metrics"
	"advent-calendar/internal/render"

	"github.com/rs/zerolog"
)

// OpenResult reports what an open action did.
type OpenResult string

const (
	OpenAccepted  OpenResult = "accepted"  // day added and persisted
	OpenStale     OpenResult = "stale"     // day is not today (anymore)
	OpenDuplicate OpenResult = "duplicate" // day was already opened
)

// CalendarUseCase evaluates and mutates one visitor's calendar.
type CalendarUseCase interface {
	// Today resolves the allowed day from the configured clock source.
	Today() model.AllowedDay

	// Evaluate classifies all days for the given inputs.
	Evaluate(allowed model.AllowedDay, opened model.OpenedSet) *model.Board

	// Board loads the visitor's opened set and evaluates it against today.
	Board(ctx context.Context, visitorID string) *model.Board

	// Open handles an open action. Stale and duplicate actions are no-ops and
	// return no error, as is an open racing another one by the same visitor.
	// A failed read or write returns an error and nothing is written.
	Open(ctx context.Context, visitorID string, day model.Day) (OpenResult, *model.Board, error)

	BannerPlaceholder() string
}

// BannerPhrasebook adds the banner placeholder to the card phrases.
type BannerPhrasebook interface {
	calendar.Phrasebook
	BannerPlaceholder() string
}

var _ CalendarUseCase = (*calendarUC)(nil)

const openLockTTL = 5 * time.Second

type calendarUC struct {
	settings   calendar.Settings
	clock      calendar.Clock
	classifier *calendar.Classifier
	phrases    BannerPhrasebook
	repo       repository.OpenedDaysRepository
	locker     repository.Locker
	lockPrefix string
	log        *zerolog.Logger
}

// NewCalendarUseCase wires the calendar rules to a store. locker may be nil,
// in which case concurrent opens by one visitor are not serialised.
func NewCalendarUseCase(
	settings calendar.Settings,
	clock calendar.Clock,
	offers calendar.Offers,
	phrases BannerPhrasebook,
	repo repository.OpenedDaysRepository,
	locker repository.Locker,
	lockPrefix string,
	logger *zerolog.Logger,
) CalendarUseCase {
	l := logger.With().Str("component", "CalendarUseCase").Logger()
	return &calendarUC{
		settings:   settings,
		clock:      clock,
		classifier: calendar.NewClassifier(settings, offers, phrases),
		phrases:    phrases,
		repo:       repo,
		locker:     locker,
		lockPrefix: lockPrefix,
		log:        &l,
	}
}

func (uc *calendarUC) Today() model.AllowedDay {
	return calendar.ResolveToday(uc.settings, uc.clock)
}

func (uc *calendarUC) BannerPlaceholder() string { return uc.phrases.BannerPlaceholder() }

func (uc *calendarUC) Evaluate(allowed model.AllowedDay, opened model.OpenedSet) *model.Board {
	return &model.Board{
		AllowedDay: allowed,
		Banner:     render.Banner(allowed, uc.phrases.BannerPlaceholder()),
		Cards:      uc.classifier.ClassifyAll(allowed, opened),
	}
}

func (uc *calendarUC) Board(ctx context.Context, visitorID string) *model.Board {
	return uc.Evaluate(uc.Today(), uc.repo.Load(ctx, visitorID))
}

func (uc *calendarUC) Open(ctx context.Context, visitorID string, day model.Day) (OpenResult, *model.Board, error) {
	log := logging.With(ctx, uc.log)
	defer logging.TraceDuration(log, "CalendarUseCase.Open")()

	if !day.Valid() {
		return "", nil, fmt.Errorf("%w: %d", domain.ErrInvalidDay, day)
	}

	if uc.locker != nil {
		lockKey := fmt.Sprintf("%s:lock:%s", uc.lockPrefix, visitorID)
		token, err := uc.locker.TryLock(ctx, lockKey, openLockTTL)
		if errors.Is(err, domain.ErrLocked) {
			// another open by this visitor is in flight
			metrics.IncOpen(string(OpenDuplicate))
			log.Debug().Int("day", int(day)).Msg("concurrent open ignored")
			return OpenDuplicate, uc.Board(ctx, visitorID), nil
		}
		if err != nil {
			return "", nil, fmt.Errorf("lock visitor: %w", err)
		}
		defer func() {
			if err := uc.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
				log.Warn().Err(err).Msg("unlock failed")
			}
		}()
	}

	allowed := uc.Today()
	if !allowed.Is(day) {
		metrics.IncOpen(string(OpenStale))
		log.Debug().Int("day", int(day)).Str("allowed_day", allowed.String()).Msg("stale open ignored")
		return OpenStale, uc.Evaluate(allowed, uc.repo.Load(ctx, visitorID)), nil
	}

	opened, err := uc.repo.Get(ctx, visitorID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		opened = model.NewOpenedSet()
	case errors.Is(err, domain.ErrCorruptState):
		log.Warn().Err(err).Msg("corrupt opened days; starting from empty")
		opened = model.NewOpenedSet()
	default:
		// never rewrite the set on top of a read we could not complete
		metrics.IncOpen("failed")
		log.Error().Err(err).Int("day", int(day)).Msg("read opened days failed")
		return "", nil, fmt.Errorf("open day %d: %w", day, err)
	}

	if !opened.Add(day) {
		metrics.IncOpen(string(OpenDuplicate))
		log.Debug().Int("day", int(day)).Msg("duplicate open ignored")
		return OpenDuplicate, uc.Evaluate(allowed, opened), nil
	}

	if err := uc.repo.Save(ctx, visitorID, opened); err != nil {
		metrics.IncOpen("failed")
		log.Error().Err(err).Int("day", int(day)).Msg("persist opened days failed")
		return "", nil, fmt.Errorf("open day %d: %w", day, err)
	}

	metrics.IncOpen(string(OpenAccepted))
	log.Info().Int("day", int(day)).Ints("opened", dayInts(opened)).Msg("day opened")
	return OpenAccepted, uc.Evaluate(allowed, opened), nil
}

func dayInts(s model.OpenedSet) []int {
	days := s.Days()
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}
