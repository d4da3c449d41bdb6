package calendar

import (
	"time"

	"advent-calendar/internal/domain/model"
)

// Clock supplies the current moment.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// ResolveToday returns the day that may be opened right now, or
// model.Closed when the moment falls outside the active window.
func ResolveToday(s Settings, clock Clock) model.AllowedDay {
	if s.Mode == ModeTest {
		return model.AllowDay(model.Day(s.TestDay))
	}

	now := clock.Now().In(s.location())
	if now.Year() != s.Year || now.Month() != s.Month {
		return model.Closed
	}
	return model.AllowDay(model.Day(now.Day()))
}
