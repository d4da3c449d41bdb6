// Package calendar holds the day-unlock rules: which day is allowed today and
// what state each day-card is in. It has no knowledge of storage or HTML.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"advent-calendar/internal/domain"
	"advent-calendar/internal/domain/model"
)

// Mode selects how "today" is resolved.
type Mode string

const (
	ModeCalendar Mode = "calendar" // real dates, days 1..7 of Year/Month
	ModeTest     Mode = "test"     // TestDay is "today"
)

// ParseMode accepts the canonical names plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "calendar", "jan", "real":
		return ModeCalendar, nil
	case "test", "manual":
		return ModeTest, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
}

const (
	DefaultPreviewLimit    = 40
	DefaultRefreshInterval = 60 * time.Second
)

// Settings is the immutable calendar configuration passed into every
// evaluation.
type Settings struct {
	Year         int
	Month        time.Month
	Mode         Mode
	TestDay      int
	PreviewLimit int
	Location     *time.Location
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// UnlockDate is the calendar date on which d becomes available.
func (s Settings) UnlockDate(d model.Day) time.Time {
	return time.Date(s.Year, s.Month, int(d), 0, 0, 0, 0, s.location())
}

// Offers maps each day to its message. Missing days read as "".
type Offers map[model.Day]string

func (o Offers) Text(d model.Day) string { return o[d] }
