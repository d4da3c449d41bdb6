package model

import (
	"encoding/json"
	"strconv"
)

// Day identifies one calendar slot.
type Day int

const (
	FirstDay Day = 1
	LastDay  Day = 7

	DaysCount = int(LastDay - FirstDay + 1)
)

// Valid reports whether d lies inside the calendar window.
func (d Day) Valid() bool { return d >= FirstDay && d <= LastDay }

func (d Day) String() string { return strconv.Itoa(int(d)) }

// AllDays returns the calendar slots in ascending order.
func AllDays() []Day {
	out := make([]Day, 0, DaysCount)
	for d := FirstDay; d <= LastDay; d++ {
		out = append(out, d)
	}
	return out
}

// ParseDay parses a day number as it appears in URLs and forms.
func ParseDay(s string) (Day, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	d := Day(n)
	return d, d.Valid()
}

// AllowedDay is the single day that may be opened right now.
// The zero value means the calendar is closed.
type AllowedDay struct {
	day Day
	ok  bool
}

// Closed is the AllowedDay outside the active window.
var Closed = AllowedDay{}

// AllowDay returns the AllowedDay for d, or Closed when d is out of range.
func AllowDay(d Day) AllowedDay {
	if !d.Valid() {
		return Closed
	}
	return AllowedDay{day: d, ok: true}
}

// Get returns the allowed day and whether the calendar is open.
func (a AllowedDay) Get() (Day, bool) { return a.day, a.ok }

func (a AllowedDay) IsClosed() bool { return !a.ok }

// Is reports whether d is the allowed day.
func (a AllowedDay) Is(d Day) bool { return a.ok && a.day == d }

func (a AllowedDay) String() string {
	if !a.ok {
		return "closed"
	}
	return a.day.String()
}

func (a AllowedDay) MarshalJSON() ([]byte, error) {
	if !a.ok {
		return []byte("null"), nil
	}
	return json.Marshal(int(a.day))
}
