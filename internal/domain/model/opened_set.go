package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"advent-calendar/internal/domain"
)

// OpenedSet is the set of days a visitor has already revealed.
// It only ever grows during a calendar season.
type OpenedSet map[Day]struct{}

// NewOpenedSet builds a set from days, dropping anything outside the window.
func NewOpenedSet(days ...Day) OpenedSet {
	s := make(OpenedSet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s OpenedSet) Has(d Day) bool {
	_, ok := s[d]
	return ok
}

// Add inserts d and reports whether the set changed.
func (s OpenedSet) Add(d Day) bool {
	if !d.Valid() || s.Has(d) {
		return false
	}
	s[d] = struct{}{}
	return true
}

// Days returns the members in ascending order.
func (s OpenedSet) Days() []Day {
	out := make([]Day, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s OpenedSet) Clone() OpenedSet {
	return NewOpenedSet(s.Days()...)
}

func (s OpenedSet) Equal(other OpenedSet) bool {
	if len(s) != len(other) {
		return false
	}
	for d := range s {
		if !other.Has(d) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the set as a sorted JSON array of integers.
func (s OpenedSet) MarshalJSON() ([]byte, error) {
	days := s.Days()
	ints := make([]int, len(days))
	for i, d := range days {
		ints[i] = int(d)
	}
	return json.Marshal(ints)
}

// DecodeOpenedSet parses a persisted value. Anything that is not a JSON array
// is an error; array elements that are not whole numbers inside the window
// are dropped.
func DecodeOpenedSet(data []byte) (OpenedSet, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", domain.ErrCorruptState, raw)
	}
	s := make(OpenedSet, len(items))
	for _, it := range items {
		f, ok := it.(float64)
		if !ok || f != math.Trunc(f) {
			continue
		}
		s.Add(Day(f))
	}
	return s, nil
}
