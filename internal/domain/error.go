package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidDay   = errors.New("day is outside the calendar window")
	ErrCorruptState = errors.New("persisted opened days are corrupt")
	ErrUnknownMode  = errors.New("unknown calendar mode")
	ErrLocked       = errors.New("resource is locked")
)
