package repository

import (
	"context"

	"advent-calendar/internal/domain/model"
)

// OpenedDaysRepository persists each visitor's opened set as one value.
//
// Load never fails: a missing, corrupt or unreadable value is reported as an
// empty set so a broken store only resets what is displayed. Get is the
// strict read behind it and is what read-modify-write callers use: it returns
// domain.ErrNotFound, domain.ErrCorruptState or the backend error. Save
// replaces the whole value in a single write.
type OpenedDaysRepository interface {
	Load(ctx context.Context, visitorID string) model.OpenedSet
	Get(ctx context.Context, visitorID string) (model.OpenedSet, error)
	Save(ctx context.Context, visitorID string, days model.OpenedSet) error
}
