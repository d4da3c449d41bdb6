//go:build integration

package postgres

import (
	"context"
	"testing"

	"advent-calendar/internal/domain/model"
)

func TestOpenedDaysRepo_Postgres(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	repo := NewOpenedDaysRepo(testPool, "advent_opened_days_2026", newLogger())

	if got := repo.Load(ctx, "v1"); len(got) != 0 {
		t.Fatalf("fresh visitor: want empty, got %v", got.Days())
	}

	for _, days := range [][]model.Day{{2}, {2, 5}, model.AllDays()} {
		want := model.NewOpenedSet(days...)
		if err := repo.Save(ctx, "v1", want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if got := repo.Load(ctx, "v1"); !got.Equal(want) {
			t.Fatalf("want %v, got %v", want.Days(), got.Days())
		}
	}

	other := NewOpenedDaysRepo(testPool, "advent_opened_days_2027", newLogger())
	if got := other.Load(ctx, "v1"); len(got) != 0 {
		t.Fatalf("another season must not see this one: %v", got.Days())
	}
}

func TestOpenedDaysRepo_PostgresCorruptRow(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	if _, err := testPool.Exec(ctx,
		`INSERT INTO advent_opened_days (storage_key, visitor_id, days) VALUES ('k', 'v', '"not-an-array"'::jsonb)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewOpenedDaysRepo(testPool, "k", newLogger())
	if got := repo.Load(ctx, "v"); got == nil || len(got) != 0 {
		t.Fatalf("want empty set, got %v", got)
	}
}
