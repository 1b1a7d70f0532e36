package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/goal-tracker/internal/apperror"
	"github.com/sakif/goal-tracker/internal/model"
)

func mustCreateGoal(t *testing.T, db *DB, owner, text string) *model.Goal {
	t.Helper()

	goal := &model.Goal{Text: text, Owner: owner}
	if err := db.Create(context.Background(), goal); err != nil {
		t.Fatalf("Create(%q): %v", text, err)
	}
	return goal
}

func TestGoalCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	goal := mustCreateGoal(t, db, "ann@x.com", "learn Go")

	if goal.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if goal.CreatedAt.IsZero() {
		t.Error("Create() did not assign CreatedAt")
	}

	got, err := db.GetByID(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Text != "learn Go" {
		t.Errorf("Text = %q, want %q", got.Text, "learn Go")
	}
	if got.Owner != "ann@x.com" {
		t.Errorf("Owner = %q, want %q", got.Owner, "ann@x.com")
	}
	if got.Completed {
		t.Error("new goal should not be completed")
	}
}

func TestGoalGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGoalListByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := mustCreateGoal(t, db, "ann@x.com", "first")
	second := mustCreateGoal(t, db, "ann@x.com", "second")
	mustCreateGoal(t, db, "bob@x.com", "someone else's goal")

	goals, err := db.ListByOwner(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}

	if len(goals) != 2 {
		t.Fatalf("ListByOwner() returned %d goals, want 2", len(goals))
	}
	// Oldest first.
	if goals[0].ID != first.ID || goals[1].ID != second.ID {
		t.Errorf("ListByOwner() order = [%s, %s], want [%s, %s]",
			goals[0].ID, goals[1].ID, first.ID, second.ID)
	}
}

func TestGoalListByOwner_Empty(t *testing.T) {
	db := newTestDB(t)

	goals, err := db.ListByOwner(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(goals) != 0 {
		t.Errorf("ListByOwner() returned %d goals, want 0", len(goals))
	}
}

func TestGoalUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	goal := mustCreateGoal(t, db, "ann@x.com", "draft")

	goal.Text = "final"
	goal.Completed = true
	if err := db.Update(ctx, goal); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByID(ctx, goal.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Text != "final" || !got.Completed {
		t.Errorf("Update() not persisted: text=%q completed=%v", got.Text, got.Completed)
	}
}

func TestGoalUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	goal := &model.Goal{ID: "missing", Text: "x"}
	if err := db.Update(context.Background(), goal); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestGoalDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	goal := mustCreateGoal(t, db, "ann@x.com", "temporary")

	if err := db.Delete(ctx, goal.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.GetByID(ctx, goal.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestGoalDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.Delete(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}
