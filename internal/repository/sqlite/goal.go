package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/goal-tracker/internal/apperror"
	"github.com/sakif/goal-tracker/internal/model"
	"github.com/sakif/goal-tracker/internal/repository"
)

// compile-time check that *DB implements repository.GoalRepository
var _ repository.GoalRepository = (*DB)(nil)

// Create inserts a new goal. The ID (xid — sortable, URL-safe) and the
// creation timestamp are assigned here, server-side; the caller's struct is
// updated in place through the pointer.
func (db *DB) Create(ctx context.Context, goal *model.Goal) error {
	goal.ID = xid.New().String()

	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO goals (id, text, owner, completed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		goal.ID,
		goal.Text,
		goal.Owner,
		goal.Completed,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating goal: %w", err)
	}

	return nil
}

// GetByID retrieves a single goal by its ID.
// sql.ErrNoRows is translated to the domain NotFound error so the handler
// layer can map it to 404 without knowing about database/sql.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Goal, error) {
	var g model.Goal

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, text, owner, completed, created_at, updated_at
		 FROM goals
		 WHERE id = ?`,
		id,
	).Scan(
		&g.ID,
		&g.Text,
		&g.Owner,
		&g.Completed,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("goal", id)
		}
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", id, err)
	}

	return &g, nil
}

// ListByOwner returns every goal belonging to owner, oldest first. The list
// is a single user's personal goals — small by assumption, so there is no
// pagination.
func (db *DB) ListByOwner(ctx context.Context, owner string) ([]model.Goal, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, text, owner, completed, created_at, updated_at
		 FROM goals
		 WHERE owner = ?
		 ORDER BY created_at ASC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing goals for %s: %w", owner, err)
	}
	defer rows.Close()

	goals := make([]model.Goal, 0, 16)
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(
			&g.ID, &g.Text, &g.Owner, &g.Completed,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal row: %w", err)
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating goals: %w", err)
	}

	return goals, nil
}

// Update rewrites a goal's mutable fields (text, completed). ID, owner, and
// created_at are immutable. RowsAffected == 0 means the goal vanished
// between read and write — reported as NotFound.
func (db *DB) Update(ctx context.Context, goal *model.Goal) error {
	goal.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE goals
		 SET text = ?, completed = ?, updated_at = ?
		 WHERE id = ?`,
		goal.Text,
		goal.Completed,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating goal %s: %w", goal.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("goal", goal.ID)
	}

	return nil
}

// Delete removes a goal by its ID. Same pattern as Update — RowsAffected
// detects "not found".
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting goal %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("goal", id)
	}

	return nil
}
