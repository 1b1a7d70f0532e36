// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept primitives and a context, return domain errors from the
// apperror package, and know nothing about HTTP. They receive repository
// interfaces (not concrete types), so tests inject in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sakif/goal-tracker/internal/apperror"
	"github.com/sakif/goal-tracker/internal/model"
	"github.com/sakif/goal-tracker/internal/repository"
)

// MaxGoalTextLength bounds the goal text; anything longer is rejected with a
// validation error before reaching the store.
const MaxGoalTextLength = 500

// Filter selects which goals List returns.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterIncomplete Filter = "incomplete"
)

// ParseFilter maps a query-string value to a Filter. The empty string means
// "all"; anything else unknown is a validation error.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCompleted:
		return FilterCompleted, nil
	case FilterIncomplete:
		return FilterIncomplete, nil
	default:
		return "", apperror.ValidationFailed("filter",
			fmt.Sprintf("unknown filter %q (want all, completed, or incomplete)", s))
	}
}

// matches reports whether a goal satisfies the filter predicate.
func (f Filter) matches(g *model.Goal) bool {
	switch f {
	case FilterCompleted:
		return g.Completed
	case FilterIncomplete:
		return !g.Completed
	default:
		return true
	}
}

// GoalService handles the business logic for goals: owner-scoped listing and
// filtering, creation, completion toggling, text edits, and confirmed
// deletion. Every mutation verifies the caller owns the goal.
type GoalService struct {
	repo   repository.GoalRepository
	logger *slog.Logger
}

// NewGoalService creates a GoalService.
func NewGoalService(repo repository.GoalRepository, logger *slog.Logger) *GoalService {
	return &GoalService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the owner's goals that satisfy the filter, in store order.
// The result contains every matching goal and nothing else — no omissions,
// no duplicates, no resorting.
func (s *GoalService) List(ctx context.Context, owner string, filter Filter) ([]model.Goal, error) {
	all, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		s.logger.Error("failed to list goals",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable(err)
	}

	goals := make([]model.Goal, 0, len(all))
	for i := range all {
		if filter.matches(&all[i]) {
			goals = append(goals, all[i])
		}
	}

	return goals, nil
}

// Dashboard returns all of the owner's goals ordered for the dashboard view:
// incomplete goals before completed ones, stable within each group, so ties
// keep the store-returned order.
func (s *GoalService) Dashboard(ctx context.Context, owner string) ([]model.Goal, error) {
	goals, err := s.List(ctx, owner, FilterAll)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(goals, func(i, j int) bool {
		return !goals[i].Completed && goals[j].Completed
	})

	return goals, nil
}

// Add creates a new goal for owner. Whitespace-only text is rejected before
// any store call; a created goal always starts with Completed=false and a
// server-assigned creation timestamp.
func (s *GoalService) Add(ctx context.Context, owner, text string) (*model.Goal, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, apperror.ValidationFailed("text", "goal text is required")
	}
	if len(text) > MaxGoalTextLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("goal text must be %d characters or less", MaxGoalTextLength))
	}

	goal := &model.Goal{
		Text:      text,
		Owner:     owner,
		Completed: false,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		s.logger.Error("failed to create goal",
			slog.String("owner", owner),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Unavailable(err)
	}

	s.logger.Info("goal created",
		slog.String("id", goal.ID),
		slog.String("owner", owner),
	)

	return goal, nil
}

// Toggle flips a goal's completed flag against its current stored value, so
// toggling twice restores the original state regardless of what the client
// believed the value was.
func (s *GoalService) Toggle(ctx context.Context, owner, id string) (*model.Goal, error) {
	goal, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	goal.Completed = !goal.Completed

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, s.storeErr("toggle", id, err)
	}

	s.logger.Info("goal toggled",
		slog.String("id", id),
		slog.Bool("completed", goal.Completed),
	)

	return goal, nil
}

// Edit replaces a goal's text. Whitespace-only text is rejected; completed
// state and ownership are untouched.
func (s *GoalService) Edit(ctx context.Context, owner, id, text string) (*model.Goal, error) {
	text = strings.TrimSpace(text)

	if text == "" {
		return nil, apperror.ValidationFailed("text", "goal text is required")
	}
	if len(text) > MaxGoalTextLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("goal text must be %d characters or less", MaxGoalTextLength))
	}

	goal, err := s.getOwned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	goal.Text = text

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, s.storeErr("edit", id, err)
	}

	s.logger.Info("goal edited", slog.String("id", id))

	return goal, nil
}

// Delete removes a goal. The confirmed flag is the explicit user
// confirmation step: when it is false no store call is issued at all, when
// true exactly one delete is.
func (s *GoalService) Delete(ctx context.Context, owner, id string, confirmed bool) error {
	if !confirmed {
		return apperror.ValidationFailed("confirm", "deletion requires confirmation")
	}

	if _, err := s.getOwned(ctx, owner, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeErr("delete", id, err)
	}

	s.logger.Info("goal deleted", slog.String("id", id))
	return nil
}

// getOwned fetches a goal and verifies the caller owns it. A goal belonging
// to someone else is reported as Forbidden, never leaked.
func (s *GoalService) getOwned(ctx context.Context, owner, id string) (*model.Goal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "goal ID is required")
	}

	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, s.storeErr("get", id, err)
	}

	if goal.Owner != owner {
		return nil, apperror.Forbidden("goal belongs to another user")
	}

	return goal, nil
}

// storeErr logs a store failure and wraps it as Unavailable, keeping
// NotFound benign (the record vanished between render and action — the
// client just refreshes its list).
func (s *GoalService) storeErr(op, id string, err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	s.logger.Error("goal store operation failed",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	return apperror.Unavailable(err)
}
