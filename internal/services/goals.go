package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/metrics"
	"saldo/internal/storage"
)

// GoalTracker adjusts savings goal counters by signed contribution deltas.
// A goal that no longer exists is skipped; the surrounding mutation still
// completes.
type GoalTracker struct {
	metrics *metrics.Metrics
}

func NewGoalTracker(m *metrics.Metrics) *GoalTracker {
	return &GoalTracker{metrics: m}
}

// Apply adds the contribution of a transaction in a category of kind.
func (g *GoalTracker) Apply(ctx context.Context, s *storage.Scope, goalID *int64, kind core.CategoryKind, amount core.Money) error {
	return g.adjust(ctx, s, goalID, core.ContributionDelta(kind, amount), "apply")
}

// Reverse removes a contribution previously applied with the same kind and amount.
func (g *GoalTracker) Reverse(ctx context.Context, s *storage.Scope, goalID *int64, kind core.CategoryKind, amount core.Money) error {
	return g.adjust(ctx, s, goalID, core.ContributionDelta(kind, amount).Neg(), "reverse")
}

func (g *GoalTracker) adjust(ctx context.Context, s *storage.Scope, goalID *int64, delta core.Money, phase string) error {
	if goalID == nil || delta.IsZero() {
		return nil
	}

	found, err := s.AdjustGoalBalance(ctx, *goalID, delta)
	if err != nil {
		return fmt.Errorf("%s goal contribution: %w", phase, err)
	}
	if !found {
		g.metrics.IncGoalSkip(phase)
		slog.WarnContext(ctx, "Goal missing, contribution skipped",
			"owner", s.Owner(),
			"goal_id", *goalID,
			"phase", phase,
			"delta_cents", delta.Cents)
	}
	return nil
}

// Reconcile recomputes the goal from the transactions currently linked to it,
// overwrites the counter and returns the previous and the corrected value.
func (g *GoalTracker) Reconcile(ctx context.Context, s *storage.Scope, goalID int64) (before, after core.Money, err error) {
	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	sum, err := s.SumGoalContributions(ctx, goalID)
	if err != nil {
		return core.Money{}, core.Money{}, err
	}
	if sum != goal.Current {
		slog.WarnContext(ctx, "Goal balance drift corrected",
			"owner", s.Owner(),
			"goal_id", goalID,
			"stored_cents", goal.Current.Cents,
			"computed_cents", sum.Cents)
		if err := s.SetGoalBalance(ctx, goalID, sum); err != nil {
			return core.Money{}, core.Money{}, err
		}
	}
	return goal.Current, sum, nil
}
