package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// ReferenceService manages the owner's categories, accounts, goals, budgets
// and recurring definitions. Goal and account balances are never written
// here except through the ledger and goal reconciliation.
type ReferenceService struct {
	storage      *storage.SQLiteRepository
	transactions *TransactionService
}

func NewReferenceService(storage *storage.SQLiteRepository, transactions *TransactionService) *ReferenceService {
	return &ReferenceService{storage: storage, transactions: transactions}
}

func (s *ReferenceService) changed(owner string) {
	if s.transactions != nil {
		s.transactions.notify(owner)
	}
}

// Categories

func (s *ReferenceService) CreateCategory(ctx context.Context, owner string, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.storage.ForOwner(owner).CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *ReferenceService) ListCategories(ctx context.Context, owner string, kind core.CategoryKind) ([]core.Category, error) {
	return s.storage.ForOwner(owner).ListCategories(ctx, kind)
}

// DeleteCategory fails with a constraint violation while transactions use
// the category; its budgets and recurring definitions go with it.
func (s *ReferenceService) DeleteCategory(ctx context.Context, owner string, id int64) error {
	if err := s.storage.ForOwner(owner).DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.changed(owner)
	return nil
}

// Accounts

// CreateAccount stores a with its current balance equal to the opening one.
func (s *ReferenceService) CreateAccount(ctx context.Context, owner string, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.storage.ForOwner(owner).CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.changed(owner)
	return created, nil
}

func (s *ReferenceService) GetAccount(ctx context.Context, owner string, id int64) (core.Account, error) {
	return s.storage.ForOwner(owner).GetAccount(ctx, id)
}

func (s *ReferenceService) ListAccounts(ctx context.Context, owner string, activeOnly bool) ([]core.Account, error) {
	return s.storage.ForOwner(owner).ListAccounts(ctx, activeOnly)
}

func (s *ReferenceService) DeleteAccount(ctx context.Context, owner string, id int64) error {
	if err := s.storage.ForOwner(owner).DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	s.changed(owner)
	return nil
}

// RecomputeAccount rebuilds the cached balance of an account.
func (s *ReferenceService) RecomputeAccount(ctx context.Context, owner string, id int64) (core.Money, error) {
	var balance core.Money
	err := s.storage.InTx(ctx, owner, func(sc *storage.Scope) error {
		var err error
		balance, err = s.transactions.Ledger().Recompute(ctx, sc, id)
		return err
	})
	if err != nil {
		return core.Money{}, fmt.Errorf("recompute account %d: %w", id, err)
	}
	s.changed(owner)
	return balance, nil
}

// Savings goals

// CreateGoal stores g with a zero balance.
func (s *ReferenceService) CreateGoal(ctx context.Context, owner string, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	created, err := s.storage.ForOwner(owner).CreateGoal(ctx, g)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	s.changed(owner)
	return created, nil
}

func (s *ReferenceService) GetGoal(ctx context.Context, owner string, id int64) (core.SavingsGoal, error) {
	return s.storage.ForOwner(owner).GetGoal(ctx, id)
}

func (s *ReferenceService) ListGoals(ctx context.Context, owner string) ([]core.SavingsGoal, error) {
	return s.storage.ForOwner(owner).ListGoals(ctx)
}

// DeleteGoal removes the goal; linked transactions and definitions keep
// existing without the link.
func (s *ReferenceService) DeleteGoal(ctx context.Context, owner string, id int64) error {
	if err := s.storage.ForOwner(owner).DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	s.changed(owner)
	return nil
}

// ReconcileGoal recomputes the goal from its linked transactions and returns
// the stored and corrected balances.
func (s *ReferenceService) ReconcileGoal(ctx context.Context, owner string, id int64) (before, after core.Money, err error) {
	err = s.storage.InTx(ctx, owner, func(sc *storage.Scope) error {
		var err error
		before, after, err = s.transactions.Goals().Reconcile(ctx, sc, id)
		return err
	})
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("reconcile goal %d: %w", id, err)
	}
	if before != after {
		s.changed(owner)
	}
	return before, after, nil
}

// Budgets

func (s *ReferenceService) CreateBudget(ctx context.Context, owner string, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	sc := s.storage.ForOwner(owner)
	if _, err := sc.GetCategory(ctx, b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	created, err := sc.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	s.changed(owner)
	return created, nil
}

func (s *ReferenceService) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	return s.storage.ForOwner(owner).ListBudgets(ctx)
}

func (s *ReferenceService) DeleteBudget(ctx context.Context, owner string, id int64) error {
	if err := s.storage.ForOwner(owner).DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	s.changed(owner)
	return nil
}

// Recurring definitions

// CreateRecurring stores r with its cursor at the start date.
func (s *ReferenceService) CreateRecurring(ctx context.Context, owner string, r core.RecurringDefinition) (core.RecurringDefinition, error) {
	if err := r.Validate(); err != nil {
		return core.RecurringDefinition{}, err
	}
	sc := s.storage.ForOwner(owner)
	if _, err := sc.GetCategory(ctx, r.CategoryID); err != nil {
		return core.RecurringDefinition{}, err
	}
	if r.GoalID != nil {
		if _, err := sc.GetGoal(ctx, *r.GoalID); err != nil {
			return core.RecurringDefinition{}, err
		}
	}

	r.NextDueDate = r.StartDate
	created, err := sc.CreateRecurring(ctx, r)
	if err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("create recurring definition: %w", err)
	}
	slog.InfoContext(ctx, "Recurring definition created",
		"owner", owner,
		"recurring_id", created.ID,
		"frequency", created.Frequency,
		"next_due_date", created.NextDueDate.String())
	s.changed(owner)
	return created, nil
}

func (s *ReferenceService) GetRecurring(ctx context.Context, owner string, id int64) (core.RecurringDefinition, error) {
	return s.storage.ForOwner(owner).GetRecurring(ctx, id)
}

func (s *ReferenceService) ListRecurring(ctx context.Context, owner string) ([]core.RecurringDefinition, error) {
	return s.storage.ForOwner(owner).ListRecurring(ctx)
}

// SetRecurringActive pauses or resumes a definition without moving its cursor.
func (s *ReferenceService) SetRecurringActive(ctx context.Context, owner string, id int64, active bool) error {
	if err := s.storage.ForOwner(owner).SetRecurringActive(ctx, id, active); err != nil {
		return fmt.Errorf("set recurring %d active=%v: %w", id, active, err)
	}
	s.changed(owner)
	return nil
}

func (s *ReferenceService) DeleteRecurring(ctx context.Context, owner string, id int64) error {
	if err := s.storage.ForOwner(owner).DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("delete recurring %d: %w", id, err)
	}
	s.changed(owner)
	return nil
}
