package storage

import (
	"context"

	"saldo/internal/core"
)

// Scope is the owner-bound view of the repository. Every read and write it
// issues is filtered by the owner it was created for, so rows belonging to a
// different owner behave exactly like missing rows.
type Scope struct {
	owner string
	q     *Queries
}

func (s *Scope) Owner() string { return s.owner }

func notFoundIfNone(n int64, err error, resource string, id int64) error {
	if err != nil {
		return mapError(err, resource, id)
	}
	if n == 0 {
		return &core.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}

// Categories

func (s *Scope) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	id, err := s.q.CreateCategory(ctx, s.owner, c)
	if err != nil {
		return core.Category{}, mapError(err, "category", 0)
	}
	c.ID, c.Owner = id, s.owner
	return c, nil
}

func (s *Scope) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.q.GetCategory(ctx, s.owner, id)
	return c, mapError(err, "category", id)
}

func (s *Scope) ListCategories(ctx context.Context, kind core.CategoryKind) ([]core.Category, error) {
	items, err := s.q.ListCategories(ctx, s.owner, kind)
	return items, mapError(err, "categories", 0)
}

func (s *Scope) DeleteCategory(ctx context.Context, id int64) error {
	n, err := s.q.DeleteCategory(ctx, s.owner, id)
	return notFoundIfNone(n, err, "category", id)
}

// Accounts

func (s *Scope) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	id, err := s.q.CreateAccount(ctx, s.owner, a)
	if err != nil {
		return core.Account{}, mapError(err, "account", 0)
	}
	return s.GetAccount(ctx, id)
}

func (s *Scope) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := s.q.GetAccount(ctx, s.owner, id)
	return a, mapError(err, "account", id)
}

func (s *Scope) ListAccounts(ctx context.Context, activeOnly bool) ([]core.Account, error) {
	items, err := s.q.ListAccounts(ctx, s.owner, activeOnly)
	return items, mapError(err, "accounts", 0)
}

func (s *Scope) DeleteAccount(ctx context.Context, id int64) error {
	n, err := s.q.DeleteAccount(ctx, s.owner, id)
	return notFoundIfNone(n, err, "account", id)
}

func (s *Scope) SetAccountBalance(ctx context.Context, id int64, balance core.Money) error {
	n, err := s.q.SetAccountBalance(ctx, s.owner, id, balance.Cents)
	return notFoundIfNone(n, err, "account", id)
}

// SumAccountByKind returns the signed income and expense totals of an account.
func (s *Scope) SumAccountByKind(ctx context.Context, accountID int64) (income, expense core.Money, err error) {
	in, ex, err := s.q.SumAccountByKind(ctx, s.owner, accountID)
	if err != nil {
		return core.Money{}, core.Money{}, mapError(err, "account", accountID)
	}
	return core.Cents(in), core.Cents(ex), nil
}

// Savings goals

func (s *Scope) CreateGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	id, err := s.q.CreateGoal(ctx, s.owner, g)
	if err != nil {
		return core.SavingsGoal{}, mapError(err, "goal", 0)
	}
	return s.GetGoal(ctx, id)
}

func (s *Scope) GetGoal(ctx context.Context, id int64) (core.SavingsGoal, error) {
	g, err := s.q.GetGoal(ctx, s.owner, id)
	return g, mapError(err, "goal", id)
}

func (s *Scope) ListGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	items, err := s.q.ListGoals(ctx, s.owner)
	return items, mapError(err, "goals", 0)
}

func (s *Scope) DeleteGoal(ctx context.Context, id int64) error {
	n, err := s.q.DeleteGoal(ctx, s.owner, id)
	return notFoundIfNone(n, err, "goal", id)
}

// AdjustGoalBalance adds delta to the goal counter. It reports false when the
// goal does not exist in this scope.
func (s *Scope) AdjustGoalBalance(ctx context.Context, id int64, delta core.Money) (bool, error) {
	n, err := s.q.AdjustGoalBalance(ctx, s.owner, id, delta.Cents)
	if err != nil {
		return false, mapError(err, "goal", id)
	}
	return n > 0, nil
}

func (s *Scope) SetGoalBalance(ctx context.Context, id int64, balance core.Money) error {
	n, err := s.q.SetGoalBalance(ctx, s.owner, id, balance.Cents)
	return notFoundIfNone(n, err, "goal", id)
}

func (s *Scope) SumGoalContributions(ctx context.Context, id int64) (core.Money, error) {
	sum, err := s.q.SumGoalContributions(ctx, s.owner, id)
	return core.Cents(sum), mapError(err, "goal", id)
}

// Transactions

func (s *Scope) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	id, err := s.q.CreateTransaction(ctx, s.owner, t)
	if err != nil {
		return core.Transaction{}, mapError(err, "transaction", 0)
	}
	t.ID, t.Owner = id, s.owner
	return t, nil
}

func (s *Scope) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.q.GetTransaction(ctx, s.owner, id)
	return t, mapError(err, "transaction", id)
}

func (s *Scope) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := s.q.UpdateTransaction(ctx, s.owner, t)
	return notFoundIfNone(n, err, "transaction", t.ID)
}

func (s *Scope) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := s.q.DeleteTransaction(ctx, s.owner, id)
	return notFoundIfNone(n, err, "transaction", id)
}

func (s *Scope) ListTransactions(ctx context.Context, f core.TransactionFilter, limit int) ([]core.Transaction, error) {
	items, err := s.q.ListTransactions(ctx, s.owner, f, limit)
	return items, mapError(err, "transactions", 0)
}

func (s *Scope) ExportRows(ctx context.Context, f core.TransactionFilter) ([]core.ExportRow, error) {
	items, err := s.q.ExportRows(ctx, s.owner, f)
	return items, mapError(err, "transactions", 0)
}

func (s *Scope) SumCategoryWindow(ctx context.Context, categoryID int64, from, to core.Date) (core.Money, error) {
	sum, err := s.q.SumCategoryWindow(ctx, s.owner, categoryID, from, to)
	return core.Cents(sum), mapError(err, "transactions", 0)
}

func (s *Scope) SumByKindWindow(ctx context.Context, from, to core.Date) (income, expense core.Money, err error) {
	in, ex, err := s.q.SumByKindWindow(ctx, s.owner, from, to)
	if err != nil {
		return core.Money{}, core.Money{}, mapError(err, "transactions", 0)
	}
	return core.Cents(in), core.Cents(ex), nil
}

func (s *Scope) ExpenseByCategory(ctx context.Context, from, to core.Date) ([]core.CategoryAmount, error) {
	items, err := s.q.ExpenseByCategory(ctx, s.owner, from, to)
	return items, mapError(err, "transactions", 0)
}

func (s *Scope) MonthlyTotals(ctx context.Context, from, to core.Date) ([]core.MonthTotals, error) {
	items, err := s.q.MonthlyTotals(ctx, s.owner, from, to)
	return items, mapError(err, "transactions", 0)
}

// Budgets

func (s *Scope) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	id, err := s.q.CreateBudget(ctx, s.owner, b)
	if err != nil {
		return core.Budget{}, mapError(err, "budget", 0)
	}
	return s.GetBudget(ctx, id)
}

func (s *Scope) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := s.q.GetBudget(ctx, s.owner, id)
	return b, mapError(err, "budget", id)
}

func (s *Scope) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	items, err := s.q.ListBudgets(ctx, s.owner)
	return items, mapError(err, "budgets", 0)
}

func (s *Scope) ListActiveBudgetsForYear(ctx context.Context, year int) ([]core.Budget, error) {
	items, err := s.q.ListActiveBudgetsForYear(ctx, s.owner, year)
	return items, mapError(err, "budgets", 0)
}

func (s *Scope) ListActiveBudgetsForMonth(ctx context.Context, year, month int) ([]core.Budget, error) {
	items, err := s.q.ListActiveBudgetsForMonth(ctx, s.owner, year, month)
	return items, mapError(err, "budgets", 0)
}

func (s *Scope) DeleteBudget(ctx context.Context, id int64) error {
	n, err := s.q.DeleteBudget(ctx, s.owner, id)
	return notFoundIfNone(n, err, "budget", id)
}

// Recurring definitions

func (s *Scope) CreateRecurring(ctx context.Context, r core.RecurringDefinition) (core.RecurringDefinition, error) {
	id, err := s.q.CreateRecurring(ctx, s.owner, r)
	if err != nil {
		return core.RecurringDefinition{}, mapError(err, "recurring", 0)
	}
	return s.GetRecurring(ctx, id)
}

func (s *Scope) GetRecurring(ctx context.Context, id int64) (core.RecurringDefinition, error) {
	r, err := s.q.GetRecurring(ctx, s.owner, id)
	return r, mapError(err, "recurring", id)
}

func (s *Scope) ListRecurring(ctx context.Context) ([]core.RecurringDefinition, error) {
	items, err := s.q.ListRecurring(ctx, s.owner)
	return items, mapError(err, "recurring", 0)
}

func (s *Scope) ListDueRecurring(ctx context.Context, today core.Date) ([]core.RecurringDefinition, error) {
	items, err := s.q.ListDueRecurring(ctx, s.owner, today)
	return items, mapError(err, "recurring", 0)
}

func (s *Scope) AdvanceRecurring(ctx context.Context, id int64, next core.Date) error {
	n, err := s.q.AdvanceRecurring(ctx, s.owner, id, next)
	return notFoundIfNone(n, err, "recurring", id)
}

func (s *Scope) SetRecurringActive(ctx context.Context, id int64, active bool) error {
	n, err := s.q.SetRecurringActive(ctx, s.owner, id, active)
	return notFoundIfNone(n, err, "recurring", id)
}

func (s *Scope) CountActiveRecurring(ctx context.Context) (int64, error) {
	n, err := s.q.CountActiveRecurring(ctx, s.owner)
	return n, mapError(err, "recurring", 0)
}

func (s *Scope) DeleteRecurring(ctx context.Context, id int64) error {
	n, err := s.q.DeleteRecurring(ctx, s.owner, id)
	return notFoundIfNone(n, err, "recurring", id)
}
