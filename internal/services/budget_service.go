package services

import (
	"context"
	"fmt"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// BudgetService evaluates budgets against recorded spending. It only reads.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

// ActualSpending is |sum(amount)| of the budget's category over its window.
func (s *BudgetService) ActualSpending(ctx context.Context, owner string, b core.Budget) (core.Money, error) {
	return actualSpending(ctx, s.storage.ForOwner(owner), b)
}

func actualSpending(ctx context.Context, sc *storage.Scope, b core.Budget) (core.Money, error) {
	start, end := b.Window()
	sum, err := sc.SumCategoryWindow(ctx, b.CategoryID, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum spending for budget %d: %w", b.ID, err)
	}
	return sum.Abs(), nil
}

// Evaluate loads a budget and reports it with the dashboard status rule.
func (s *BudgetService) Evaluate(ctx context.Context, owner string, budgetID int64) (core.BudgetEvaluation, error) {
	sc := s.storage.ForOwner(owner)
	b, err := sc.GetBudget(ctx, budgetID)
	if err != nil {
		return core.BudgetEvaluation{}, err
	}
	actual, err := actualSpending(ctx, sc, b)
	if err != nil {
		return core.BudgetEvaluation{}, err
	}
	return b.Evaluate(actual), nil
}

// EvaluateMonth evaluates the active budgets recorded for year/month.
func (s *BudgetService) EvaluateMonth(ctx context.Context, owner string, year, month int) ([]core.BudgetEvaluation, error) {
	sc := s.storage.ForOwner(owner)
	budgets, err := sc.ListActiveBudgetsForMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}

	evaluations := make([]core.BudgetEvaluation, 0, len(budgets))
	for _, b := range budgets {
		actual, err := actualSpending(ctx, sc, b)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, b.Evaluate(actual))
	}
	return evaluations, nil
}

// Analysis groups the year's active budgets by category name, in order of
// first appearance, and classifies each group with the analysis rule.
func (s *BudgetService) Analysis(ctx context.Context, owner string, year int) ([]core.CategoryAnalysis, error) {
	sc := s.storage.ForOwner(owner)
	budgets, err := sc.ListActiveBudgetsForYear(ctx, year)
	if err != nil {
		return nil, err
	}

	var groups []*core.CategoryAnalysis
	byName := make(map[string]*core.CategoryAnalysis)
	for _, b := range budgets {
		actual, err := actualSpending(ctx, sc, b)
		if err != nil {
			return nil, err
		}

		g, ok := byName[b.CategoryName]
		if !ok {
			g = &core.CategoryAnalysis{CategoryID: b.CategoryID, CategoryName: b.CategoryName}
			byName[b.CategoryName] = g
			groups = append(groups, g)
		}
		g.TotalPlanned = g.TotalPlanned.Add(b.Planned)
		g.TotalActual = g.TotalActual.Add(actual)
		g.Budgets = append(g.Budgets, b)
	}

	out := make([]core.CategoryAnalysis, 0, len(groups))
	for _, g := range groups {
		g.Remaining = g.TotalPlanned.Sub(g.TotalActual)
		g.PercentageUsed = g.TotalActual.PercentOf(g.TotalPlanned)
		g.Status = core.AnalysisStatus(g.Remaining, g.PercentageUsed)
		out = append(out, *g)
	}
	return out, nil
}
