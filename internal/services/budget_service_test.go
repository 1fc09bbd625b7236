package services

import (
	"context"
	"testing"

	"saldo/internal/core"
)

func (f *fixture) budget(t *testing.T, b core.Budget) core.Budget {
	t.Helper()
	b.Active = true
	created, err := f.refs.CreateBudget(context.Background(), owner, b)
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	return created
}

func intp(v int) *int { return &v }

func TestActualSpending_Windows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, "Food", core.Expense)
	for _, tx := range []core.Transaction{
		{Amount: core.Cents(-1000), Date: core.NewDate(2024, 1, 31)},
		{Amount: core.Cents(-2000), Date: core.NewDate(2024, 2, 1)},
		{Amount: core.Cents(-4000), Date: core.NewDate(2024, 3, 31)},
		{Amount: core.Cents(-8000), Date: core.NewDate(2024, 4, 1)},
		{Amount: core.Cents(-16000), Date: core.NewDate(2025, 1, 1)},
	} {
		tx.CategoryID = food.ID
		f.create(t, tx)
	}

	svc := NewBudgetService(f.repo)
	tests := []struct {
		name   string
		budget core.Budget
		want   int64
	}{
		{"month", core.Budget{Period: core.PeriodMonth, Year: 2024, Month: intp(2)}, 2000},
		{"month without month is january", core.Budget{Period: core.PeriodMonth, Year: 2024}, 1000},
		{"quarter from march", core.Budget{Period: core.PeriodQuarter, Year: 2024, Month: intp(3)}, 7000},
		{"quarter without month is q1", core.Budget{Period: core.PeriodQuarter, Year: 2024}, 7000},
		{"quarter two", core.Budget{Period: core.PeriodQuarter, Year: 2024, Month: intp(5)}, 8000},
		{"year", core.Budget{Period: core.PeriodYear, Year: 2024}, 15000},
		{"empty window", core.Budget{Period: core.PeriodYear, Year: 2023}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.budget.CategoryID = food.ID
			got, err := svc.ActualSpending(ctx, owner, tt.budget)
			if err != nil {
				t.Fatalf("ActualSpending() error = %v", err)
			}
			if got.Cents != tt.want {
				t.Errorf("ActualSpending() = %d, want %d", got.Cents, tt.want)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, "Food", core.Expense)
	b := f.budget(t, core.Budget{CategoryID: food.ID, Planned: core.Cents(10000), Period: core.PeriodMonth, Year: 2024, Month: intp(5)})
	f.create(t, core.Transaction{CategoryID: food.ID, Amount: core.Cents(-8500), Date: core.NewDate(2024, 5, 3)})

	got, err := NewBudgetService(f.repo).Evaluate(ctx, owner, b.ID)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Actual.Cents != 8500 || got.Remaining.Cents != 1500 || got.Status != core.StatusWarning {
		t.Errorf("Evaluate() = %+v", got)
	}
}

func TestAnalysis_GroupsByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, "Food", core.Expense)
	fun := f.category(t, "Fun", core.Expense)

	f.budget(t, core.Budget{CategoryID: food.ID, Planned: core.Cents(10000), Period: core.PeriodMonth, Year: 2024, Month: intp(1)})
	f.budget(t, core.Budget{CategoryID: food.ID, Planned: core.Cents(10000), Period: core.PeriodMonth, Year: 2024, Month: intp(2)})
	f.budget(t, core.Budget{CategoryID: fun.ID, Planned: core.Cents(5000), Period: core.PeriodMonth, Year: 2024, Month: intp(1)})
	f.budget(t, core.Budget{CategoryID: food.ID, Planned: core.Cents(99999), Period: core.PeriodYear, Year: 2023})

	f.create(t, core.Transaction{CategoryID: food.ID, Amount: core.Cents(-8000), Date: core.NewDate(2024, 1, 10)})
	f.create(t, core.Transaction{CategoryID: food.ID, Amount: core.Cents(-8000), Date: core.NewDate(2024, 2, 10)})
	f.create(t, core.Transaction{CategoryID: fun.ID, Amount: core.Cents(-6000), Date: core.NewDate(2024, 1, 20)})

	groups, err := NewBudgetService(f.repo).Analysis(ctx, owner, 2024)
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Analysis() = %d groups, want 2", len(groups))
	}

	byName := map[string]core.CategoryAnalysis{}
	for _, g := range groups {
		byName[g.CategoryName] = g
	}
	food24 := byName["Food"]
	if food24.TotalPlanned.Cents != 20000 || food24.TotalActual.Cents != 16000 || len(food24.Budgets) != 2 {
		t.Errorf("Food analysis = %+v", food24)
	}
	// 80% exactly is a warning in the analysis rule.
	if food24.Status != core.StatusWarning {
		t.Errorf("Food status = %s, want warning", food24.Status)
	}
	if byName["Fun"].Status != core.StatusOver {
		t.Errorf("Fun status = %s, want over", byName["Fun"].Status)
	}
}
