package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/storage"
)

// historyDays is how far back the income/expense histogram reaches.
const historyDays = 365

// DashboardService assembles the dashboard sections. Results are cached per
// owner and day until a mutation for that owner is committed.
type DashboardService struct {
	storage *storage.SQLiteRepository
	budgets *BudgetService
	cache   cache.Cache[core.Dashboard]
}

// NewDashboardService builds the service. dashboards may be nil to disable caching.
func NewDashboardService(storage *storage.SQLiteRepository, budgets *BudgetService, dashboards cache.Cache[core.Dashboard]) *DashboardService {
	return &DashboardService{storage: storage, budgets: budgets, cache: dashboards}
}

func dashboardKey(owner string, today core.Date) string {
	return owner + "|" + today.String()
}

// Invalidate drops every cached dashboard of owner.
func (s *DashboardService) Invalidate(owner string) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(owner + "|")
}

// Build returns the dashboard for the month containing today.
func (s *DashboardService) Build(ctx context.Context, owner string, today core.Date) (core.Dashboard, error) {
	key := dashboardKey(owner, today)
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}

	started := time.Now()
	d, err := s.build(ctx, owner, today)
	if err != nil {
		return core.Dashboard{}, err
	}
	slog.DebugContext(ctx, "Dashboard built",
		"owner", owner,
		"date", today.String(),
		"duration", time.Since(started))

	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d, nil
}

func (s *DashboardService) build(ctx context.Context, owner string, today core.Date) (core.Dashboard, error) {
	sc := s.storage.ForOwner(owner)
	monthStart, monthEnd := today.FirstOfMonth(), today.EndOfMonth()

	var d core.Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		overview, err := monthOverview(gctx, sc, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("month overview: %w", err)
		}
		d.Month = overview
		return nil
	})

	g.Go(func() error {
		from := monthStart.AddDays(-historyDays).FirstOfMonth()
		totals, err := sc.MonthlyTotals(gctx, from, monthEnd)
		if err != nil {
			return fmt.Errorf("monthly totals: %w", err)
		}
		d.History = fillMonths(from, monthEnd, totals)
		return nil
	})

	g.Go(func() error {
		goals, err := sc.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("goals: %w", err)
		}
		d.Goals = goals
		return nil
	})

	g.Go(func() error {
		evaluations, err := s.budgets.EvaluateMonth(gctx, owner, today.Year(), today.Month())
		if err != nil {
			return fmt.Errorf("budgets: %w", err)
		}
		d.Budgets = evaluations
		for _, e := range evaluations {
			d.TotalBudget = d.TotalBudget.Add(e.Budget.Planned)
			d.TotalSpent = d.TotalSpent.Add(e.Actual)
			if e.Status == core.StatusOver {
				d.OverBudgetCount++
			}
		}
		return nil
	})

	g.Go(func() error {
		accounts, err := sc.ListAccounts(gctx, true)
		if err != nil {
			return fmt.Errorf("accounts: %w", err)
		}
		d.Accounts = accounts
		for _, a := range accounts {
			d.TotalAccountBalance = d.TotalAccountBalance.Add(a.CurrentBalance)
		}
		return nil
	})

	g.Go(func() error {
		n, err := sc.CountActiveRecurring(gctx)
		if err != nil {
			return fmt.Errorf("recurring count: %w", err)
		}
		d.ActiveRecurring = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Dashboard{}, err
	}
	return d, nil
}

// MonthOverview summarizes one calendar month.
func (s *DashboardService) MonthOverview(ctx context.Context, owner string, year, month int) (core.MonthOverview, error) {
	start := core.NewDate(year, month, 1)
	return monthOverview(ctx, s.storage.ForOwner(owner), start, start.EndOfMonth())
}

func monthOverview(ctx context.Context, sc *storage.Scope, start, end core.Date) (core.MonthOverview, error) {
	income, expense, err := sc.SumByKindWindow(ctx, start, end)
	if err != nil {
		return core.MonthOverview{}, err
	}
	byCategory, err := sc.ExpenseByCategory(ctx, start, end)
	if err != nil {
		return core.MonthOverview{}, err
	}

	expenses := expense.Abs()
	return core.MonthOverview{
		Year:      start.Year(),
		Month:     start.Month(),
		Income:    income,
		Expenses:  expenses,
		Net:       income.Sub(expenses),
		ByExpense: byCategory,
	}, nil
}

// fillMonths returns one entry per calendar month in [from, to], filling
// months without transactions with zeros. Expenses are made absolute.
func fillMonths(from, to core.Date, totals []core.MonthTotals) []core.MonthTotals {
	type ym struct{ y, m int }
	byMonth := make(map[ym]core.MonthTotals, len(totals))
	for _, t := range totals {
		byMonth[ym{t.Year, t.Month}] = t
	}

	var out []core.MonthTotals
	for cur := from.FirstOfMonth(); !cur.After(to.Time); cur = core.DateOf(cur.AddDate(0, 1, 0)) {
		t, ok := byMonth[ym{cur.Year(), cur.Month()}]
		if !ok {
			t = core.MonthTotals{Year: cur.Year(), Month: cur.Month()}
		}
		t.Expenses = t.Expenses.Abs()
		out = append(out, t)
	}
	return out
}
