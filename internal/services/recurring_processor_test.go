package services

import (
	"context"
	"testing"

	"saldo/internal/core"
	"saldo/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func (f *fixture) recurring(t *testing.T, r core.RecurringDefinition) core.RecurringDefinition {
	t.Helper()
	r.Active = true
	if r.Description == "" {
		r.Description = "recurring"
	}
	created, err := f.refs.CreateRecurring(context.Background(), owner, r)
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}
	return created
}

func TestProcessDue_MaterializesAndAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rent := f.category(t, "Rent", core.Expense)
	goal := f.goal(t, "Deposit")
	def := f.recurring(t, core.RecurringDefinition{
		CategoryID: rent.ID,
		Amount:     core.Cents(80000),
		Frequency:  core.Monthly,
		StartDate:  core.NewDate(2024, 1, 15),
		GoalID:     &goal.ID,
	})

	p := NewRecurringProcessor(f.repo, f.txs, nil)
	n, err := p.ProcessDue(ctx, owner, core.NewDate(2024, 1, 20))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("ProcessDue() = %d, want 1", n)
	}

	txs, err := f.txs.List(ctx, owner, core.TransactionFilter{}, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("List() = %d transactions, want 1", len(txs))
	}
	got := txs[0]
	if got.Date.String() != "2024-01-15" || got.RecurringID == nil || *got.RecurringID != def.ID || got.AccountID != nil {
		t.Errorf("materialized = %+v", got)
	}
	if b := f.goalBalance(t, goal.ID); b.Cents != -80000 {
		t.Errorf("goal balance = %d, want -80000", b.Cents)
	}

	stored, err := f.refs.GetRecurring(ctx, owner, def.ID)
	if err != nil {
		t.Fatalf("GetRecurring() error = %v", err)
	}
	if stored.NextDueDate.String() != "2024-02-15" {
		t.Errorf("next due = %s, want 2024-02-15", stored.NextDueDate)
	}
}

func TestProcessDue_SecondRunProcessesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sub := f.category(t, "Subscriptions", core.Expense)
	f.recurring(t, core.RecurringDefinition{CategoryID: sub.ID, Amount: core.Cents(-999), Frequency: core.Monthly, StartDate: core.NewDate(2024, 3, 1)})

	p := NewRecurringProcessor(f.repo, f.txs, nil)
	today := core.NewDate(2024, 3, 1)
	if n, err := p.ProcessDue(ctx, owner, today); err != nil || n != 1 {
		t.Fatalf("first ProcessDue() = %d, %v, want 1", n, err)
	}
	if n, err := p.ProcessDue(ctx, owner, today); err != nil || n != 0 {
		t.Errorf("second ProcessDue() = %d, %v, want 0", n, err)
	}
}

func TestProcessDue_OneOccurrencePerCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Coffee", core.Expense)
	def := f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-300), Frequency: core.Daily, StartDate: core.NewDate(2024, 1, 1)})

	p := NewRecurringProcessor(f.repo, f.txs, nil)
	today := core.NewDate(2024, 1, 10)
	for want := 1; want <= 3; want++ {
		if n, err := p.ProcessDue(ctx, owner, today); err != nil || n != 1 {
			t.Fatalf("run %d ProcessDue() = %d, %v, want 1", want, n, err)
		}
	}
	stored, _ := f.refs.GetRecurring(ctx, owner, def.ID)
	if stored.NextDueDate.String() != "2024-01-04" {
		t.Errorf("next due = %s, want 2024-01-04", stored.NextDueDate)
	}
}

func TestProcessDue_InvalidDateSkipsAndContinues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Bills", core.Expense)
	m := metrics.New()

	broken := f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-100), Frequency: core.Monthly, StartDate: core.NewDate(2024, 1, 31), Description: "broken"})
	ok := f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-200), Frequency: core.Quarterly, StartDate: core.NewDate(2024, 5, 10), Description: "ok"})

	p := NewRecurringProcessor(f.repo, f.txs, m)
	n, err := p.ProcessDue(ctx, AllOwners, core.NewDate(2024, 6, 1))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ProcessDue() = %d, want 1", n)
	}

	txs, _ := f.txs.List(ctx, owner, core.TransactionFilter{}, 0)
	if len(txs) != 1 || txs[0].Description != "ok" {
		t.Errorf("materialized = %+v, want only the quarterly one", txs)
	}

	b, _ := f.refs.GetRecurring(ctx, owner, broken.ID)
	if b.NextDueDate.String() != "2024-01-31" {
		t.Errorf("broken cursor = %s, want unchanged 2024-01-31", b.NextDueDate)
	}
	q, _ := f.refs.GetRecurring(ctx, owner, ok.ID)
	if q.NextDueDate.String() != "2024-07-10" {
		t.Errorf("quarterly cursor = %s, want 2024-07-10", q.NextDueDate)
	}

	if c := testutil.ToFloat64(m.RecurringFailures().WithLabelValues("invalid_date")); c != 1 {
		t.Errorf("invalid_date failures = %v, want 1", c)
	}
}

func TestProcessDue_DormantAndInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Gym", core.Expense)

	ended := f.recurring(t, core.RecurringDefinition{
		CategoryID: cat.ID,
		Amount:     core.Cents(-4000),
		Frequency:  core.Monthly,
		StartDate:  core.NewDate(2024, 1, 5),
		EndDate:    core.NewDate(2024, 1, 20),
	})
	paused := f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-100), Frequency: core.Weekly, StartDate: core.NewDate(2024, 1, 1)})
	if err := f.refs.SetRecurringActive(ctx, owner, paused.ID, false); err != nil {
		t.Fatalf("SetRecurringActive() error = %v", err)
	}

	p := NewRecurringProcessor(f.repo, f.txs, nil)
	today := core.NewDate(2024, 3, 1)
	if n, _ := p.ProcessDue(ctx, owner, today); n != 1 {
		t.Fatalf("first ProcessDue() = %d, want 1 (the January occurrence)", n)
	}
	// The cursor is now 2024-02-05, past the end date: dormant.
	if n, _ := p.ProcessDue(ctx, owner, today); n != 0 {
		t.Errorf("second ProcessDue() = %d, want 0", n)
	}

	stored, _ := f.refs.GetRecurring(ctx, owner, ended.ID)
	if stored.NextDueDate.String() != "2024-02-05" || !stored.Active {
		t.Errorf("dormant definition = %+v, want untouched", stored)
	}
}

func TestProcessDue_OwnerScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Rent", core.Expense)
	f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-1), Frequency: core.Yearly, StartDate: core.NewDate(2024, 1, 1)})

	p := NewRecurringProcessor(f.repo, f.txs, nil)
	if n, err := p.ProcessDue(ctx, "bob", core.NewDate(2024, 6, 1)); err != nil || n != 0 {
		t.Errorf("ProcessDue(bob) = %d, %v, want 0", n, err)
	}
	if n, err := p.ProcessDue(ctx, AllOwners, core.NewDate(2024, 6, 1)); err != nil || n != 1 {
		t.Errorf("ProcessDue(all) = %d, %v, want 1", n, err)
	}
}

func TestProcessDue_CanceledContext(t *testing.T) {
	f := newFixture(t)
	cat := f.category(t, "Rent", core.Expense)
	f.recurring(t, core.RecurringDefinition{CategoryID: cat.ID, Amount: core.Cents(-1), Frequency: core.Yearly, StartDate: core.NewDate(2024, 1, 1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewRecurringProcessor(f.repo, f.txs, nil)
	if _, err := p.ProcessDue(ctx, owner, core.NewDate(2024, 6, 1)); err == nil {
		t.Error("ProcessDue() with canceled context should fail")
	}
}

func TestNewRecurringProcessor_Uninitialized(t *testing.T) {
	p := NewRecurringProcessor(nil, nil, nil)
	if _, err := p.ProcessDue(context.Background(), owner, core.NewDate(2024, 1, 1)); err == nil {
		t.Error("ProcessDue() without storage should fail")
	}
}
