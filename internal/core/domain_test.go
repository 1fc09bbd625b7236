package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExactDate(t *testing.T) {
	tests := []struct {
		name    string
		y, m, d int
		wantErr bool
	}{
		{"regular", 2024, 3, 15, false},
		{"leap day", 2024, 2, 29, false},
		{"non leap day", 2023, 2, 29, true},
		{"february 31", 2024, 2, 31, true},
		{"april 31", 2024, 4, 31, true},
		{"month 13", 2024, 13, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExactDate(tt.y, tt.m, tt.d)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCalendarDate) {
					t.Fatalf("ExactDate() error = %v, want ErrInvalidCalendarDate", err)
				}
				var cal *InvalidCalendarDateError
				if !errors.As(err, &cal) || cal.Day != tt.d || cal.Month != tt.m {
					t.Fatalf("ExactDate() error details = %+v", cal)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExactDate() unexpected error: %v", err)
			}
			if got.Year() != tt.y || got.Month() != tt.m || got.Day() != tt.d {
				t.Errorf("ExactDate() = %s", got)
			}
		})
	}
}

func TestMonthBounds(t *testing.T) {
	d := NewDate(2024, 2, 14)
	if got := d.FirstOfMonth().String(); got != "2024-02-01" {
		t.Errorf("FirstOfMonth() = %s", got)
	}
	if got := d.EndOfMonth().String(); got != "2024-02-29" {
		t.Errorf("EndOfMonth() = %s", got)
	}
	if got := (Date{}).String(); got != "" {
		t.Errorf("zero Date String() = %q, want empty", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		CategoryID:  1,
		Amount:      Cents(-1250),
		Date:        NewDate(2025, 1, 1),
		Description: "groceries",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]Transaction{
		"missing category": {Amount: Cents(1), Date: NewDate(2025, 1, 1)},
		"zero amount":      {CategoryID: 1, Date: NewDate(2025, 1, 1)},
		"zero date":        {CategoryID: 1, Amount: Cents(1)},
		"long description": {CategoryID: 1, Amount: Cents(1), Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", 256)},
		"amount too large": {CategoryID: 1, Amount: Cents(MaxAmountCents + 1), Date: NewDate(2025, 1, 1)},
		"amount too small": {CategoryID: 1, Amount: Cents(-MaxAmountCents - 1), Date: NewDate(2025, 1, 1)},
	}
	for name, tx := range bads {
		err := tx.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRecurringValidate(t *testing.T) {
	base := RecurringDefinition{
		CategoryID:  1,
		Amount:      Cents(900),
		Description: "rent",
		Frequency:   Monthly,
		StartDate:   NewDate(2024, 1, 1),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	endBefore := base
	endBefore.EndDate = NewDate(2023, 12, 31)
	if err := endBefore.Validate(); err == nil {
		t.Error("expected error for end date before start")
	}

	badFreq := base
	badFreq.Frequency = "fortnightly"
	if err := badFreq.Validate(); err == nil {
		t.Error("expected error for unknown frequency")
	}

	noDesc := base
	noDesc.Description = "  "
	if err := noDesc.Validate(); err == nil {
		t.Error("expected error for blank description")
	}
}

func TestRecurringIsDue(t *testing.T) {
	today := NewDate(2024, 3, 10)
	tests := []struct {
		name string
		def  RecurringDefinition
		want bool
	}{
		{
			name: "cursor in the past",
			def:  RecurringDefinition{Active: true, NextDueDate: NewDate(2024, 3, 1)},
			want: true,
		},
		{
			name: "cursor today",
			def:  RecurringDefinition{Active: true, NextDueDate: today},
			want: true,
		},
		{
			name: "cursor in the future",
			def:  RecurringDefinition{Active: true, NextDueDate: NewDate(2024, 3, 11)},
			want: false,
		},
		{
			name: "inactive",
			def:  RecurringDefinition{Active: false, NextDueDate: NewDate(2024, 3, 1)},
			want: false,
		},
		{
			name: "cursor on end date",
			def:  RecurringDefinition{Active: true, NextDueDate: NewDate(2024, 3, 1), EndDate: NewDate(2024, 3, 1)},
			want: true,
		},
		{
			name: "cursor past end date",
			def:  RecurringDefinition{Active: true, NextDueDate: NewDate(2024, 3, 2), EndDate: NewDate(2024, 3, 1)},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.def.IsDue(today); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	goal := int64(7)
	def := RecurringDefinition{
		ID:          3,
		Owner:       "alice",
		CategoryID:  2,
		Amount:      Cents(-4500),
		Description: "gym",
		NextDueDate: NewDate(2024, 5, 1),
		GoalID:      &goal,
	}
	tx := def.Materialize()
	if tx.Owner != "alice" || tx.CategoryID != 2 || tx.Amount != def.Amount || tx.Description != "gym" {
		t.Fatalf("Materialize() copied fields wrong: %+v", tx)
	}
	if !tx.Date.Equal(def.NextDueDate.Time) {
		t.Errorf("Materialize() date = %s, want %s", tx.Date, def.NextDueDate)
	}
	if tx.RecurringID == nil || *tx.RecurringID != 3 {
		t.Errorf("Materialize() recurring link = %v", tx.RecurringID)
	}
	if tx.GoalID == nil || *tx.GoalID != 7 {
		t.Errorf("Materialize() goal link = %v", tx.GoalID)
	}
	if tx.AccountID != nil {
		t.Errorf("Materialize() should not set an account")
	}
}

func TestContributionDelta(t *testing.T) {
	if got := ContributionDelta(Income, Cents(50)); got.Cents != 50 {
		t.Errorf("income delta = %d, want 50", got.Cents)
	}
	if got := ContributionDelta(Expense, Cents(50)); got.Cents != -50 {
		t.Errorf("expense delta = %d, want -50", got.Cents)
	}
	if got := ContributionDelta(Expense, Cents(-50)); got.Cents != 50 {
		t.Errorf("negative expense delta = %d, want 50", got.Cents)
	}
}

func TestGoalProgress(t *testing.T) {
	g := SavingsGoal{Target: Cents(1000), Current: Cents(250)}
	if got := g.Progress(); got != 25 {
		t.Errorf("Progress() = %v, want 25", got)
	}
	g.Target = Cents(0)
	if got := g.Progress(); got != 0 {
		t.Errorf("Progress() with zero target = %v, want 0", got)
	}
}
