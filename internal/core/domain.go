package core

import (
	"strings"
	"time"
)

const (
	Income  CategoryKind = "income"
	Expense CategoryKind = "expense"
)

const (
	Cash         AccountType = "cash"
	Bank         AccountType = "bank"
	Credit       AccountType = "credit"
	Savings      AccountType = "savings"
	OtherAccount AccountType = "other"
)

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const maxDescriptionLen = 255

type (
	CategoryKind string
	AccountType  string
	Frequency    string

	Category struct {
		ID    int64
		Owner string
		Name  string
		Kind  CategoryKind
	}

	Account struct {
		ID             int64
		Owner          string
		Name           string
		Type           AccountType
		OpeningBalance Money
		CurrentBalance Money // cache maintained by the ledger
		Active         bool
		CreatedAt      time.Time
	}

	Transaction struct {
		ID          int64
		Owner       string
		CategoryID  int64
		AccountID   *int64
		Amount      Money
		Date        Date
		Description string
		GoalID      *int64
		RecurringID *int64
	}

	SavingsGoal struct {
		ID        int64
		Owner     string
		Name      string
		Target    Money
		Current   Money
		StartDate Date
		EndDate   Date // zero when open-ended
	}

	RecurringDefinition struct {
		ID          int64
		Owner       string
		CategoryID  int64
		Amount      Money
		Description string
		Frequency   Frequency
		StartDate   Date
		EndDate     Date // zero when open-ended
		Active      bool
		NextDueDate Date
		GoalID      *int64
	}
)

func (k CategoryKind) Valid() bool {
	return k == Income || k == Expense
}

// Label is the human readable kind used in exports.
func (k CategoryKind) Label() string {
	if k == Income {
		return "Income"
	}
	return "Expense"
}

func (t AccountType) Valid() bool {
	switch t {
	case Cash, Bank, Credit, Savings, OtherAccount:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if len(c.Name) > 100 {
		return NewValidationError("name", "too long (max 100 characters)")
	}
	if !c.Kind.Valid() {
		return NewValidationError("kind", "must be income or expense")
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if !a.Type.Valid() {
		return NewValidationError("type", "unknown account type")
	}
	if !a.OpeningBalance.InRange() {
		return NewValidationError("opening_balance", "out of range")
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.CategoryID <= 0 {
		return NewValidationError("category_id", "is required")
	}
	if t.Amount.IsZero() {
		return NewValidationError("amount", "must not be zero")
	}
	if !t.Amount.InRange() {
		return NewValidationError("amount", "out of range")
	}
	if err := t.Date.Validate(); err != nil {
		return NewValidationError("date", err.Error())
	}
	if len(t.Description) > maxDescriptionLen {
		return NewValidationError("description", "too long (max 255 characters)")
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return NewValidationError("name", "must not be empty")
	}
	if err := g.Target.Validate(); err != nil {
		return NewValidationError("target", err.Error())
	}
	if err := g.StartDate.Validate(); err != nil {
		return NewValidationError("start_date", err.Error())
	}
	if !g.EndDate.IsEmpty() && g.EndDate.Before(g.StartDate.Time) {
		return NewValidationError("end_date", "must not be before start date")
	}
	return nil
}

// Progress returns how much of the target has been saved, in percent.
func (g SavingsGoal) Progress() float64 {
	if g.Target.Cents <= 0 {
		return 0
	}
	return g.Current.PercentOf(g.Target)
}

func (r RecurringDefinition) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return NewValidationError("start_date", err.Error())
	}
	if !r.EndDate.IsEmpty() {
		if err := r.EndDate.Validate(); err != nil {
			return NewValidationError("end_date", err.Error())
		}
		if r.EndDate.Before(r.StartDate.Time) {
			return NewValidationError("end_date", "must not be before start date")
		}
	}
	if !r.Frequency.Valid() {
		return NewValidationError("frequency", "invalid repetition type")
	}
	if r.CategoryID <= 0 {
		return NewValidationError("category_id", "is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return NewValidationError("description", "must not be empty")
	}
	if len(r.Description) > maxDescriptionLen {
		return NewValidationError("description", "too long (max 255 characters)")
	}
	if r.Amount.IsZero() {
		return NewValidationError("amount", "must not be zero")
	}
	if !r.Amount.InRange() {
		return NewValidationError("amount", "out of range")
	}
	return nil
}

// WithinWindow reports whether the cursor has not yet passed the end date.
func (r RecurringDefinition) WithinWindow() bool {
	return r.EndDate.IsEmpty() || !r.NextDueDate.After(r.EndDate.Time)
}

// IsDue reports whether the definition should materialize an occurrence on today.
func (r RecurringDefinition) IsDue(today Date) bool {
	return r.Active && !r.NextDueDate.After(today.Time) && r.WithinWindow()
}

// Materialize builds the concrete transaction for the current cursor.
func (r RecurringDefinition) Materialize() Transaction {
	id := r.ID
	return Transaction{
		Owner:       r.Owner,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Date:        r.NextDueDate,
		Description: r.Description,
		GoalID:      r.GoalID,
		RecurringID: &id,
	}
}

// ContributionDelta is the signed amount a transaction adds to its linked goal.
func ContributionDelta(kind CategoryKind, amount Money) Money {
	if kind == Income {
		return amount
	}
	return amount.Neg()
}
