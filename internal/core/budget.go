package core

import "fmt"

const (
	PeriodMonth   PeriodKind = "month"
	PeriodQuarter PeriodKind = "quarter"
	PeriodYear    PeriodKind = "year"
)

const (
	StatusUnder   BudgetStatus = "under"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// warningThreshold is the percentage of a budget above which spending is flagged.
const warningThreshold = 80.0

type (
	PeriodKind   string
	BudgetStatus string

	Budget struct {
		ID         int64
		Owner      string
		CategoryID int64
		Planned    Money
		Period     PeriodKind
		Year       int
		Month      *int // nil falls back to the first sub-period
		Active     bool

		CategoryName string // filled by listing queries
	}

	// BudgetEvaluation is the actual-vs-planned view of one budget.
	BudgetEvaluation struct {
		Budget         Budget
		Actual         Money
		Remaining      Money
		PercentageUsed float64
		Status         BudgetStatus
	}
)

func (p PeriodKind) Valid() bool {
	return p == PeriodMonth || p == PeriodQuarter || p == PeriodYear
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return NewValidationError("category_id", "is required")
	}
	if err := b.Planned.Validate(); err != nil {
		return NewValidationError("planned", err.Error())
	}
	if !b.Period.Valid() {
		return NewValidationError("period", "must be month, quarter or year")
	}
	if b.Year < 1900 || b.Year > 9999 {
		return NewValidationError("year", "out of range")
	}
	if b.Month != nil && (*b.Month < 1 || *b.Month > 12) {
		return NewValidationError("month", "must be between 1 and 12")
	}
	return nil
}

// Quarter returns the 1-based quarter the budget refers to. A nil month
// means the first quarter.
func (b Budget) Quarter() int {
	if b.Month == nil {
		return 1
	}
	return ((*b.Month - 1) / 3) + 1
}

// Window resolves the inclusive date range the budget covers.
func (b Budget) Window() (start, end Date) {
	switch b.Period {
	case PeriodYear:
		return NewDate(b.Year, 1, 1), NewDate(b.Year, 12, 31)
	case PeriodQuarter:
		q := b.Quarter()
		first, last := q*3-2, q*3
		return NewDate(b.Year, first, 1), NewDate(b.Year, last, DaysIn(b.Year, last))
	default:
		month := 1
		if b.Month != nil {
			month = *b.Month
		}
		return NewDate(b.Year, month, 1), NewDate(b.Year, month, DaysIn(b.Year, month))
	}
}

// Label renders the period for display, e.g. "Q2 2024" or "3/2024".
func (b Budget) Label() string {
	switch b.Period {
	case PeriodYear:
		return fmt.Sprintf("%d", b.Year)
	case PeriodQuarter:
		return fmt.Sprintf("Q%d %d", b.Quarter(), b.Year)
	default:
		month := 1
		if b.Month != nil {
			month = *b.Month
		}
		return fmt.Sprintf("%d/%d", month, b.Year)
	}
}

// Evaluate computes remaining, percentage and the dashboard status.
func (b Budget) Evaluate(actual Money) BudgetEvaluation {
	remaining := b.Planned.Sub(actual)
	pct := actual.PercentOf(b.Planned)
	return BudgetEvaluation{
		Budget:         b,
		Actual:         actual,
		Remaining:      remaining,
		PercentageUsed: pct,
		Status:         DashboardStatus(remaining, pct),
	}
}

// DashboardStatus flags warning strictly above the threshold.
func DashboardStatus(remaining Money, percentageUsed float64) BudgetStatus {
	switch {
	case remaining.Cents < 0:
		return StatusOver
	case percentageUsed > warningThreshold:
		return StatusWarning
	default:
		return StatusUnder
	}
}

// AnalysisStatus is used by the per-category analysis; unlike
// DashboardStatus it already warns at exactly the threshold.
func AnalysisStatus(remaining Money, percentageUsed float64) BudgetStatus {
	switch {
	case remaining.Cents < 0:
		return StatusOver
	case percentageUsed < warningThreshold:
		return StatusUnder
	default:
		return StatusWarning
	}
}
