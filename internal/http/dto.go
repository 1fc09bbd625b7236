package http

import (
	"strings"
	"time"

	"saldo/internal/core"
)

// Amounts travel as decimal strings ("-12.50") through core.Money's text
// marshalling; dates as YYYY-MM-DD strings.

type TransactionRequest struct {
	CategoryID  int64      `json:"category_id"`
	AccountID   *int64     `json:"account_id,omitempty"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	GoalID      *int64     `json:"goal_id,omitempty"`
}

func (req TransactionRequest) toDomain() (core.Transaction, error) {
	date, err := requiredDate("date", req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		GoalID:      req.GoalID,
	}, nil
}

type TransactionResponse struct {
	ID          int64      `json:"id"`
	CategoryID  int64      `json:"category_id"`
	AccountID   *int64     `json:"account_id,omitempty"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	GoalID      *int64     `json:"goal_id,omitempty"`
	RecurringID *int64     `json:"recurring_id,omitempty"`
}

func newTransactionResponse(t core.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		Amount:      t.Amount,
		Date:        t.Date.String(),
		Description: t.Description,
		GoalID:      t.GoalID,
		RecurringID: t.RecurringID,
	}
}

type CategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func newCategoryResponse(c core.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Kind: string(c.Kind)}
}

type AccountRequest struct {
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	OpeningBalance core.Money `json:"opening_balance"`
}

type AccountResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	OpeningBalance core.Money `json:"opening_balance"`
	CurrentBalance core.Money `json:"current_balance"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

func newAccountResponse(a core.Account) AccountResponse {
	return AccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Type:           string(a.Type),
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		Active:         a.Active,
		CreatedAt:      a.CreatedAt,
	}
}

type GoalRequest struct {
	Name      string     `json:"name"`
	Target    core.Money `json:"target"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date,omitempty"`
}

func (req GoalRequest) toDomain() (core.SavingsGoal, error) {
	start, err := requiredDate("start_date", req.StartDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	end, err := optionalDate("end_date", req.EndDate)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return core.SavingsGoal{
		Name:      strings.TrimSpace(req.Name),
		Target:    req.Target,
		StartDate: start,
		EndDate:   end,
	}, nil
}

type GoalResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Target    core.Money `json:"target"`
	Current   core.Money `json:"current"`
	Progress  float64    `json:"progress"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date,omitempty"`
}

func newGoalResponse(g core.SavingsGoal) GoalResponse {
	return GoalResponse{
		ID:        g.ID,
		Name:      g.Name,
		Target:    g.Target,
		Current:   g.Current,
		Progress:  g.Progress(),
		StartDate: g.StartDate.String(),
		EndDate:   g.EndDate.String(),
	}
}

type ReconcileResponse struct {
	GoalID int64      `json:"goal_id"`
	Before core.Money `json:"before"`
	After  core.Money `json:"after"`
	Drift  core.Money `json:"drift"`
}

type BudgetRequest struct {
	CategoryID int64      `json:"category_id"`
	Planned    core.Money `json:"planned"`
	Period     string     `json:"period"`
	Year       int        `json:"year"`
	Month      *int       `json:"month,omitempty"`
	Active     *bool      `json:"active,omitempty"` // defaults to true
}

func (req BudgetRequest) toDomain() core.Budget {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return core.Budget{
		CategoryID: req.CategoryID,
		Planned:    req.Planned,
		Period:     core.PeriodKind(strings.ToLower(req.Period)),
		Year:       req.Year,
		Month:      req.Month,
		Active:     active,
	}
}

type BudgetResponse struct {
	ID           int64      `json:"id"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Planned      core.Money `json:"planned"`
	Period       string     `json:"period"`
	Year         int        `json:"year"`
	Month        *int       `json:"month,omitempty"`
	Active       bool       `json:"active"`
	Label        string     `json:"label"`
	WindowStart  string     `json:"window_start"`
	WindowEnd    string     `json:"window_end"`
}

func newBudgetResponse(b core.Budget) BudgetResponse {
	start, end := b.Window()
	return BudgetResponse{
		ID:           b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		Planned:      b.Planned,
		Period:       string(b.Period),
		Year:         b.Year,
		Month:        b.Month,
		Active:       b.Active,
		Label:        b.Label(),
		WindowStart:  start.String(),
		WindowEnd:    end.String(),
	}
}

type BudgetEvaluationResponse struct {
	Budget         BudgetResponse `json:"budget"`
	Actual         core.Money     `json:"actual"`
	Remaining      core.Money     `json:"remaining"`
	PercentageUsed float64        `json:"percentage_used"`
	Status         string         `json:"status"`
}

func newBudgetEvaluationResponse(e core.BudgetEvaluation) BudgetEvaluationResponse {
	return BudgetEvaluationResponse{
		Budget:         newBudgetResponse(e.Budget),
		Actual:         e.Actual,
		Remaining:      e.Remaining,
		PercentageUsed: e.PercentageUsed,
		Status:         string(e.Status),
	}
}

type CategoryAnalysisResponse struct {
	CategoryID     int64            `json:"category_id"`
	CategoryName   string           `json:"category_name"`
	TotalPlanned   core.Money       `json:"total_planned"`
	TotalActual    core.Money       `json:"total_actual"`
	Remaining      core.Money       `json:"remaining"`
	PercentageUsed float64          `json:"percentage_used"`
	Status         string           `json:"status"`
	Budgets        []BudgetResponse `json:"budgets"`
}

func newCategoryAnalysisResponse(a core.CategoryAnalysis) CategoryAnalysisResponse {
	return CategoryAnalysisResponse{
		CategoryID:     a.CategoryID,
		CategoryName:   a.CategoryName,
		TotalPlanned:   a.TotalPlanned,
		TotalActual:    a.TotalActual,
		Remaining:      a.Remaining,
		PercentageUsed: a.PercentageUsed,
		Status:         string(a.Status),
		Budgets:        mapSlice(a.Budgets, newBudgetResponse),
	}
}

type RecurringRequest struct {
	CategoryID  int64      `json:"category_id"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Frequency   string     `json:"frequency"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date,omitempty"`
	GoalID      *int64     `json:"goal_id,omitempty"`
}

func (req RecurringRequest) toDomain() (core.RecurringDefinition, error) {
	start, err := requiredDate("start_date", req.StartDate)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	end, err := optionalDate("end_date", req.EndDate)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	return core.RecurringDefinition{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: strings.TrimSpace(req.Description),
		Frequency:   core.Frequency(strings.ToLower(req.Frequency)),
		StartDate:   start,
		EndDate:     end,
		Active:      true,
		GoalID:      req.GoalID,
	}, nil
}

type RecurringResponse struct {
	ID          int64      `json:"id"`
	CategoryID  int64      `json:"category_id"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Frequency   string     `json:"frequency"`
	StartDate   string     `json:"start_date"`
	EndDate     string     `json:"end_date,omitempty"`
	Active      bool       `json:"active"`
	NextDueDate string     `json:"next_due_date"`
	GoalID      *int64     `json:"goal_id,omitempty"`
}

func newRecurringResponse(r core.RecurringDefinition) RecurringResponse {
	return RecurringResponse{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		Amount:      r.Amount,
		Description: r.Description,
		Frequency:   string(r.Frequency),
		StartDate:   r.StartDate.String(),
		EndDate:     r.EndDate.String(),
		Active:      r.Active,
		NextDueDate: r.NextDueDate.String(),
		GoalID:      r.GoalID,
	}
}

type ActiveRequest struct {
	Active *bool `json:"active"`
}

type ProcessResponse struct {
	Date      string `json:"date"`
	Processed int    `json:"processed"`
}

type SheetExportResponse struct {
	Range string `json:"range"`
	Rows  int    `json:"rows"`
}

type CategoryAmountResponse struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

type MonthOverviewResponse struct {
	Year      int                      `json:"year"`
	Month     int                      `json:"month"`
	Income    core.Money               `json:"income"`
	Expenses  core.Money               `json:"expenses"`
	Net       core.Money               `json:"net"`
	ByExpense []CategoryAmountResponse `json:"by_expense"`
}

func newMonthOverviewResponse(o core.MonthOverview) MonthOverviewResponse {
	return MonthOverviewResponse{
		Year:     o.Year,
		Month:    o.Month,
		Income:   o.Income,
		Expenses: o.Expenses,
		Net:      o.Net,
		ByExpense: mapSlice(o.ByExpense, func(c core.CategoryAmount) CategoryAmountResponse {
			return CategoryAmountResponse{Name: c.Name, Amount: c.Amount}
		}),
	}
}

type MonthTotalsResponse struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
}

type DashboardResponse struct {
	Month               MonthOverviewResponse      `json:"month"`
	History             []MonthTotalsResponse      `json:"history"`
	Goals               []GoalResponse             `json:"goals"`
	Budgets             []BudgetEvaluationResponse `json:"budgets"`
	TotalBudget         core.Money                 `json:"total_budget"`
	TotalSpent          core.Money                 `json:"total_spent"`
	OverBudgetCount     int                        `json:"over_budget_count"`
	Accounts            []AccountResponse          `json:"accounts"`
	TotalAccountBalance core.Money                 `json:"total_account_balance"`
	ActiveRecurring     int64                      `json:"active_recurring"`
}

func newDashboardResponse(d core.Dashboard) DashboardResponse {
	return DashboardResponse{
		Month: newMonthOverviewResponse(d.Month),
		History: mapSlice(d.History, func(m core.MonthTotals) MonthTotalsResponse {
			return MonthTotalsResponse{Year: m.Year, Month: m.Month, Income: m.Income, Expenses: m.Expenses}
		}),
		Goals:               mapSlice(d.Goals, newGoalResponse),
		Budgets:             mapSlice(d.Budgets, newBudgetEvaluationResponse),
		TotalBudget:         d.TotalBudget,
		TotalSpent:          d.TotalSpent,
		OverBudgetCount:     d.OverBudgetCount,
		Accounts:            mapSlice(d.Accounts, newAccountResponse),
		TotalAccountBalance: d.TotalAccountBalance,
		ActiveRecurring:     d.ActiveRecurring,
	}
}

// mapSlice converts every element; the result is never nil so empty lists
// encode as [] rather than null.
func mapSlice[S, D any](in []S, fn func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func requiredDate(field, v string) (core.Date, error) {
	if strings.TrimSpace(v) == "" {
		return core.Date{}, core.NewValidationError(field, "is required")
	}
	return optionalDate(field, v)
}

func optionalDate(field, v string) (core.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, core.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}
