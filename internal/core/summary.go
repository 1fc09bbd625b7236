package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthTotals holds income and expense totals for one calendar month.
type MonthTotals struct {
	Year     int
	Month    int // 1-12
	Income   Money
	Expenses Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year      int
	Month     int // 1-12
	Income    Money
	Expenses  Money // absolute value
	Net       Money
	ByExpense []CategoryAmount
}

// CategoryAnalysis groups the budgets of one category for a year.
type CategoryAnalysis struct {
	CategoryID     int64
	CategoryName   string
	TotalPlanned   Money
	TotalActual    Money
	Remaining      Money
	PercentageUsed float64
	Status         BudgetStatus
	Budgets        []Budget
}

// TransactionFilter is shared by listing and export.
type TransactionFilter struct {
	Kind       CategoryKind // empty for any
	CategoryID int64        // 0 for any
	From       Date
	To         Date
}

// ExportRow is one line of a transaction export.
type ExportRow struct {
	Date         Date
	KindLabel    string
	CategoryName string
	Amount       Money
	Description  string
	GoalName     string
}

// Dashboard is the owner's overview for the month containing a given day.
type Dashboard struct {
	Month               MonthOverview
	History             []MonthTotals // oldest first, expenses as absolute values
	Goals               []SavingsGoal
	Budgets             []BudgetEvaluation
	TotalBudget         Money
	TotalSpent          Money
	OverBudgetCount     int
	Accounts            []Account
	TotalAccountBalance Money
	ActiveRecurring     int64
}
