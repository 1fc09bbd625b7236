package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"saldo/internal/core"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the raw SQL of the repository. Every method takes the owner
// explicitly; callers outside this package go through Scope instead.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// ---- categories ----

const createCategory = `INSERT INTO categories (owner, name, kind) VALUES (?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, owner string, c core.Category) (int64, error) {
	res, err := q.db.ExecContext(ctx, createCategory, owner, c.Name, string(c.Kind))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getCategory = `SELECT id, owner, name, kind FROM categories WHERE owner = ? AND id = ?`

func (q *Queries) GetCategory(ctx context.Context, owner string, id int64) (core.Category, error) {
	var c core.Category
	var kind string
	err := q.db.QueryRowContext(ctx, getCategory, owner, id).Scan(&c.ID, &c.Owner, &c.Name, &kind)
	c.Kind = core.CategoryKind(kind)
	return c, err
}

const listCategories = `SELECT id, owner, name, kind FROM categories
WHERE owner = ? AND (? = '' OR kind = ?)
ORDER BY kind, name`

func (q *Queries) ListCategories(ctx context.Context, owner string, kind core.CategoryKind) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, owner, string(kind), string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Category
	for rows.Next() {
		var c core.Category
		var k string
		if err := rows.Scan(&c.ID, &c.Owner, &c.Name, &k); err != nil {
			return nil, err
		}
		c.Kind = core.CategoryKind(k)
		items = append(items, c)
	}
	return items, rows.Err()
}

const deleteCategory = `DELETE FROM categories WHERE owner = ? AND id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteCategory, owner, id)
}

// ---- accounts ----

const createAccount = `INSERT INTO accounts (owner, name, type, opening_balance_cents, current_balance_cents, active)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateAccount(ctx context.Context, owner string, a core.Account) (int64, error) {
	res, err := q.db.ExecContext(ctx, createAccount, owner, a.Name, string(a.Type),
		a.OpeningBalance.Cents, a.OpeningBalance.Cents, boolToInt(a.Active))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const accountColumns = `id, owner, name, type, opening_balance_cents, current_balance_cents, active, created_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (core.Account, error) {
	var (
		a                core.Account
		typ              string
		opening, current int64
		active           int64
		createdAt        time.Time
	)
	if err := row.Scan(&a.ID, &a.Owner, &a.Name, &typ, &opening, &current, &active, &createdAt); err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(typ)
	a.OpeningBalance = core.Cents(opening)
	a.CurrentBalance = core.Cents(current)
	a.Active = active != 0
	a.CreatedAt = createdAt
	return a, nil
}

func (q *Queries) GetAccount(ctx context.Context, owner string, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE owner = ? AND id = ?`, owner, id)
	return scanAccount(row)
}

func (q *Queries) ListAccounts(ctx context.Context, owner string, activeOnly bool) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner = ? AND (? = 0 OR active = 1) ORDER BY name`,
		owner, boolToInt(activeOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const deleteAccount = `DELETE FROM accounts WHERE owner = ? AND id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteAccount, owner, id)
}

const setAccountBalance = `UPDATE accounts SET current_balance_cents = ? WHERE owner = ? AND id = ?`

func (q *Queries) SetAccountBalance(ctx context.Context, owner string, id, cents int64) (int64, error) {
	return q.execRows(ctx, setAccountBalance, cents, owner, id)
}

const sumAccountByKind = `SELECT
    COALESCE(SUM(CASE WHEN c.kind = 'income' THEN t.amount_cents END), 0),
    COALESCE(SUM(CASE WHEN c.kind = 'expense' THEN t.amount_cents END), 0)
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.owner = ? AND t.account_id = ?`

// SumAccountByKind returns the signed income and expense sums linked to an account.
func (q *Queries) SumAccountByKind(ctx context.Context, owner string, accountID int64) (income, expense int64, err error) {
	err = q.db.QueryRowContext(ctx, sumAccountByKind, owner, accountID).Scan(&income, &expense)
	return income, expense, err
}

// ---- savings goals ----

const createGoal = `INSERT INTO savings_goals (owner, name, target_cents, current_cents, start_date, end_date)
VALUES (?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateGoal(ctx context.Context, owner string, g core.SavingsGoal) (int64, error) {
	res, err := q.db.ExecContext(ctx, createGoal, owner, g.Name, g.Target.Cents,
		g.StartDate.String(), nullDate(g.EndDate))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const goalColumns = `id, owner, name, target_cents, current_cents, start_date, end_date`

func scanGoal(row interface{ Scan(...interface{}) error }) (core.SavingsGoal, error) {
	var (
		g               core.SavingsGoal
		target, current int64
		start           string
		end             sql.NullString
	)
	if err := row.Scan(&g.ID, &g.Owner, &g.Name, &target, &current, &start, &end); err != nil {
		return core.SavingsGoal{}, err
	}
	g.Target = core.Cents(target)
	g.Current = core.Cents(current)
	var err error
	if g.StartDate, err = core.ParseDate(start); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal %d start_date: %w", g.ID, err)
	}
	if g.EndDate, err = parseNullDate(end); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal %d end_date: %w", g.ID, err)
	}
	return g, nil
}

func (q *Queries) GetGoal(ctx context.Context, owner string, id int64) (core.SavingsGoal, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE owner = ? AND id = ?`, owner, id)
	return scanGoal(row)
}

func (q *Queries) ListGoals(ctx context.Context, owner string) ([]core.SavingsGoal, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE owner = ? ORDER BY name, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const deleteGoal = `DELETE FROM savings_goals WHERE owner = ? AND id = ?`

func (q *Queries) DeleteGoal(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteGoal, owner, id)
}

const adjustGoalBalance = `UPDATE savings_goals SET current_cents = current_cents + ? WHERE owner = ? AND id = ?`

// AdjustGoalBalance adds delta to the goal counter and reports rows affected.
func (q *Queries) AdjustGoalBalance(ctx context.Context, owner string, id, delta int64) (int64, error) {
	return q.execRows(ctx, adjustGoalBalance, delta, owner, id)
}

const setGoalBalance = `UPDATE savings_goals SET current_cents = ? WHERE owner = ? AND id = ?`

func (q *Queries) SetGoalBalance(ctx context.Context, owner string, id, cents int64) (int64, error) {
	return q.execRows(ctx, setGoalBalance, cents, owner, id)
}

const sumGoalContributions = `SELECT COALESCE(SUM(CASE WHEN c.kind = 'income' THEN t.amount_cents ELSE -t.amount_cents END), 0)
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.owner = ? AND t.goal_id = ?`

// SumGoalContributions recomputes a goal balance from the transactions linked to it.
func (q *Queries) SumGoalContributions(ctx context.Context, owner string, goalID int64) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumGoalContributions, owner, goalID).Scan(&sum)
	return sum, err
}

// ---- transactions ----

const createTransaction = `INSERT INTO transactions (owner, category_id, account_id, amount_cents, date, description, goal_id, recurring_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, owner string, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction, owner, t.CategoryID, nullID(t.AccountID),
		t.Amount.Cents, t.Date.String(), t.Description, nullID(t.GoalID), nullID(t.RecurringID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const transactionColumns = `id, owner, category_id, account_id, amount_cents, date, description, goal_id, recurring_id`

func scanTransaction(row interface{ Scan(...interface{}) error }) (core.Transaction, error) {
	var (
		t                        core.Transaction
		amount                   int64
		date                     string
		account, goal, recurring sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Owner, &t.CategoryID, &account, &amount, &date, &t.Description, &goal, &recurring); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", t.ID, err)
	}
	t.Date = d
	t.Amount = core.Cents(amount)
	t.AccountID = idPtr(account)
	t.GoalID = idPtr(goal)
	t.RecurringID = idPtr(recurring)
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE owner = ? AND id = ?`, owner, id)
	return scanTransaction(row)
}

const updateTransaction = `UPDATE transactions
SET category_id = ?, account_id = ?, amount_cents = ?, date = ?, description = ?, goal_id = ?
WHERE owner = ? AND id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, owner string, t core.Transaction) (int64, error) {
	return q.execRows(ctx, updateTransaction, t.CategoryID, nullID(t.AccountID), t.Amount.Cents,
		t.Date.String(), t.Description, nullID(t.GoalID), owner, t.ID)
}

const deleteTransaction = `DELETE FROM transactions WHERE owner = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteTransaction, owner, id)
}

// filterClause renders the shared listing filter against the aliases t and c.
func filterClause(owner string, f core.TransactionFilter) (string, []interface{}) {
	where := []string{"t.owner = ?"}
	args := []interface{}{owner}
	if f.Kind != "" {
		where = append(where, "c.kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.CategoryID > 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.From.IsEmpty() {
		where = append(where, "t.date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsEmpty() {
		where = append(where, "t.date <= ?")
		args = append(args, f.To.String())
	}
	return strings.Join(where, " AND "), args
}

func (q *Queries) ListTransactions(ctx context.Context, owner string, f core.TransactionFilter, limit int) ([]core.Transaction, error) {
	where, args := filterClause(owner, f)
	query := `SELECT t.id, t.owner, t.category_id, t.account_id, t.amount_cents, t.date, t.description, t.goal_id, t.recurring_id
FROM transactions t JOIN categories c ON c.id = t.category_id
WHERE ` + where + ` ORDER BY t.date DESC, t.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (q *Queries) ExportRows(ctx context.Context, owner string, f core.TransactionFilter) ([]core.ExportRow, error) {
	where, args := filterClause(owner, f)
	query := `SELECT t.date, c.kind, c.name, t.amount_cents, t.description, COALESCE(g.name, '')
FROM transactions t
JOIN categories c ON c.id = t.category_id
LEFT JOIN savings_goals g ON g.id = t.goal_id
WHERE ` + where + ` ORDER BY t.date DESC, t.id DESC`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.ExportRow
	for rows.Next() {
		var (
			r      core.ExportRow
			date   string
			kind   string
			amount int64
		)
		if err := rows.Scan(&date, &kind, &r.CategoryName, &amount, &r.Description, &r.GoalName); err != nil {
			return nil, err
		}
		if r.Date, err = core.ParseDate(date); err != nil {
			return nil, err
		}
		r.KindLabel = core.CategoryKind(kind).Label()
		r.Amount = core.Cents(amount)
		items = append(items, r)
	}
	return items, rows.Err()
}

const sumCategoryWindow = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE owner = ? AND category_id = ? AND date >= ? AND date <= ?`

// SumCategoryWindow returns the signed sum of a category in [from, to].
func (q *Queries) SumCategoryWindow(ctx context.Context, owner string, categoryID int64, from, to core.Date) (int64, error) {
	var sum int64
	err := q.db.QueryRowContext(ctx, sumCategoryWindow, owner, categoryID, from.String(), to.String()).Scan(&sum)
	return sum, err
}

const sumByKindWindow = `SELECT
    COALESCE(SUM(CASE WHEN c.kind = 'income' THEN t.amount_cents END), 0),
    COALESCE(SUM(CASE WHEN c.kind = 'expense' THEN t.amount_cents END), 0)
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.owner = ? AND t.date >= ? AND t.date <= ?`

func (q *Queries) SumByKindWindow(ctx context.Context, owner string, from, to core.Date) (income, expense int64, err error) {
	err = q.db.QueryRowContext(ctx, sumByKindWindow, owner, from.String(), to.String()).Scan(&income, &expense)
	return income, expense, err
}

const expenseByCategory = `SELECT c.name, ABS(SUM(t.amount_cents)) AS total
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.owner = ? AND c.kind = 'expense' AND t.date >= ? AND t.date <= ?
GROUP BY c.id, c.name
ORDER BY total DESC, c.name`

func (q *Queries) ExpenseByCategory(ctx context.Context, owner string, from, to core.Date) ([]core.CategoryAmount, error) {
	rows, err := q.db.QueryContext(ctx, expenseByCategory, owner, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		var cents int64
		if err := rows.Scan(&ca.Name, &cents); err != nil {
			return nil, err
		}
		ca.Amount = core.Cents(cents)
		items = append(items, ca)
	}
	return items, rows.Err()
}

const monthlyTotals = `SELECT CAST(substr(t.date, 1, 4) AS INTEGER) AS y,
    CAST(substr(t.date, 6, 2) AS INTEGER) AS m,
    COALESCE(SUM(CASE WHEN c.kind = 'income' THEN t.amount_cents END), 0),
    COALESCE(SUM(CASE WHEN c.kind = 'expense' THEN t.amount_cents END), 0)
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.owner = ? AND t.date >= ? AND t.date <= ?
GROUP BY y, m
ORDER BY y, m`

// MonthlyTotals groups signed income and expense sums per calendar month.
func (q *Queries) MonthlyTotals(ctx context.Context, owner string, from, to core.Date) ([]core.MonthTotals, error) {
	rows, err := q.db.QueryContext(ctx, monthlyTotals, owner, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.MonthTotals
	for rows.Next() {
		var mt core.MonthTotals
		var income, expense int64
		if err := rows.Scan(&mt.Year, &mt.Month, &income, &expense); err != nil {
			return nil, err
		}
		mt.Income = core.Cents(income)
		mt.Expenses = core.Cents(expense)
		items = append(items, mt)
	}
	return items, rows.Err()
}

// ---- budgets ----

const createBudget = `INSERT INTO budgets (owner, category_id, planned_cents, period, year, month, active)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateBudget(ctx context.Context, owner string, b core.Budget) (int64, error) {
	var month interface{}
	if b.Month != nil {
		month = *b.Month
	}
	res, err := q.db.ExecContext(ctx, createBudget, owner, b.CategoryID, b.Planned.Cents,
		string(b.Period), b.Year, month, boolToInt(b.Active))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const budgetSelect = `SELECT b.id, b.owner, b.category_id, b.planned_cents, b.period, b.year, b.month, b.active, c.name
FROM budgets b JOIN categories c ON c.id = b.category_id`

func scanBudget(row interface{ Scan(...interface{}) error }) (core.Budget, error) {
	var (
		b       core.Budget
		planned int64
		period  string
		month   sql.NullInt64
		active  int64
	)
	if err := row.Scan(&b.ID, &b.Owner, &b.CategoryID, &planned, &period, &b.Year, &month, &active, &b.CategoryName); err != nil {
		return core.Budget{}, err
	}
	b.Planned = core.Cents(planned)
	b.Period = core.PeriodKind(period)
	if month.Valid {
		m := int(month.Int64)
		b.Month = &m
	}
	b.Active = active != 0
	return b, nil
}

func (q *Queries) queryBudgets(ctx context.Context, query string, args ...interface{}) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (q *Queries) GetBudget(ctx context.Context, owner string, id int64) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, budgetSelect+` WHERE b.owner = ? AND b.id = ?`, owner, id))
}

func (q *Queries) ListBudgets(ctx context.Context, owner string) ([]core.Budget, error) {
	return q.queryBudgets(ctx, budgetSelect+` WHERE b.owner = ? ORDER BY b.year DESC, b.month DESC, c.name`, owner)
}

// ListActiveBudgetsForYear orders by period, month and category name; the
// analysis grouping relies on that order.
func (q *Queries) ListActiveBudgetsForYear(ctx context.Context, owner string, year int) ([]core.Budget, error) {
	return q.queryBudgets(ctx, budgetSelect+` WHERE b.owner = ? AND b.year = ? AND b.active = 1
ORDER BY b.period, b.month, c.name, b.id`, owner, year)
}

func (q *Queries) ListActiveBudgetsForMonth(ctx context.Context, owner string, year, month int) ([]core.Budget, error) {
	return q.queryBudgets(ctx, budgetSelect+` WHERE b.owner = ? AND b.year = ? AND b.month = ? AND b.active = 1
ORDER BY c.name, b.id`, owner, year, month)
}

const deleteBudget = `DELETE FROM budgets WHERE owner = ? AND id = ?`

func (q *Queries) DeleteBudget(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteBudget, owner, id)
}

// ---- recurring definitions ----

const createRecurring = `INSERT INTO recurring_definitions
(owner, category_id, amount_cents, description, frequency, start_date, end_date, active, next_due_date, goal_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRecurring(ctx context.Context, owner string, r core.RecurringDefinition) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRecurring, owner, r.CategoryID, r.Amount.Cents, r.Description,
		string(r.Frequency), r.StartDate.String(), nullDate(r.EndDate), boolToInt(r.Active),
		r.NextDueDate.String(), nullID(r.GoalID))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const recurringColumns = `id, owner, category_id, amount_cents, description, frequency, start_date, end_date, active, next_due_date, goal_id`

func scanRecurring(row interface{ Scan(...interface{}) error }) (core.RecurringDefinition, error) {
	var (
		r           core.RecurringDefinition
		amount      int64
		frequency   string
		start, next string
		end         sql.NullString
		active      int64
		goal        sql.NullInt64
	)
	if err := row.Scan(&r.ID, &r.Owner, &r.CategoryID, &amount, &r.Description, &frequency,
		&start, &end, &active, &next, &goal); err != nil {
		return core.RecurringDefinition{}, err
	}
	var err error
	if r.StartDate, err = core.ParseDate(start); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("recurring %d start_date: %w", r.ID, err)
	}
	if r.EndDate, err = parseNullDate(end); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("recurring %d end_date: %w", r.ID, err)
	}
	if r.NextDueDate, err = core.ParseDate(next); err != nil {
		return core.RecurringDefinition{}, fmt.Errorf("recurring %d next_due_date: %w", r.ID, err)
	}
	r.Amount = core.Cents(amount)
	r.Frequency = core.Frequency(frequency)
	r.Active = active != 0
	r.GoalID = idPtr(goal)
	return r, nil
}

func (q *Queries) queryRecurring(ctx context.Context, query string, args ...interface{}) ([]core.RecurringDefinition, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []core.RecurringDefinition
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) GetRecurring(ctx context.Context, owner string, id int64) (core.RecurringDefinition, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_definitions WHERE owner = ? AND id = ?`, owner, id)
	return scanRecurring(row)
}

func (q *Queries) ListRecurring(ctx context.Context, owner string) ([]core.RecurringDefinition, error) {
	return q.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_definitions
WHERE owner = ? ORDER BY next_due_date, id`, owner)
}

// ListDueRecurring selects active definitions whose cursor is on or before
// today. An empty owner selects across all owners.
func (q *Queries) ListDueRecurring(ctx context.Context, owner string, today core.Date) ([]core.RecurringDefinition, error) {
	return q.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_definitions
WHERE active = 1 AND next_due_date <= ? AND (? = '' OR owner = ?)
ORDER BY next_due_date, id`, today.String(), owner, owner)
}

const advanceRecurring = `UPDATE recurring_definitions SET next_due_date = ? WHERE owner = ? AND id = ?`

func (q *Queries) AdvanceRecurring(ctx context.Context, owner string, id int64, next core.Date) (int64, error) {
	return q.execRows(ctx, advanceRecurring, next.String(), owner, id)
}

const setRecurringActive = `UPDATE recurring_definitions SET active = ? WHERE owner = ? AND id = ?`

func (q *Queries) SetRecurringActive(ctx context.Context, owner string, id int64, active bool) (int64, error) {
	return q.execRows(ctx, setRecurringActive, boolToInt(active), owner, id)
}

const countActiveRecurring = `SELECT COUNT(*) FROM recurring_definitions WHERE owner = ? AND active = 1`

func (q *Queries) CountActiveRecurring(ctx context.Context, owner string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countActiveRecurring, owner).Scan(&n)
	return n, err
}

const deleteRecurring = `DELETE FROM recurring_definitions WHERE owner = ? AND id = ?`

func (q *Queries) DeleteRecurring(ctx context.Context, owner string, id int64) (int64, error) {
	return q.execRows(ctx, deleteRecurring, owner, id)
}

// ---- helpers ----

func (q *Queries) execRows(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullDate(d core.Date) sql.NullString {
	if d.IsEmpty() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.String)
}
