package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// AccountLedger owns the cached current balance of accounts. The cache is
// only ever written by Recompute.
type AccountLedger struct{}

func NewAccountLedger() *AccountLedger {
	return &AccountLedger{}
}

// Recompute derives the balance from every transaction linked to the account
// as opening + income - |expense| and stores it.
func (l *AccountLedger) Recompute(ctx context.Context, s *storage.Scope, accountID int64) (core.Money, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return core.Money{}, err
	}

	income, expense, err := s.SumAccountByKind(ctx, accountID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum account transactions: %w", err)
	}

	balance := account.OpeningBalance.Add(income).Sub(expense.Abs())
	if err := s.SetAccountBalance(ctx, accountID, balance); err != nil {
		return core.Money{}, fmt.Errorf("store account balance: %w", err)
	}

	slog.DebugContext(ctx, "Account balance recomputed",
		"owner", s.Owner(),
		"account_id", accountID,
		"balance_cents", balance.Cents)
	return balance, nil
}

// recomputeAll recomputes each distinct non-nil account once.
func (l *AccountLedger) recomputeAll(ctx context.Context, s *storage.Scope, ids ...*int64) ([]int64, error) {
	seen := make(map[int64]bool, len(ids))
	var touched []int64
	for _, id := range ids {
		if id == nil || seen[*id] {
			continue
		}
		seen[*id] = true
		if _, err := l.Recompute(ctx, s, *id); err != nil {
			return nil, fmt.Errorf("recompute account %d: %w", *id, err)
		}
		touched = append(touched, *id)
	}
	return touched, nil
}
