package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/metrics"
	"saldo/internal/storage"
)

// EventPublisher receives a notification after every committed mutation.
type EventPublisher interface {
	PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error
}

// TransactionService is the only write path for transactions. Each mutation
// runs reverse-old, persist and apply-new together with the ledger recompute
// inside one database transaction.
type TransactionService struct {
	repo    *storage.SQLiteRepository
	ledger  *AccountLedger
	goals   *GoalTracker
	events  EventPublisher
	metrics *metrics.Metrics

	onChange []func(owner string)
}

func NewTransactionService(repo *storage.SQLiteRepository, events EventPublisher, m *metrics.Metrics) *TransactionService {
	return &TransactionService{
		repo:    repo,
		ledger:  NewAccountLedger(),
		goals:   NewGoalTracker(m),
		events:  events,
		metrics: m,
	}
}

// OnChange registers fn to run after any committed mutation for owner.
func (s *TransactionService) OnChange(fn func(owner string)) {
	s.onChange = append(s.onChange, fn)
}

func (s *TransactionService) notify(owner string) {
	for _, fn := range s.onChange {
		fn(owner)
	}
}

func (s *TransactionService) Ledger() *AccountLedger { return s.ledger }

func (s *TransactionService) Goals() *GoalTracker { return s.goals }

// mutation describes what a committed change touched, for the event.
type mutation struct {
	owner       string
	op          string
	tx          core.Transaction
	accountIDs  []int64
	goalIDs     []int64
	recurringID *int64
}

func (s *TransactionService) Get(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	return s.repo.ForOwner(owner).GetTransaction(ctx, id)
}

func (s *TransactionService) List(ctx context.Context, owner string, f core.TransactionFilter, limit int) ([]core.Transaction, error) {
	return s.repo.ForOwner(owner).ListTransactions(ctx, f, limit)
}

// Create persists t, recomputes its account and applies its goal contribution.
func (s *TransactionService) Create(ctx context.Context, owner string, t core.Transaction) (core.Transaction, error) {
	var m mutation
	err := s.repo.InTx(ctx, owner, func(sc *storage.Scope) error {
		var err error
		m, err = s.createInScope(ctx, sc, t)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.committed(ctx, m)
	return m.tx, nil
}

// createInScope is shared with the recurring engine, which needs the create
// and its own cursor update in the same database transaction.
func (s *TransactionService) createInScope(ctx context.Context, sc *storage.Scope, t core.Transaction) (mutation, error) {
	if err := t.Validate(); err != nil {
		return mutation{}, err
	}
	category, err := s.checkReferences(ctx, sc, t)
	if err != nil {
		return mutation{}, err
	}

	created, err := sc.CreateTransaction(ctx, t)
	if err != nil {
		return mutation{}, err
	}

	accounts, err := s.ledger.recomputeAll(ctx, sc, created.AccountID)
	if err != nil {
		return mutation{}, err
	}
	if err := s.goals.Apply(ctx, sc, created.GoalID, category.Kind, created.Amount); err != nil {
		return mutation{}, err
	}

	return mutation{
		owner:       sc.Owner(),
		op:          amqp.OpCreated,
		tx:          created,
		accountIDs:  accounts,
		goalIDs:     ids(created.GoalID),
		recurringID: created.RecurringID,
	}, nil
}

// Update replaces the stored transaction with t (matched by t.ID). The old
// contribution is reversed with the old category kind before the new one is
// applied with the new kind.
func (s *TransactionService) Update(ctx context.Context, owner string, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var m mutation
	err := s.repo.InTx(ctx, owner, func(sc *storage.Scope) error {
		old, err := sc.GetTransaction(ctx, t.ID)
		if err != nil {
			return err
		}
		oldCategory, err := sc.GetCategory(ctx, old.CategoryID)
		if err != nil {
			return err
		}
		newCategory, err := s.checkReferences(ctx, sc, t)
		if err != nil {
			return err
		}

		if err := s.goals.Reverse(ctx, sc, old.GoalID, oldCategory.Kind, old.Amount); err != nil {
			return err
		}

		t.Owner = sc.Owner()
		t.RecurringID = old.RecurringID
		if err := sc.UpdateTransaction(ctx, t); err != nil {
			return err
		}

		if err := s.goals.Apply(ctx, sc, t.GoalID, newCategory.Kind, t.Amount); err != nil {
			return err
		}
		accounts, err := s.ledger.recomputeAll(ctx, sc, old.AccountID, t.AccountID)
		if err != nil {
			return err
		}

		m = mutation{
			owner:       sc.Owner(),
			op:          amqp.OpUpdated,
			tx:          t,
			accountIDs:  accounts,
			goalIDs:     uniqueIDs(old.GoalID, t.GoalID),
			recurringID: t.RecurringID,
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	s.committed(ctx, m)
	return m.tx, nil
}

// Delete reverses the transaction's contribution, removes it and recomputes
// its account.
func (s *TransactionService) Delete(ctx context.Context, owner string, id int64) error {
	var m mutation
	err := s.repo.InTx(ctx, owner, func(sc *storage.Scope) error {
		old, err := sc.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		category, err := sc.GetCategory(ctx, old.CategoryID)
		if err != nil {
			return err
		}

		if err := s.goals.Reverse(ctx, sc, old.GoalID, category.Kind, old.Amount); err != nil {
			return err
		}
		if err := sc.DeleteTransaction(ctx, id); err != nil {
			return err
		}
		accounts, err := s.ledger.recomputeAll(ctx, sc, old.AccountID)
		if err != nil {
			return err
		}

		m = mutation{
			owner:       sc.Owner(),
			op:          amqp.OpDeleted,
			tx:          old,
			accountIDs:  accounts,
			goalIDs:     ids(old.GoalID),
			recurringID: old.RecurringID,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.committed(ctx, m)
	return nil
}

// checkReferences resolves the category and verifies the optional account
// and goal exist in the owner's scope.
func (s *TransactionService) checkReferences(ctx context.Context, sc *storage.Scope, t core.Transaction) (core.Category, error) {
	category, err := sc.GetCategory(ctx, t.CategoryID)
	if err != nil {
		return core.Category{}, err
	}
	if t.AccountID != nil {
		if _, err := sc.GetAccount(ctx, *t.AccountID); err != nil {
			return core.Category{}, err
		}
	}
	if t.GoalID != nil {
		if _, err := sc.GetGoal(ctx, *t.GoalID); err != nil {
			return core.Category{}, err
		}
	}
	return category, nil
}

// committed runs the post-commit side effects. None of them can fail the
// mutation.
func (s *TransactionService) committed(ctx context.Context, m mutation) {
	s.metrics.IncMutation(m.op)
	s.notify(m.owner)

	slog.InfoContext(ctx, "Transaction mutation committed",
		"owner", m.owner,
		"op", m.op,
		"transaction_id", m.tx.ID,
		"amount_cents", m.tx.Amount.Cents,
		"date", m.tx.Date.String())

	if s.events == nil {
		return
	}
	msg := amqp.NewTransactionChangedMessage(m.owner, m.tx.ID, m.op)
	msg.AccountIDs = m.accountIDs
	msg.GoalIDs = m.goalIDs
	msg.RecurringID = m.recurringID
	if err := s.events.PublishTransactionChanged(ctx, msg); err != nil {
		s.metrics.IncPublishFailure(amqp.RoutingTransactionChanged)
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", m.tx.ID,
			"error", err)
	}
}

func ids(id *int64) []int64 {
	if id == nil {
		return nil
	}
	return []int64{*id}
}

func uniqueIDs(a, b *int64) []int64 {
	out := ids(a)
	if b != nil && (a == nil || *a != *b) {
		out = append(out, *b)
	}
	return out
}
