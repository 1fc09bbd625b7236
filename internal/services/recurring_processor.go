package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/core"
	"saldo/internal/metrics"
	"saldo/internal/storage"
)

// AllOwners selects every owner's definitions in ProcessDue.
const AllOwners = ""

// errNotDue marks a definition that stopped being due between listing and
// locking it; it is skipped without counting as a failure.
var errNotDue = errors.New("definition no longer due")

// RecurringProcessor materializes due recurring definitions through the
// transaction pipeline.
type RecurringProcessor struct {
	storage      *storage.SQLiteRepository
	transactions *TransactionService
	metrics      *metrics.Metrics
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, transactions *TransactionService, m *metrics.Metrics) *RecurringProcessor {
	return &RecurringProcessor{
		storage:      storage,
		transactions: transactions,
		metrics:      m,
	}
}

// ProcessDue creates at most one transaction per due definition and returns
// how many were created. owner may be AllOwners. A definition that fails is
// logged and skipped; only a failure to list definitions is returned.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, owner string, today core.Date) (int, error) {
	if p.storage == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	started := time.Now()

	var (
		due []core.RecurringDefinition
		err error
	)
	if owner == AllOwners {
		due, err = p.storage.ListDueRecurring(ctx, today)
	} else {
		due, err = p.storage.ForOwner(owner).ListDueRecurring(ctx, today)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get due recurring definitions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring definitions",
		"owner", owner,
		"total_due", len(due),
		"processing_date", today.String())

	processed := 0
	for _, def := range due {
		if err := ctx.Err(); err != nil {
			p.metrics.ObserveRecurringRun(processed, time.Since(started))
			return processed, err
		}
		// Past its end date: dormant, left untouched.
		if !def.WithinWindow() {
			continue
		}

		m, err := p.processOne(ctx, def, today)
		if errors.Is(err, errNotDue) {
			continue
		}
		if err != nil {
			p.metrics.IncRecurringFailure(failureReason(err))
			slog.ErrorContext(ctx, "Failed to materialize recurring definition",
				"owner", def.Owner,
				"recurring_id", def.ID,
				"next_due_date", def.NextDueDate.String(),
				"frequency", def.Frequency,
				"error", err)
			continue
		}

		p.transactions.committed(ctx, m)
		processed++
		slog.InfoContext(ctx, "Created transaction from recurring definition",
			"owner", def.Owner,
			"recurring_id", def.ID,
			"transaction_id", m.tx.ID,
			"amount_cents", def.Amount.Cents,
			"frequency", def.Frequency)
	}

	p.metrics.ObserveRecurringRun(processed, time.Since(started))
	slog.InfoContext(ctx, "Recurring processing complete",
		"processed", processed,
		"total_checked", len(due))

	return processed, nil
}

// processOne re-reads the definition under the write lock, computes the next
// cursor first and only then materializes, so an unadvanceable definition
// leaves no transaction behind.
func (p *RecurringProcessor) processOne(ctx context.Context, def core.RecurringDefinition, today core.Date) (mutation, error) {
	var m mutation
	err := p.storage.InTx(ctx, def.Owner, func(sc *storage.Scope) error {
		current, err := sc.GetRecurring(ctx, def.ID)
		if err != nil {
			return err
		}
		if !current.IsDue(today) {
			return errNotDue
		}

		next, err := NextDueDate(current.Frequency, current.NextDueDate)
		if err != nil {
			return err
		}

		m, err = p.transactions.createInScope(ctx, sc, current.Materialize())
		if err != nil {
			return err
		}
		return sc.AdvanceRecurring(ctx, current.ID, next)
	})
	return m, err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidCalendarDate):
		return "invalid_date"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	case errors.Is(err, core.ErrConstraintViolation):
		return "constraint"
	case errors.Is(err, core.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
