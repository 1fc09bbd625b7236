package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

const owner = "alice"

type fixture struct {
	repo   *storage.SQLiteRepository
	events *recordingPublisher
	txs    *TransactionService
	refs   *ReferenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	events := &recordingPublisher{}
	txs := NewTransactionService(repo, events, nil)
	return &fixture{
		repo:   repo,
		events: events,
		txs:    txs,
		refs:   NewReferenceService(repo, txs),
	}
}

func (f *fixture) category(t *testing.T, name string, kind core.CategoryKind) core.Category {
	t.Helper()
	c, err := f.refs.CreateCategory(context.Background(), owner, core.Category{Name: name, Kind: kind})
	if err != nil {
		t.Fatalf("CreateCategory(%s) error = %v", name, err)
	}
	return c
}

func (f *fixture) account(t *testing.T, name string, opening int64) core.Account {
	t.Helper()
	a, err := f.refs.CreateAccount(context.Background(), owner, core.Account{
		Name:           name,
		Type:           core.Bank,
		OpeningBalance: core.Cents(opening),
		Active:         true,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) error = %v", name, err)
	}
	return a
}

func (f *fixture) goal(t *testing.T, name string) core.SavingsGoal {
	t.Helper()
	g, err := f.refs.CreateGoal(context.Background(), owner, core.SavingsGoal{
		Name:      name,
		Target:    core.Cents(100000),
		StartDate: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("CreateGoal(%s) error = %v", name, err)
	}
	return g
}

func (f *fixture) create(t *testing.T, tx core.Transaction) core.Transaction {
	t.Helper()
	created, err := f.txs.Create(context.Background(), owner, tx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return created
}

func (f *fixture) goalBalance(t *testing.T, id int64) core.Money {
	t.Helper()
	g, err := f.repo.ForOwner(owner).GetGoal(context.Background(), id)
	if err != nil {
		t.Fatalf("GetGoal() error = %v", err)
	}
	return g.Current
}

func (f *fixture) accountBalance(t *testing.T, id int64) core.Money {
	t.Helper()
	a, err := f.repo.ForOwner(owner).GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	return a.CurrentBalance
}

// recordingPublisher keeps every published event; fail makes it return err.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.TransactionChangedMessage
	err  error
}

func (p *recordingPublisher) PublishTransactionChanged(_ context.Context, msg *amqp.TransactionChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recordingPublisher) ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Op
	}
	return out
}

func int64p(v int64) *int64 { return &v }
