package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"saldo/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dsnPragmas are applied to every connection of the main pool. Transactions
// start with BEGIN IMMEDIATE so a read-modify-write holds the write lock from
// its first read, also against other processes sharing the file.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations first on their own connection
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; every read-modify-write in the
	// mutation pipeline runs inside one BEGIN..COMMIT on it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ForOwner returns a scope bound to owner that runs outside any transaction.
func (r *SQLiteRepository) ForOwner(owner string) *Scope {
	return &Scope{owner: owner, q: r.queries}
}

// InTx runs fn against an owner scope bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
// fn must not use the repository outside the given scope: the pool has one
// connection and it is held by the transaction.
func (r *SQLiteRepository) InTx(ctx context.Context, owner string, fn func(*Scope) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.ErrorContext(ctx, "Rollback failed", "owner", owner, "error", rbErr)
			}
		}
	}()

	if err = fn(&Scope{owner: owner, q: r.queries.WithTx(tx)}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListDueRecurring returns due definitions across every owner. It is the one
// query that is not owner scoped; callers process each row in its owner's scope.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, today core.Date) ([]core.RecurringDefinition, error) {
	defs, err := r.queries.ListDueRecurring(ctx, "", today)
	if err != nil {
		return nil, fmt.Errorf("list due recurring definitions: %w", err)
	}
	return defs, nil
}

// mapError translates driver errors into core error kinds.
func mapError(err error, resource string, id int64) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Resource: resource, ID: id}
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return &core.ConstraintError{Constraint: constraintName(se.Code()), Err: err}
	}
	return fmt.Errorf("%s: %w", resource, err)
}

func constraintName(code int) string {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return "unique"
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return "foreign_key"
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return "check"
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return "not_null"
	default:
		return "constraint"
	}
}
