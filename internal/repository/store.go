package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankledger/account-processing/internal/service"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same repository
// code runs inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the PostgreSQL connection and hands out ledgers bound to it.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// Open connects to PostgreSQL. timeout bounds every statement issued through
// the store; units of work share a single deadline.
func Open(dsn string, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db, timeout: timeout}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// View returns a ledger for plain reads, each statement individually bounded
// by the store timeout.
func (s *Store) View() service.Ledger {
	return ledgerFor(s.db, s.timeout)
}

// WithinTx runs fn inside one database transaction under the store timeout.
// The transaction commits only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(l service.Ledger) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(ledgerFor(tx, 0)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func ledgerFor(q querier, timeout time.Duration) service.Ledger {
	return service.Ledger{
		Accounts:     &AccountRepository{q: q, timeout: timeout},
		Cards:        &CardRepository{q: q, timeout: timeout},
		Transactions: &TransactionRepository{q: q, timeout: timeout},
		Payments:     &PaymentRepository{q: q, timeout: timeout},
	}
}

// withTimeout bounds a single statement when the repository is not already
// running under a transaction deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
