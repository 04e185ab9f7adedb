package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// TransactionRepository persists transactions. Card-scoped queries join
// through the cards table because messages identify cards by external code.
type TransactionRepository struct {
	q       querier
	timeout time.Duration
}

const transactionColumns = `t.id, t.account_id, t.card_id, t.type, t.amount, t.status, t.timestamp`

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.CardID, &t.Type, &t.Amount, &t.Status, &t.Timestamp)
	return t, err
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO transactions (account_id, card_id, type, amount, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		transaction.AccountID, transaction.CardID, transaction.Type,
		transaction.Amount, transaction.Status, transaction.Timestamp,
	).Scan(&transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, transaction *models.Transaction) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `UPDATE transactions SET status = $2 WHERE id = $1`
	result, err := r.q.ExecContext(ctx, query, transaction.ID, transaction.Status)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %d not found", transaction.ID)
	}
	return nil
}

func (r *TransactionRepository) FindByCardCode(ctx context.Context, cardCode string) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN cards c ON c.id = t.card_id
		WHERE c.card_code = $1
		ORDER BY t.timestamp DESC
	`
	return r.list(ctx, query, cardCode)
}

func (r *TransactionRepository) CountByCardCodeSince(ctx context.Context, cardCode string, since time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COUNT(*)
		FROM transactions t
		JOIN cards c ON c.id = t.card_id
		WHERE c.card_code = $1 AND t.timestamp > $2
	`
	var count int64
	if err := r.q.QueryRowContext(ctx, query, cardCode, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *TransactionRepository) FindByAccountID(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.account_id = $1
		ORDER BY t.timestamp DESC
	`
	return r.list(ctx, query, accountID)
}

func (r *TransactionRepository) FindByAccountIDAndStatus(ctx context.Context, accountID int64, status models.TransactionStatus) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		WHERE t.account_id = $1 AND t.status = $2
		ORDER BY t.timestamp DESC
	`
	return r.list(ctx, query, accountID, status)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}
