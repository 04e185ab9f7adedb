package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// AccountRepository persists accounts in PostgreSQL.
type AccountRepository struct {
	q       querier
	timeout time.Duration
}

const accountColumns = `id, client_id, product_id, balance, interest_rate, is_recalc, card_exist, status`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.ClientID, &a.ProductID, &a.Balance,
		&a.InterestRate, &a.IsRecalc, &a.CardExist, &a.Status,
	)
	return a, err
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (models.Account, error) {
	return r.findByID(ctx, id, false)
}

// FindByIDForUpdate locks the account row until the surrounding transaction
// ends. Callers mutating the balance must read through here.
func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, id int64) (models.Account, error) {
	return r.findByID(ctx, id, true)
}

func (r *AccountRepository) findByID(ctx context.Context, id int64, forUpdate bool) (models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	account, err := scanAccount(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByClientID(ctx context.Context, clientID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE client_id = $1 ORDER BY id`
	return r.list(ctx, query, clientID)
}

func (r *AccountRepository) FindByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status = $1 ORDER BY id`
	return r.list(ctx, query, status)
}

func (r *AccountRepository) list(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO accounts (client_id, product_id, balance, interest_rate, is_recalc, card_exist, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		account.ClientID, account.ProductID, account.Balance,
		account.InterestRate, account.IsRecalc, account.CardExist, account.Status,
	).Scan(&account.ID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE accounts
		SET balance = $2, interest_rate = $3, is_recalc = $4, card_exist = $5, status = $6
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		account.ID, account.Balance, account.InterestRate,
		account.IsRecalc, account.CardExist, account.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}
