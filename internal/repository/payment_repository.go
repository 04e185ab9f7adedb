package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// PaymentRepository persists payment schedule rows and one-off payment records.
type PaymentRepository struct {
	q       querier
	timeout time.Duration
}

const paymentColumns = `id, account_id, payment_date, expiration_date, amount, monthly_payment,
	interest_amount, principal_amount, is_credit, payed_at, type, status, expired`

func scanPayment(row interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.AccountID, &p.PaymentDate, &p.ExpirationDate, &p.Amount,
		&p.MonthlyPayment, &p.InterestAmount, &p.PrincipalAmount, &p.IsCredit,
		&p.PayedAt, &p.Type, &p.Status, &p.Expired,
	)
	return p, err
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO payments (account_id, payment_date, expiration_date, amount, monthly_payment,
			interest_amount, principal_amount, is_credit, payed_at, type, status, expired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		payment.AccountID, payment.PaymentDate, payment.ExpirationDate, payment.Amount,
		payment.MonthlyPayment, payment.InterestAmount, payment.PrincipalAmount,
		payment.IsCredit, payment.PayedAt, payment.Type, payment.Status, payment.Expired,
	).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE payments
		SET status = $2, payed_at = $3, expired = $4
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		payment.ID, payment.Status, payment.PayedAt, payment.Expired,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (models.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return models.Payment{}, models.ErrPaymentNotFound
	}
	if err != nil {
		return models.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (r *PaymentRepository) FindPendingByAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	return r.FindByAccountAndStatus(ctx, accountID, models.PaymentPending)
}

func (r *PaymentRepository) FindDue(ctx context.Context, accountID int64, asOf time.Time) ([]models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE account_id = $1 AND payment_date <= $2 AND status = $3
		ORDER BY payment_date ASC
	`
	return r.list(ctx, query, accountID, asOf, models.PaymentPending)
}

func (r *PaymentRepository) FindByAccountAndStatus(ctx context.Context, accountID int64, status models.PaymentStatus) ([]models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE account_id = $1 AND status = $2
		ORDER BY payment_date ASC
	`
	return r.list(ctx, query, accountID, status)
}

func (r *PaymentRepository) CountExpiredByAccount(ctx context.Context, accountID int64) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT COUNT(*) FROM payments WHERE account_id = $1 AND expired = TRUE`
	var count int64
	if err := r.q.QueryRowContext(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expired payments: %w", err)
	}
	return count, nil
}

func (r *PaymentRepository) FindPastExpiration(ctx context.Context, asOf time.Time) ([]models.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE status = $1 AND expiration_date IS NOT NULL AND expiration_date <= $2
		ORDER BY payment_date ASC
	`
	return r.list(ctx, query, models.PaymentPending, asOf)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
