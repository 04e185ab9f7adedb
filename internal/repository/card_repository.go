package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// CardRepository persists cards. Card codes are externally supplied and unique.
type CardRepository struct {
	q       querier
	timeout time.Duration
}

const cardColumns = `id, account_id, card_code, payment_system, status`

func scanCard(row interface{ Scan(...any) error }) (models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.AccountID, &c.CardCode, &c.PaymentSystem, &c.Status)
	return c, err
}

func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO cards (account_id, card_code, payment_system, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.q.QueryRowContext(ctx, query,
		card.AccountID, card.CardCode, card.PaymentSystem, card.Status,
	).Scan(&card.ID)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *CardRepository) Update(ctx context.Context, card *models.Card) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `UPDATE cards SET status = $2 WHERE id = $1`
	result, err := r.q.ExecContext(ctx, query, card.ID, card.Status)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return models.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) FindByCardCode(ctx context.Context, cardCode string) (models.Card, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_code = $1`
	card, err := scanCard(r.q.QueryRowContext(ctx, query, cardCode))
	if err == sql.ErrNoRows {
		return models.Card{}, models.ErrCardNotFound
	}
	if err != nil {
		return models.Card{}, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (r *CardRepository) ExistsByCardCode(ctx context.Context, cardCode string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM cards WHERE card_code = $1)`
	if err := r.q.QueryRowContext(ctx, query, cardCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check card existence: %w", err)
	}
	return exists, nil
}

func (r *CardRepository) FindByAccountID(ctx context.Context, accountID int64) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE account_id = $1 ORDER BY id`
	return r.list(ctx, query, accountID)
}

func (r *CardRepository) FindByStatus(ctx context.Context, status models.CardStatus) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE status = $1 ORDER BY id`
	return r.list(ctx, query, status)
}

func (r *CardRepository) list(ctx context.Context, query string, args ...any) ([]models.Card, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
