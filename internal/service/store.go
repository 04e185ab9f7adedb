package service

import (
	"context"
	"time"

	"github.com/bankledger/account-processing/internal/models"
)

// AccountStore persists accounts. FindByIDForUpdate must lock the row for the
// remainder of the surrounding unit of work so concurrent balance mutations on
// the same account serialize.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (models.Account, error)
	FindByIDForUpdate(ctx context.Context, id int64) (models.Account, error)
	FindByClientID(ctx context.Context, clientID string) ([]models.Account, error)
	FindByStatus(ctx context.Context, status models.AccountStatus) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
}

type CardStore interface {
	Create(ctx context.Context, card *models.Card) error
	Update(ctx context.Context, card *models.Card) error
	FindByCardCode(ctx context.Context, cardCode string) (models.Card, error)
	ExistsByCardCode(ctx context.Context, cardCode string) (bool, error)
	FindByAccountID(ctx context.Context, accountID int64) ([]models.Card, error)
	FindByStatus(ctx context.Context, status models.CardStatus) ([]models.Card, error)
}

type TransactionStore interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	Update(ctx context.Context, transaction *models.Transaction) error
	FindByCardCode(ctx context.Context, cardCode string) ([]models.Transaction, error)
	CountByCardCodeSince(ctx context.Context, cardCode string, since time.Time) (int64, error)
	FindByAccountID(ctx context.Context, accountID int64) ([]models.Transaction, error)
	FindByAccountIDAndStatus(ctx context.Context, accountID int64, status models.TransactionStatus) ([]models.Transaction, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int64) (models.Payment, error)
	// FindPendingByAccount returns PENDING payments ordered by payment date ascending.
	FindPendingByAccount(ctx context.Context, accountID int64) ([]models.Payment, error)
	// FindDue returns PENDING payments with paymentDate <= asOf, oldest first.
	FindDue(ctx context.Context, accountID int64, asOf time.Time) ([]models.Payment, error)
	FindByAccountAndStatus(ctx context.Context, accountID int64, status models.PaymentStatus) ([]models.Payment, error)
	CountExpiredByAccount(ctx context.Context, accountID int64) (int64, error)
	// FindPastExpiration returns PENDING payments whose expiration date has
	// passed as of asOf, across all accounts.
	FindPastExpiration(ctx context.Context, asOf time.Time) ([]models.Payment, error)
}

// Ledger bundles the entity stores visible to one unit of work.
type Ledger struct {
	Accounts     AccountStore
	Cards        CardStore
	Transactions TransactionStore
	Payments     PaymentStore
}

// UnitOfWork runs functions against the ledger. WithinTx commits everything
// the callback persisted, or nothing if it returns an error. View serves
// read paths that need no transactional boundary.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(l Ledger) error) error
	View() Ledger
}
