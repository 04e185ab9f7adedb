package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

// FraudConfig holds the externally configurable fraud thresholds.
type FraudConfig struct {
	// MaxTransactions is the per-card transaction count that trips the
	// velocity trigger when reached within Window.
	MaxTransactions int64
	Window          time.Duration
	// MaxAmount trips the volume trigger once the lifetime sum of COMPLETED
	// transaction amounts for a card exceeds it.
	MaxAmount decimal.Decimal
}

// FraudDetector evaluates per-card activity against the configured thresholds
// and blocks account and card when asked to. Detection is best effort: it is
// not atomic with the blocking action.
type FraudDetector struct {
	uow      UnitOfWork
	accounts *AccountService
	cards    *CardService
	cfg      FraudConfig
	now      func() time.Time
}

func NewFraudDetector(uow UnitOfWork, accounts *AccountService, cards *CardService, cfg FraudConfig) *FraudDetector {
	return &FraudDetector{
		uow:      uow,
		accounts: accounts,
		cards:    cards,
		cfg:      cfg,
		now:      time.Now,
	}
}

// IsSuspiciousActivity reports whether either trigger fires for the card:
// transaction count within the trailing window reaching MaxTransactions, or
// the lifetime sum of COMPLETED amounts exceeding MaxAmount.
func (d *FraudDetector) IsSuspiciousActivity(ctx context.Context, cardCode string) (bool, error) {
	ledger := d.uow.View()
	since := d.now().Add(-d.cfg.Window)

	count, err := ledger.Transactions.CountByCardCodeSince(ctx, cardCode, since)
	if err != nil {
		return false, err
	}
	if count >= d.cfg.MaxTransactions {
		log.Printf("suspicious activity: %d transactions within %s for card %s", count, d.cfg.Window, cardCode)
		return true, nil
	}

	transactions, err := ledger.Transactions.FindByCardCode(ctx, cardCode)
	if err != nil {
		return false, err
	}
	total := decimal.Zero
	for _, t := range transactions {
		if t.Status == models.TransactionCompleted {
			total = total.Add(t.Amount)
		}
	}
	if total.GreaterThan(d.cfg.MaxAmount) {
		log.Printf("suspicious amount %s for card %s", total, cardCode)
		return true, nil
	}
	return false, nil
}

// HandleSuspiciousActivity blocks the account and the card. Failures are
// logged and swallowed: blocking is best effort.
func (d *FraudDetector) HandleSuspiciousActivity(ctx context.Context, cardCode string, accountID int64) {
	if err := d.accounts.BlockAccount(ctx, accountID); err != nil {
		log.Printf("failed to block account %d for card %s: %v", accountID, cardCode, err)
		return
	}
	if err := d.cards.BlockCard(ctx, cardCode); err != nil {
		log.Printf("failed to block card %s: %v", cardCode, err)
		return
	}
	log.Printf("account %d and card %s blocked due to suspicious activity", accountID, cardCode)
}
