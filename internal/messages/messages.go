// Package messages defines the inbound message shapes consumed from the
// platform streams. messageId is a correlation identifier only; delivery is
// at-least-once and unordered across accounts.
package messages

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

// Payment types as they appear on the wire. REGULAR_PAYMENT is stored as a
// DEPOSIT record.
const (
	PaymentTypeLoan           = "LOAN_PAYMENT"
	PaymentTypeEarlyRepayment = "EARLY_REPAYMENT"
	PaymentTypeRegular        = "REGULAR_PAYMENT"
)

type TransactionMessage struct {
	MessageID string                 `json:"messageId" validate:"required"`
	CardCode  string                 `json:"cardId" validate:"required"`
	AccountID int64                  `json:"accountId" validate:"required"`
	Amount    decimal.Decimal        `json:"amount" validate:"required"`
	Type      models.TransactionType `json:"type" validate:"required,oneof=CREDIT DEBIT"`
	Timestamp time.Time              `json:"timestamp" validate:"required"`
}

type PaymentMessage struct {
	MessageID   string          `json:"messageId" validate:"required"`
	AccountID   int64           `json:"accountId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PaymentType string          `json:"paymentType" validate:"required,oneof=LOAN_PAYMENT EARLY_REPAYMENT REGULAR_PAYMENT"`
	Timestamp   time.Time       `json:"timestamp" validate:"required"`
	Description string          `json:"description"`
}

type CardCreationMessage struct {
	MessageID     string `json:"messageId" validate:"required"`
	AccountID     int64  `json:"accountId" validate:"required"`
	CardCode      string `json:"cardId" validate:"required"`
	PaymentSystem string `json:"paymentSystem" validate:"required"`
}

// StoredPaymentType maps a wire payment type to its persisted counterpart.
func StoredPaymentType(wire string) models.PaymentType {
	switch wire {
	case PaymentTypeLoan:
		return models.PaymentLoan
	case PaymentTypeEarlyRepayment:
		return models.PaymentEarlyRepayment
	default:
		return models.PaymentDeposit
	}
}
