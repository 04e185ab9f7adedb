package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "ACTIVE"
	AccountBlocked  AccountStatus = "BLOCKED"
	AccountArrested AccountStatus = "ARRESTED"
	AccountClosed   AccountStatus = "CLOSED"
)

type CardStatus string

const (
	CardActive  CardStatus = "ACTIVE"
	CardBlocked CardStatus = "BLOCKED"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

type PaymentType string

const (
	PaymentLoan           PaymentType = "LOAN_PAYMENT"
	PaymentEarlyRepayment PaymentType = "EARLY_REPAYMENT"
	PaymentDeposit        PaymentType = "DEPOSIT"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

type Account struct {
	ID           int64               `json:"id"`
	ClientID     string              `json:"clientId"`
	ProductID    string              `json:"productId"`
	Balance      decimal.Decimal     `json:"balance"`
	InterestRate decimal.NullDecimal `json:"interestRate"`
	IsRecalc     bool                `json:"isRecalc"`
	CardExist    bool                `json:"cardExist"`
	Status       AccountStatus       `json:"status"`
}

type Card struct {
	ID            int64      `json:"id"`
	AccountID     int64      `json:"-"`
	CardCode      string     `json:"cardId"`
	PaymentSystem string     `json:"paymentSystem"`
	Status        CardStatus `json:"status"`
}

type Transaction struct {
	ID        int64             `json:"id"`
	AccountID int64             `json:"-"`
	CardID    *int64            `json:"cardId,omitempty"`
	Type      TransactionType   `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
}

type Payment struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"-"`
	PaymentDate     time.Time       `json:"paymentDate"`
	ExpirationDate  *time.Time      `json:"expirationDate,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	InterestAmount  decimal.Decimal `json:"interestAmount"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	IsCredit        bool            `json:"isCredit"`
	PayedAt         *time.Time      `json:"payedAt,omitempty"`
	Type            PaymentType     `json:"type"`
	Status          PaymentStatus   `json:"status"`
	Expired         bool            `json:"expired"`
}

// TransactionProcessingResult is the value reported back for every processed
// transaction message, whatever the outcome.
type TransactionProcessingResult struct {
	MessageID      string            `json:"messageId"`
	Status         TransactionStatus `json:"status"`
	Message        string            `json:"message"`
	CurrentBalance decimal.Decimal   `json:"currentBalance"`
	AccountBlocked bool              `json:"accountBlocked"`
}

// PaymentProcessingResult mirrors TransactionProcessingResult for payment messages.
type PaymentProcessingResult struct {
	MessageID      string          `json:"messageId"`
	Status         string          `json:"status"`
	Message        string          `json:"message"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
}
