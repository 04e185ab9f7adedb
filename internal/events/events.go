package events

import "time"

// Event types
const (
	TransactionReceived   = "transaction.received"
	TransactionProcessed  = "transaction.processed"
	PaymentReceived       = "payment.received"
	PaymentProcessed      = "payment.processed"
	CardCreationRequested = "card.creation.requested"
)

// Stream names
const (
	TransactionsStream = "client_transactions"
	PaymentsStream     = "client_payments"
	CardCreationStream = "card_creation"
	ResultsStream      = "transaction_results"
)

// Event is the envelope carried on every stream entry. ID correlates a result
// back to the entry that produced it.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
