// Package consumer decodes inbound stream events, validates them and drives
// the processing services. Malformed entries are logged and acknowledged so
// they do not poison the stream; processing outcomes are published to the
// results stream.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/bankledger/account-processing/internal/events"
	"github.com/bankledger/account-processing/internal/messages"
	"github.com/bankledger/account-processing/internal/models"
)

var validate = validator.New()

// decodeInto re-marshals the envelope payload into a typed message and
// validates it.
func decodeInto(event events.Event, out any) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal event data: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}

// TransactionProcessor is the processing operation the consumer drives.
type TransactionProcessor interface {
	ProcessTransaction(ctx context.Context, msg messages.TransactionMessage) models.TransactionProcessingResult
}

// ResultPublisher publishes processing outcomes.
type ResultPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

type TransactionConsumer struct {
	processor TransactionProcessor
	publisher ResultPublisher
}

func NewTransactionConsumer(processor TransactionProcessor, publisher ResultPublisher) *TransactionConsumer {
	return &TransactionConsumer{processor: processor, publisher: publisher}
}

// Handle processes one transaction event. It always returns nil: business
// failures are carried in the published result, and malformed entries are
// skipped rather than redelivered forever.
func (c *TransactionConsumer) Handle(ctx context.Context, event events.Event) error {
	var msg messages.TransactionMessage
	if err := decodeInto(event, &msg); err != nil {
		log.Printf("skipping transaction event %s: %v", event.ID, err)
		return nil
	}

	result := c.processor.ProcessTransaction(ctx, msg)
	log.Printf("transaction %s processed: status=%s blocked=%v", msg.MessageID, result.Status, result.AccountBlocked)

	if err := c.publisher.Publish(ctx, events.ResultsStream, events.TransactionProcessed, result); err != nil {
		log.Printf("failed to publish result for %s: %v", msg.MessageID, err)
	}
	return nil
}
