package consumer

import (
	"context"
	"log"

	"github.com/bankledger/account-processing/internal/events"
	"github.com/bankledger/account-processing/internal/messages"
	"github.com/bankledger/account-processing/internal/models"
)

// PaymentProcessor is the payment operation the consumer drives.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, msg messages.PaymentMessage) models.PaymentProcessingResult
}

type PaymentConsumer struct {
	processor PaymentProcessor
	publisher ResultPublisher
}

func NewPaymentConsumer(processor PaymentProcessor, publisher ResultPublisher) *PaymentConsumer {
	return &PaymentConsumer{processor: processor, publisher: publisher}
}

func (c *PaymentConsumer) Handle(ctx context.Context, event events.Event) error {
	var msg messages.PaymentMessage
	if err := decodeInto(event, &msg); err != nil {
		log.Printf("skipping payment event %s: %v", event.ID, err)
		return nil
	}

	result := c.processor.ProcessPayment(ctx, msg)
	log.Printf("payment %s processed: status=%s", msg.MessageID, result.Status)

	if err := c.publisher.Publish(ctx, events.ResultsStream, events.PaymentProcessed, result); err != nil {
		log.Printf("failed to publish result for %s: %v", msg.MessageID, err)
	}
	return nil
}
