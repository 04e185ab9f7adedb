package consumer

import (
	"context"
	"errors"
	"log"

	"github.com/bankledger/account-processing/internal/events"
	"github.com/bankledger/account-processing/internal/messages"
	"github.com/bankledger/account-processing/internal/models"
)

// CardCreator is the card operation the consumer drives.
type CardCreator interface {
	CreateCard(ctx context.Context, accountID int64, cardCode, paymentSystem string) (models.Card, error)
}

type CardConsumer struct {
	cards CardCreator
}

func NewCardConsumer(cards CardCreator) *CardConsumer {
	return &CardConsumer{cards: cards}
}

// Handle creates a card from a card_creation entry. Business rejections
// (missing or inactive account, duplicate code) are final: they are logged
// and the entry is acknowledged. Infrastructure errors are returned so the
// entry is redelivered.
func (c *CardConsumer) Handle(ctx context.Context, event events.Event) error {
	var msg messages.CardCreationMessage
	if err := decodeInto(event, &msg); err != nil {
		log.Printf("skipping card creation event %s: %v", event.ID, err)
		return nil
	}

	card, err := c.cards.CreateCard(ctx, msg.AccountID, msg.CardCode, msg.PaymentSystem)
	switch {
	case err == nil:
		log.Printf("card %s created from message %s", card.CardCode, msg.MessageID)
		return nil
	case errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrAccountNotActive),
		errors.Is(err, models.ErrCardExists):
		log.Printf("card creation %s rejected: %v", msg.MessageID, err)
		return nil
	default:
		return err
	}
}
