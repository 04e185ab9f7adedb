package service

import (
	"context"
	"log"

	"github.com/bankledger/account-processing/internal/models"
)

// CardService owns the card lifecycle. Cards are keyed by an externally
// supplied card code and are never deleted.
type CardService struct {
	uow UnitOfWork
}

func NewCardService(uow UnitOfWork) *CardService {
	return &CardService{uow: uow}
}

// CreateCard registers a new ACTIVE card. The owning account must exist and
// be ACTIVE, and the card code must not already be registered.
func (s *CardService) CreateCard(ctx context.Context, accountID int64, cardCode, paymentSystem string) (models.Card, error) {
	var card models.Card
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		account, err := l.Accounts.FindByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account.Status != models.AccountActive {
			return models.ErrAccountNotActive
		}
		exists, err := l.Cards.ExistsByCardCode(ctx, cardCode)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrCardExists
		}
		card = models.Card{
			AccountID:     accountID,
			CardCode:      cardCode,
			PaymentSystem: paymentSystem,
			Status:        models.CardActive,
		}
		if err := l.Cards.Create(ctx, &card); err != nil {
			return err
		}
		if !account.CardExist {
			account.CardExist = true
			return l.Accounts.Update(ctx, &account)
		}
		return nil
	})
	if err != nil {
		return models.Card{}, err
	}
	log.Printf("card %s created for account %d", card.CardCode, accountID)
	return card, nil
}

func (s *CardService) FindByCardCode(ctx context.Context, cardCode string) (models.Card, error) {
	return s.uow.View().Cards.FindByCardCode(ctx, cardCode)
}

func (s *CardService) FindByAccountID(ctx context.Context, accountID int64) ([]models.Card, error) {
	return s.uow.View().Cards.FindByAccountID(ctx, accountID)
}

func (s *CardService) FindByStatus(ctx context.Context, status models.CardStatus) ([]models.Card, error) {
	return s.uow.View().Cards.FindByStatus(ctx, status)
}

// IsCardActive reports whether the card exists and is ACTIVE. A missing card
// is false, not an error.
func (s *CardService) IsCardActive(ctx context.Context, cardCode string) (bool, error) {
	card, err := s.uow.View().Cards.FindByCardCode(ctx, cardCode)
	if err == models.ErrCardNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return card.Status == models.CardActive, nil
}

// BlockCard sets the card status to BLOCKED.
func (s *CardService) BlockCard(ctx context.Context, cardCode string) error {
	return s.setStatus(ctx, cardCode, models.CardBlocked)
}

// ActivateCard sets the card status back to ACTIVE.
func (s *CardService) ActivateCard(ctx context.Context, cardCode string) error {
	return s.setStatus(ctx, cardCode, models.CardActive)
}

func (s *CardService) setStatus(ctx context.Context, cardCode string, status models.CardStatus) error {
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		card, err := l.Cards.FindByCardCode(ctx, cardCode)
		if err != nil {
			return err
		}
		card.Status = status
		return l.Cards.Update(ctx, &card)
	})
	if err != nil {
		return err
	}
	log.Printf("card %s status set to %s", cardCode, status)
	return nil
}
