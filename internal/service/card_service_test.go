package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

func TestCreateCard(t *testing.T) {
	f := newFakeLedger()
	account := f.seedAccount(models.Account{
		ClientID: "client-1",
		Balance:  decimal.NewFromInt(100),
		Status:   models.AccountActive,
	})
	s := NewCardService(f)

	card, err := s.CreateCard(context.Background(), account.ID, "card-1", "VISA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if card.ID == 0 {
		t.Error("expected card id to be assigned")
	}
	if card.Status != models.CardActive {
		t.Errorf("status = %s, want ACTIVE", card.Status)
	}
	if !f.account(account.ID).CardExist {
		t.Error("expected account card_exist flag to be set")
	}
}

func TestCreateCardRejections(t *testing.T) {
	f := newFakeLedger()
	active := f.seedAccount(models.Account{ClientID: "c", Status: models.AccountActive})
	blocked := f.seedAccount(models.Account{ClientID: "c", Status: models.AccountBlocked})

	s := NewCardService(f)
	if _, err := s.CreateCard(context.Background(), active.ID, "card-1", "VISA"); err != nil {
		t.Fatalf("seed card: %v", err)
	}

	tests := []struct {
		name      string
		accountID int64
		cardCode  string
		wantErr   error
	}{
		{"missing account", 9999, "card-2", models.ErrAccountNotFound},
		{"inactive account", blocked.ID, "card-2", models.ErrAccountNotActive},
		{"duplicate code", active.ID, "card-1", models.ErrCardExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateCard(context.Background(), tt.accountID, tt.cardCode, "VISA")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateCard error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCardStatusTransitions(t *testing.T) {
	f := newFakeLedger()
	account := f.seedAccount(models.Account{ClientID: "c", Status: models.AccountActive})
	s := NewCardService(f)

	if _, err := s.CreateCard(context.Background(), account.ID, "card-1", "MIR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.BlockCard(context.Background(), "card-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active, err := s.IsCardActive(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("expected blocked card to be inactive")
	}

	if err := s.ActivateCard(context.Background(), "card-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	active, err = s.IsCardActive(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !active {
		t.Error("expected reactivated card to be active")
	}
}

func TestIsCardActiveMissingCard(t *testing.T) {
	s := NewCardService(newFakeLedger())

	active, err := s.IsCardActive(context.Background(), "no-such-card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active {
		t.Error("expected missing card to report inactive without error")
	}
}

func TestBlockCardMissingCard(t *testing.T) {
	s := NewCardService(newFakeLedger())

	if err := s.BlockCard(context.Background(), "no-such-card"); !errors.Is(err, models.ErrCardNotFound) {
		t.Errorf("expected ErrCardNotFound, got %v", err)
	}
}
