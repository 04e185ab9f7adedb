package service

import (
	"context"

	"github.com/bankledger/account-processing/internal/models"
)

// TransactionService exposes transaction history queries.
type TransactionService struct {
	uow UnitOfWork
}

func NewTransactionService(uow UnitOfWork) *TransactionService {
	return &TransactionService{uow: uow}
}

func (s *TransactionService) FindByAccountID(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return s.uow.View().Transactions.FindByAccountID(ctx, accountID)
}

func (s *TransactionService) FindByCardCode(ctx context.Context, cardCode string) ([]models.Transaction, error) {
	return s.uow.View().Transactions.FindByCardCode(ctx, cardCode)
}

func (s *TransactionService) FindFailedByAccount(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	return s.uow.View().Transactions.FindByAccountIDAndStatus(ctx, accountID, models.TransactionFailed)
}
