package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/models"
)

// PaymentService exposes payment schedule queries and single-row state
// transitions.
type PaymentService struct {
	uow UnitOfWork
}

func NewPaymentService(uow UnitOfWork) *PaymentService {
	return &PaymentService{uow: uow}
}

// FindPendingPaymentsByAccount returns PENDING payments, due date ascending.
func (s *PaymentService) FindPendingPaymentsByAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	return s.uow.View().Payments.FindPendingByAccount(ctx, accountID)
}

// FindDuePayments returns PENDING payments with paymentDate <= asOf.
func (s *PaymentService) FindDuePayments(ctx context.Context, accountID int64, asOf time.Time) ([]models.Payment, error) {
	return s.uow.View().Payments.FindDue(ctx, accountID, asOf)
}

func (s *PaymentService) FindCompletedPaymentsByAccount(ctx context.Context, accountID int64) ([]models.Payment, error) {
	return s.uow.View().Payments.FindByAccountAndStatus(ctx, accountID, models.PaymentCompleted)
}

func (s *PaymentService) HasOverduePayments(ctx context.Context, accountID int64) (bool, error) {
	count, err := s.uow.View().Payments.CountExpiredByAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkPaymentAsPaid transitions a payment to COMPLETED at payedAt.
func (s *PaymentService) MarkPaymentAsPaid(ctx context.Context, paymentID int64, payedAt time.Time) error {
	return s.uow.WithinTx(ctx, func(l Ledger) error {
		payment, err := l.Payments.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		payment.Status = models.PaymentCompleted
		payment.PayedAt = &payedAt
		payment.Expired = false
		return l.Payments.Update(ctx, &payment)
	})
}

// MarkPaymentAsExpired transitions a payment to EXPIRED with the expired flag set.
func (s *PaymentService) MarkPaymentAsExpired(ctx context.Context, paymentID int64) error {
	return s.uow.WithinTx(ctx, func(l Ledger) error {
		payment, err := l.Payments.FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		payment.Expired = true
		payment.Status = models.PaymentExpired
		return l.Payments.Update(ctx, &payment)
	})
}

// TotalDebt is the amount that fully closes the credit line: the sum of
// monthly payments over all PENDING payments for the account.
func (s *PaymentService) TotalDebt(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return totalPendingDebt(ctx, s.uow.View(), accountID)
}

// ExpireOverdue marks every PENDING payment whose expiration date has passed
// as EXPIRED. Returns the number of rows transitioned.
func (s *PaymentService) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	expired := 0
	err := s.uow.WithinTx(ctx, func(l Ledger) error {
		overdue, err := l.Payments.FindPastExpiration(ctx, asOf)
		if err != nil {
			return err
		}
		for i := range overdue {
			payment := overdue[i]
			payment.Expired = true
			payment.Status = models.PaymentExpired
			if err := l.Payments.Update(ctx, &payment); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		log.Printf("expired %d overdue payments as of %s", expired, asOf.Format(time.RFC3339))
	}
	return expired, nil
}

func totalPendingDebt(ctx context.Context, l Ledger, accountID int64) (decimal.Decimal, error) {
	pending, err := l.Payments.FindPendingByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range pending {
		total = total.Add(p.MonthlyPayment)
	}
	return total, nil
}

// applyDuePayments runs the automatic deduction loop: every due payment whose
// monthly amount the balance covers is deducted and completed; underfunded
// ones are expired when expireUnderfunded is set, otherwise left pending.
// The account balance is persisted once after the loop.
func applyDuePayments(ctx context.Context, l Ledger, account *models.Account, asOf time.Time, expireUnderfunded bool) error {
	due, err := l.Payments.FindDue(ctx, account.ID, asOf)
	if err != nil {
		return err
	}
	for i := range due {
		payment := due[i]
		if account.Balance.GreaterThanOrEqual(payment.MonthlyPayment) {
			account.Balance = account.Balance.Sub(payment.MonthlyPayment)
			payment.Status = models.PaymentCompleted
			paidAt := asOf
			payment.PayedAt = &paidAt
		} else if expireUnderfunded {
			payment.Expired = true
			payment.Status = models.PaymentExpired
		} else {
			continue
		}
		if err := l.Payments.Update(ctx, &payment); err != nil {
			return err
		}
	}
	return l.Accounts.Update(ctx, account)
}
