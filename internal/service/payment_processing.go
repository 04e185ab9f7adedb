package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/messages"
	"github.com/bankledger/account-processing/internal/models"
)

// PaymentProcessor applies inbound payment messages. A recalculating account
// paying exactly its total pending debt closes the credit line; any other
// amount is a partial payment followed by automatic due-payment deduction;
// non-credit accounts just receive the funds.
type PaymentProcessor struct {
	uow UnitOfWork
	now func() time.Time
}

func NewPaymentProcessor(uow UnitOfWork) *PaymentProcessor {
	return &PaymentProcessor{uow: uow, now: time.Now}
}

// ProcessPayment runs the whole payment flow in one unit of work and reports
// the outcome. Failures never escape as errors: they are folded into the
// result for the caller to observe.
func (p *PaymentProcessor) ProcessPayment(ctx context.Context, msg messages.PaymentMessage) models.PaymentProcessingResult {
	if !msg.Amount.IsPositive() {
		return failedPaymentResult(msg, "Amount must be positive")
	}

	var result models.PaymentProcessingResult
	err := p.uow.WithinTx(ctx, func(l Ledger) error {
		account, err := l.Accounts.FindByIDForUpdate(ctx, msg.AccountID)
		if err != nil {
			return err
		}

		if account.IsRecalc {
			totalDebt, err := totalPendingDebt(ctx, l, account.ID)
			if err != nil {
				return err
			}
			log.Printf("account %d: payment amount=%s total debt=%s", account.ID, msg.Amount, totalDebt)
			if msg.Amount.Equal(totalDebt) {
				if err := p.fullRepayment(ctx, l, &account, msg, totalDebt); err != nil {
					return err
				}
				result = completedPaymentResult(msg, account, "Full repayment processed")
				return nil
			}
			if err := p.partialPayment(ctx, l, &account, msg); err != nil {
				return err
			}
			result = completedPaymentResult(msg, account, "Partial payment processed")
			return nil
		}

		if err := p.regularPayment(ctx, l, &account, msg); err != nil {
			return err
		}
		result = completedPaymentResult(msg, account, "Regular payment processed")
		return nil
	})
	if err != nil {
		log.Printf("error processing payment %s: %v", msg.MessageID, err)
		return failedPaymentResult(msg, "Processing error: "+err.Error())
	}
	return result
}

// fullRepayment credits the balance, records one closing EARLY_REPAYMENT with
// a zero monthly payment, and completes every pending schedule row.
func (p *PaymentProcessor) fullRepayment(ctx context.Context, l Ledger, account *models.Account, msg messages.PaymentMessage, totalDebt decimal.Decimal) error {
	account.Balance = account.Balance.Add(msg.Amount)
	if err := l.Accounts.Update(ctx, account); err != nil {
		return err
	}
	if err := p.recordPayment(ctx, l, account, models.PaymentEarlyRepayment, totalDebt); err != nil {
		return err
	}

	pending, err := l.Payments.FindPendingByAccount(ctx, account.ID)
	if err != nil {
		return err
	}
	paidAt := p.now()
	for i := range pending {
		payment := pending[i]
		payment.Status = models.PaymentCompleted
		payment.PayedAt = &paidAt
		if err := l.Payments.Update(ctx, &payment); err != nil {
			return err
		}
	}
	log.Printf("full repayment completed for account %d, %d payments closed", account.ID, len(pending))
	return nil
}

func (p *PaymentProcessor) partialPayment(ctx context.Context, l Ledger, account *models.Account, msg messages.PaymentMessage) error {
	account.Balance = account.Balance.Add(msg.Amount)
	if err := l.Accounts.Update(ctx, account); err != nil {
		return err
	}
	if err := p.recordPayment(ctx, l, account, messages.StoredPaymentType(msg.PaymentType), msg.Amount); err != nil {
		return err
	}
	// Partial payments deduct what the balance now covers; underfunded due
	// payments stay pending rather than expiring here.
	return applyDuePayments(ctx, l, account, p.now(), false)
}

func (p *PaymentProcessor) regularPayment(ctx context.Context, l Ledger, account *models.Account, msg messages.PaymentMessage) error {
	account.Balance = account.Balance.Add(msg.Amount)
	if err := l.Accounts.Update(ctx, account); err != nil {
		return err
	}
	return p.recordPayment(ctx, l, account, models.PaymentDeposit, msg.Amount)
}

// recordPayment writes the single COMPLETED record for an applied payment.
// Closing lump sums carry a zero monthly payment: they are not a recurring
// obligation.
func (p *PaymentProcessor) recordPayment(ctx context.Context, l Ledger, account *models.Account, paymentType models.PaymentType, amount decimal.Decimal) error {
	now := p.now()
	monthly := amount
	if paymentType == models.PaymentEarlyRepayment {
		monthly = decimal.Zero
	}
	payment := models.Payment{
		AccountID:      account.ID,
		PaymentDate:    now,
		Amount:         amount,
		MonthlyPayment: monthly,
		IsCredit:       true,
		PayedAt:        &now,
		Type:           paymentType,
		Status:         models.PaymentCompleted,
		Expired:        false,
	}
	return l.Payments.Create(ctx, &payment)
}

func completedPaymentResult(msg messages.PaymentMessage, account models.Account, text string) models.PaymentProcessingResult {
	return models.PaymentProcessingResult{
		MessageID:      msg.MessageID,
		Status:         "COMPLETED",
		Message:        text,
		CurrentBalance: account.Balance,
	}
}

func failedPaymentResult(msg messages.PaymentMessage, text string) models.PaymentProcessingResult {
	return models.PaymentProcessingResult{
		MessageID: msg.MessageID,
		Status:    "FAILED",
		Message:   text,
	}
}
