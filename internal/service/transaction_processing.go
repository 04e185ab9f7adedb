package service

import (
	"context"
	"log"
	"time"

	"github.com/bankledger/account-processing/internal/messages"
	"github.com/bankledger/account-processing/internal/models"
)

// TransactionProcessor drives an inbound transaction message through fraud
// detection, account/card validation and credit/debit application. Steps
// after the fraud check run in one unit of work: the balance change and the
// transaction/payment rows commit together or not at all. The fraud read and
// the blocking action are deliberately outside that boundary.
type TransactionProcessor struct {
	uow      UnitOfWork
	fraud    *FraudDetector
	accounts *AccountService
	cards    *CardService

	scheduleMonths   int
	paymentGraceDays int
	now              func() time.Time
}

func NewTransactionProcessor(
	uow UnitOfWork,
	fraud *FraudDetector,
	accounts *AccountService,
	cards *CardService,
	scheduleMonths, paymentGraceDays int,
) *TransactionProcessor {
	return &TransactionProcessor{
		uow:              uow,
		fraud:            fraud,
		accounts:         accounts,
		cards:            cards,
		scheduleMonths:   scheduleMonths,
		paymentGraceDays: paymentGraceDays,
		now:              time.Now,
	}
}

// ProcessTransaction applies one transaction message and reports the outcome.
// Failures of any kind are folded into the result; no error escapes to the
// caller.
func (p *TransactionProcessor) ProcessTransaction(ctx context.Context, msg messages.TransactionMessage) models.TransactionProcessingResult {
	if !msg.Amount.IsPositive() {
		return failedResult(msg, "Amount must be positive")
	}

	suspicious, err := p.fraud.IsSuspiciousActivity(ctx, msg.CardCode)
	if err != nil {
		log.Printf("error processing transaction %s: %v", msg.MessageID, err)
		return failedResult(msg, "Processing error: "+err.Error())
	}
	if suspicious {
		return p.blockAccountAndCard(ctx, msg)
	}

	var result models.TransactionProcessingResult
	err = p.uow.WithinTx(ctx, func(l Ledger) error {
		account, err := l.Accounts.FindByIDForUpdate(ctx, msg.AccountID)
		if err != nil {
			return err
		}
		card, err := l.Cards.FindByCardCode(ctx, msg.CardCode)
		if err != nil {
			return err
		}

		if account.Status == models.AccountBlocked || account.Status == models.AccountArrested {
			result = failedResult(msg, "Account is blocked or arrested")
			return nil
		}

		transaction := models.Transaction{
			AccountID: account.ID,
			CardID:    &card.ID,
			Type:      msg.Type,
			Amount:    msg.Amount,
			Status:    models.TransactionPending,
			Timestamp: p.now(),
		}
		if err := l.Transactions.Create(ctx, &transaction); err != nil {
			return err
		}

		switch msg.Type {
		case models.TransactionCredit:
			result, err = p.applyCredit(ctx, l, &account, &transaction, msg)
		case models.TransactionDebit:
			result, err = p.applyDebit(ctx, l, &account, &transaction, msg)
		default:
			result = failedResult(msg, "Unknown transaction type: "+string(msg.Type))
		}
		return err
	})
	if err != nil {
		log.Printf("error processing transaction %s: %v", msg.MessageID, err)
		return failedResult(msg, "Processing error: "+err.Error())
	}
	return result
}

func (p *TransactionProcessor) applyCredit(ctx context.Context, l Ledger, account *models.Account, transaction *models.Transaction, msg messages.TransactionMessage) (models.TransactionProcessingResult, error) {
	account.Balance = account.Balance.Add(msg.Amount)
	if err := l.Accounts.Update(ctx, account); err != nil {
		return models.TransactionProcessingResult{}, err
	}
	transaction.Status = models.TransactionCompleted
	if err := l.Transactions.Update(ctx, transaction); err != nil {
		return models.TransactionProcessingResult{}, err
	}

	if account.IsRecalc {
		// Every credit to a recalculating account is treated as a fresh
		// disbursement and gets its own schedule rooted at the message
		// timestamp.
		schedule := BuildPaymentSchedule(*account, msg.Amount, msg.Timestamp, p.scheduleMonths, p.paymentGraceDays)
		for i := range schedule {
			if err := l.Payments.Create(ctx, &schedule[i]); err != nil {
				return models.TransactionProcessingResult{}, err
			}
		}
		if err := applyDuePayments(ctx, l, account, msg.Timestamp, true); err != nil {
			return models.TransactionProcessingResult{}, err
		}
	}
	return successResult(msg, *account, "Credit transaction processed"), nil
}

func (p *TransactionProcessor) applyDebit(ctx context.Context, l Ledger, account *models.Account, transaction *models.Transaction, msg messages.TransactionMessage) (models.TransactionProcessingResult, error) {
	if account.Balance.GreaterThanOrEqual(msg.Amount) {
		account.Balance = account.Balance.Sub(msg.Amount)
		if err := l.Accounts.Update(ctx, account); err != nil {
			return models.TransactionProcessingResult{}, err
		}
		transaction.Status = models.TransactionCompleted
		if err := l.Transactions.Update(ctx, transaction); err != nil {
			return models.TransactionProcessingResult{}, err
		}
		return successResult(msg, *account, "Debit transaction processed"), nil
	}

	// Balance untouched; the FAILED transaction row still commits.
	transaction.Status = models.TransactionFailed
	if err := l.Transactions.Update(ctx, transaction); err != nil {
		return models.TransactionProcessingResult{}, err
	}
	return failedResult(msg, "Insufficient funds"), nil
}

// blockAccountAndCard reacts to a positive fraud signal. The two blocks are
// separate writes; a transaction slipping through the check-then-block window
// is acceptable.
func (p *TransactionProcessor) blockAccountAndCard(ctx context.Context, msg messages.TransactionMessage) models.TransactionProcessingResult {
	if err := p.accounts.BlockAccount(ctx, msg.AccountID); err != nil {
		log.Printf("error blocking account %d: %v", msg.AccountID, err)
		return failedResult(msg, "Error blocking account")
	}
	if err := p.cards.BlockCard(ctx, msg.CardCode); err != nil {
		log.Printf("error blocking card %s: %v", msg.CardCode, err)
		return failedResult(msg, "Error blocking account")
	}
	log.Printf("account and card blocked due to suspicious activity: %s", msg.CardCode)
	return models.TransactionProcessingResult{
		MessageID:      msg.MessageID,
		Status:         models.TransactionFailed,
		Message:        "Account blocked due to suspicious activity",
		AccountBlocked: true,
	}
}

func successResult(msg messages.TransactionMessage, account models.Account, text string) models.TransactionProcessingResult {
	return models.TransactionProcessingResult{
		MessageID:      msg.MessageID,
		Status:         models.TransactionCompleted,
		Message:        text,
		CurrentBalance: account.Balance,
	}
}

func failedResult(msg messages.TransactionMessage, text string) models.TransactionProcessingResult {
	return models.TransactionProcessingResult{
		MessageID: msg.MessageID,
		Status:    models.TransactionFailed,
		Message:   text,
	}
}
