package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bankledger/account-processing/internal/middleware"
	"github.com/bankledger/account-processing/internal/models"
)

// AccountReader defines the read operations used by AccountHandler.
type AccountReader interface {
	FindByID(ctx context.Context, id int64) (models.Account, error)
	FindByClientID(ctx context.Context, clientID string) ([]models.Account, error)
}

// PaymentReader defines the payment queries used by AccountHandler.
type PaymentReader interface {
	FindPendingPaymentsByAccount(ctx context.Context, accountID int64) ([]models.Payment, error)
	FindDuePayments(ctx context.Context, accountID int64, asOf time.Time) ([]models.Payment, error)
	TotalDebt(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// TransactionReader defines the transaction queries used by AccountHandler.
type TransactionReader interface {
	FindByAccountID(ctx context.Context, accountID int64) ([]models.Transaction, error)
}

type AccountHandler struct {
	accounts     AccountReader
	payments     PaymentReader
	transactions TransactionReader
}

func NewAccountHandler(accounts AccountReader, payments PaymentReader, transactions TransactionReader) *AccountHandler {
	return &AccountHandler{accounts: accounts, payments: payments, transactions: transactions}
}

func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return 0, false
	}
	return id, true
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	account, err := h.accounts.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListAccountsByClient(c *gin.Context) {
	accounts, err := h.accounts.FindByClientID(c.Request.Context(), c.Query("clientId"))
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (h *AccountHandler) ListPayments(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	var (
		payments []models.Payment
		err      error
	)
	if c.Query("due") == "true" {
		payments, err = h.payments.FindDuePayments(c.Request.Context(), id, time.Now())
	} else {
		payments, err = h.payments.FindPendingPaymentsByAccount(c.Request.Context(), id)
	}
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *AccountHandler) GetTotalDebt(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	debt, err := h.payments.TotalDebt(c.Request.Context(), id)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to calculate debt")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountId": id, "totalDebt": debt})
}

func (h *AccountHandler) ListTransactions(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}
	transactions, err := h.transactions.FindByAccountID(c.Request.Context(), id)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
