package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bankledger/account-processing/internal/middleware"
	"github.com/bankledger/account-processing/internal/models"
)

// CardManager defines the card operations used by CardHandler.
type CardManager interface {
	CreateCard(ctx context.Context, accountID int64, cardCode, paymentSystem string) (models.Card, error)
	FindByCardCode(ctx context.Context, cardCode string) (models.Card, error)
	BlockCard(ctx context.Context, cardCode string) error
	ActivateCard(ctx context.Context, cardCode string) error
}

type CardHandler struct {
	cards CardManager
}

type CreateCardRequest struct {
	AccountID     int64  `json:"accountId" validate:"required"`
	CardID        string `json:"cardId" validate:"required"`
	PaymentSystem string `json:"paymentSystem" validate:"required,oneof=VISA MASTERCARD MIR"`
}

func NewCardHandler(cards CardManager) *CardHandler {
	return &CardHandler{cards: cards}
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	card, err := h.cards.CreateCard(c.Request.Context(), req.AccountID, req.CardID, req.PaymentSystem)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAccountNotFound):
			middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
		case errors.Is(err, models.ErrAccountNotActive):
			middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Account is not active")
		case errors.Is(err, models.ErrCardExists):
			middleware.RespondWithError(c, http.StatusConflict, "Card already exists")
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create card")
		}
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.cards.FindByCardCode(c.Request.Context(), c.Param("cardCode"))
	if err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Card not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to get card")
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) BlockCard(c *gin.Context) {
	h.setStatus(c, h.cards.BlockCard)
}

func (h *CardHandler) ActivateCard(c *gin.Context) {
	h.setStatus(c, h.cards.ActivateCard)
}

func (h *CardHandler) setStatus(c *gin.Context, op func(context.Context, string) error) {
	if err := op(c.Request.Context(), c.Param("cardCode")); err != nil {
		if errors.Is(err, models.ErrCardNotFound) {
			middleware.RespondWithError(c, http.StatusNotFound, "Card not found")
			return
		}
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to update card")
		return
	}
	c.Status(http.StatusNoContent)
}
