package models

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountNotActive  = errors.New("account is not active")
	ErrCardNotFound      = errors.New("card not found")
	ErrCardExists        = errors.New("card already exists")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
