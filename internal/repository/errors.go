package repository

import "errors"

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrDuplicateEvent  = errors.New("payment event already recorded")
)
