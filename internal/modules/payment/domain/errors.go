package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrPaymentNotCaptured = errors.New("payment not captured")
	ErrNotConfigured      = errors.New("payment provider not configured")
)
