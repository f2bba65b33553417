package errors

import "errors"

var (
	ErrNotFound = errors.New("promo code not found")

	ErrDuplicateCode = errors.New("promo code already exists")

	ErrUsageExhausted = errors.New("promo code usage limit reached")
)
