// Package errors provides custom error types for store ledger operations.
package errors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrProductExists       = errors.New("product already exists")
	ErrProductNotFound     = errors.New("product not found")
	ErrUnauthorized        = errors.New("caller is not the store owner")
	ErrAlreadyPurchased    = errors.New("buyer already holds an open purchase")
	ErrOutOfStock          = errors.New("product is out of stock")
	ErrInsufficientPayment = errors.New("payment is below the listed price")
	ErrNoPurchaseFound     = errors.New("no open purchase found")
	ErrGracePeriodExpired  = errors.New("return grace period expired")
	ErrTransferFailed      = errors.New("value transfer failed")
	ErrQuantityOverflow    = errors.New("product quantity overflow")
)
