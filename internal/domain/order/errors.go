package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("order: not found")
	ErrLineNotFound = fmt.Errorf("%w: order line", ErrNotFound)

	ErrValidation       = errors.New("order: validation failed")
	ErrInvalidID        = fmt.Errorf("%w: id is required", ErrValidation)
	ErrInvalidQuantity  = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrDuplicateProduct = fmt.Errorf("%w: product already in order", ErrValidation)
	ErrCurrencyMismatch = fmt.Errorf("%w: line currency differs from order currency", ErrValidation)
	ErrInvalidStatus    = fmt.Errorf("%w: unknown status", ErrValidation)

	ErrEmptyOrder  = errors.New("order: cannot pay an empty order")
	ErrAlreadyPaid = errors.New("order: already paid")

	ErrCannotBeModified = errors.New("order: cannot be modified")
	ErrOrderCancelled   = fmt.Errorf("%w: order is cancelled", ErrCannotBeModified)
	ErrCannotCancelPaid = fmt.Errorf("%w: cannot cancel paid order", ErrCannotBeModified)
)
