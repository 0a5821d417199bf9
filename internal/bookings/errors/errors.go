package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrListingNotFound = errors.New("listing not found")

	ErrLockHeld = errors.New("listing is locked by another booking operation")

	ErrPaymentDeclined = errors.New("payment declined")
)
