package credit

import "errors"

var (
	// ErrInsufficientCredits is returned when a debit exceeds the balance
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrAccountNotFound is returned when the account row doesn't exist
	ErrAccountNotFound = errors.New("credit account not found")

	ErrInternal = errors.New("internal error")
)
