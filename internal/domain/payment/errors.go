package payment

import "errors"

var (
	// ErrInvalidPackage is returned when the package is missing or inactive
	ErrInvalidPackage = errors.New("invalid or inactive package")

	// ErrSignatureMismatch is returned when the callback signature doesn't verify
	ErrSignatureMismatch = errors.New("invalid payment signature")

	// ErrTransactionNotFound is returned when no transaction matches the order id
	ErrTransactionNotFound = errors.New("payment transaction not found")

	// ErrAlreadyProcessed guards against replayed callbacks for a completed transaction
	ErrAlreadyProcessed = errors.New("payment already processed")

	// ErrForbidden is returned when the caller doesn't own the transaction
	ErrForbidden = errors.New("payment belongs to a different account")

	// ErrVerifyInProgress is returned when another verification holds the order lock
	ErrVerifyInProgress = errors.New("payment verification already in progress")

	ErrInternal = errors.New("internal error")
)
