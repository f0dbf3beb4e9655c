package catalog

import "errors"

var (
	// ErrPackageNotFound is returned when the package doesn't exist
	ErrPackageNotFound = errors.New("credit package not found")

	ErrInternal = errors.New("internal error")
)
