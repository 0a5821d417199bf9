package errors

import "errors"

var (
	ErrNotFound = errors.New("listing not found")

	ErrInvalidID = errors.New("invalid listing ID format")

	ErrDuplicateReview = errors.New("review already exists for this author and listing")
)
