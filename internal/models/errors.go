package models

import "errors"

var (
	// ErrNoResult is returned when no result set has been stored yet
	ErrNoResult = errors.New("no result available")

	// ErrInvalidQuery is returned for non-positive league/category or negative sub-category IDs
	ErrInvalidQuery = errors.New("invalid query: league and category IDs must be positive, sub-category must not be negative")
)
