package repository

import "errors"

// Store-level sentinel errors. The unique-insert sentinels are the
// serialization point for concurrent duplicate submissions: the first
// writer wins and every later writer observes the corresponding error.
var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateReference is returned when a transaction with the same
	// external reference has already been persisted
	ErrDuplicateReference = errors.New("duplicate external reference")

	// ErrDuplicateKey is returned when an idempotency record already
	// exists for the given key
	ErrDuplicateKey = errors.New("duplicate idempotency key")
)
