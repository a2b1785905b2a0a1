package repository

import (
	"context"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
)

// IdempotencyRepository defines the interface for the idempotency record store
type IdempotencyRepository interface {
	// Find retrieves the record for a key, or ErrNotFound
	Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error)

	// Save persists a new record. Returns ErrDuplicateKey if a record for
	// the same key already exists, even under concurrent saves.
	Save(ctx context.Context, record *entity.IdempotencyRecord) error

	// FindAll retrieves every cached record
	FindAll(ctx context.Context) ([]*entity.IdempotencyRecord, error)
}
