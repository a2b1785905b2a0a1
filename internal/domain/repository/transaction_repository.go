package repository

import (
	"context"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
)

// TransactionRepository defines the interface for the transaction ledger.
// External references are globally unique across all transactions; the
// store enforces this atomically on insert.
type TransactionRepository interface {
	// Insert persists a new transaction. Returns ErrDuplicateReference if a
	// transaction with the same external reference already exists, even
	// under concurrent inserts.
	Insert(ctx context.Context, tx *entity.Transaction) error

	// FindByID retrieves a transaction by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)

	// FindByReference retrieves a transaction by its external reference
	FindByReference(ctx context.Context, ref string) (*entity.Transaction, error)

	// UpdateStatus moves a PENDING transaction to a terminal status.
	// Transactions already in a terminal status are never modified.
	UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus) (*entity.Transaction, error)
}
