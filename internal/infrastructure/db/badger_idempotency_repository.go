package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const idemKeyPrefix = "idem:"

// BadgerIdempotencyRepository implements the idempotency record store using
// BadgerDB. Save enforces key uniqueness the same way the transaction ledger
// enforces reference uniqueness: check and write in one badger transaction,
// with a racing commit surfacing as a conflict.
type BadgerIdempotencyRepository struct {
	db *badger.DB
}

// NewBadgerIdempotencyRepository creates a new BadgerDB idempotency repository
func NewBadgerIdempotencyRepository(db *badger.DB) *BadgerIdempotencyRepository {
	return &BadgerIdempotencyRepository{db: db}
}

// Find retrieves the record for a key
func (r *BadgerIdempotencyRepository) Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error) {
	var record entity.IdempotencyRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idemKeyPrefix + key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve idempotency record: %w", err)
	}

	return &record, nil
}

// Save persists a new record, enforcing key uniqueness
func (r *BadgerIdempotencyRepository) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	record.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	storeKey := []byte(idemKeyPrefix + record.Key)

	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(storeKey)
		if err == nil {
			return repository.ErrDuplicateKey
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(storeKey, data)
	})

	if errors.Is(err, badger.ErrConflict) {
		return repository.ErrDuplicateKey
	}

	if err != nil && !errors.Is(err, repository.ErrDuplicateKey) {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}

	return err
}

// FindAll retrieves every cached record
func (r *BadgerIdempotencyRepository) FindAll(ctx context.Context) ([]*entity.IdempotencyRecord, error) {
	records := []*entity.IdempotencyRecord{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(idemKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record entity.IdempotencyRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, &record)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list idempotency records: %w", err)
	}

	return records, nil
}
