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

const (
	txKeyPrefix  = "tx:"
	refKeyPrefix = "txref:"
)

// BadgerTransactionRepository implements the transaction ledger using BadgerDB.
// Each transaction is stored under its id, with a secondary key mapping the
// external reference to the id. The reference key doubles as the uniqueness
// constraint: the existence check and both writes happen inside a single
// badger transaction, so two concurrent inserts with the same reference
// commit exactly once.
type BadgerTransactionRepository struct {
	db *badger.DB
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(db *badger.DB) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{db: db}
}

// Insert persists a new transaction, enforcing external reference uniqueness
func (r *BadgerTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) error {
	tx.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	refKey := []byte(refKeyPrefix + tx.ExternalReference)

	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(refKey)
		if err == nil {
			return repository.ErrDuplicateReference
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set([]byte(txKeyPrefix+tx.ID), data); err != nil {
			return err
		}
		return txn.Set(refKey, []byte(tx.ID))
	})

	// Two racing inserts both miss the reference key; badger detects the
	// read-write conflict on the losing commit.
	if errors.Is(err, badger.ErrConflict) {
		return repository.ErrDuplicateReference
	}

	if err != nil && !errors.Is(err, repository.ErrDuplicateReference) {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	return err
}

// FindByID retrieves a transaction by its unique identifier
func (r *BadgerTransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var tx entity.Transaction

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(txKeyPrefix + id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tx)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction: %w", err)
	}

	return &tx, nil
}

// FindByReference retrieves a transaction by its external reference
func (r *BadgerTransactionRepository) FindByReference(ctx context.Context, ref string) (*entity.Transaction, error) {
	var tx entity.Transaction

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(refKeyPrefix + ref))
		if err != nil {
			return err
		}

		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(append([]byte(txKeyPrefix), id...))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tx)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transaction by reference: %w", err)
	}

	return &tx, nil
}

// UpdateStatus moves a PENDING transaction to a terminal status
func (r *BadgerTransactionRepository) UpdateStatus(ctx context.Context, id string, status entity.TransactionStatus) (*entity.Transaction, error) {
	var tx entity.Transaction

	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(txKeyPrefix + id))
		if err != nil {
			return err
		}

		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &tx)
		}); err != nil {
			return err
		}

		if tx.Status.IsTerminal() {
			return fmt.Errorf("transaction %s already finalized as %s", id, tx.Status)
		}

		tx.Status = status

		data, err := json.Marshal(&tx)
		if err != nil {
			return err
		}

		return txn.Set([]byte(txKeyPrefix+id), data)
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}

	return &tx, nil
}
