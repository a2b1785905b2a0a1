package db

import (
	"context"
	"sync"
	"testing"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a throwaway BadgerDB in a temp directory
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	opts.SyncWrites = false

	badgerDB, err := badger.Open(opts)
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() {
		badgerDB.Close()
	})

	return badgerDB
}

func newPendingTransaction(ref string) *entity.Transaction {
	return &entity.Transaction{
		ID:                uuid.New().String(),
		Amount:            decimal.RequireFromString("100.00"),
		Currency:          "USD",
		Status:            entity.StatusPending,
		Type:              entity.TypeDebit,
		TaskID:            "task-1",
		ExternalReference: ref,
	}
}

func TestTransactionInsertAndFind(t *testing.T) {
	repo := NewBadgerTransactionRepository(newTestDB(t))
	ctx := context.Background()

	tx := newPendingTransaction("ref-1")
	require.NoError(t, repo.Insert(ctx, tx))
	assert.False(t, tx.CreatedAt.IsZero(), "created_at should be stamped on insert")

	byID, err := repo.FindByID(ctx, tx.ID)
	assert.NoError(t, err)
	assert.Equal(t, tx.ID, byID.ID)
	assert.Equal(t, entity.StatusPending, byID.Status)
	assert.True(t, byID.Amount.Equal(tx.Amount))

	byRef, err := repo.FindByReference(ctx, "ref-1")
	assert.NoError(t, err)
	assert.Equal(t, tx.ID, byRef.ID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.FindByReference(ctx, "missing-ref")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTransactionReferenceUniqueness(t *testing.T) {
	repo := NewBadgerTransactionRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newPendingTransaction("ref-dup")))

	err := repo.Insert(ctx, newPendingTransaction("ref-dup"))
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestTransactionConcurrentInsertSameReference(t *testing.T) {
	repo := NewBadgerTransactionRepository(newTestDB(t))
	ctx := context.Background()

	const attempts = 10

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Insert(ctx, newPendingTransaction("ref-race"))
		}()
	}

	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, repository.ErrDuplicateReference):
			conflicts++
		}
	}

	assert.Equal(t, 1, wins, "exactly one insert may win")
	assert.Equal(t, attempts-1, conflicts)

	// The winner is retrievable and unique
	tx, err := repo.FindByReference(ctx, "ref-race")
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusPending, tx.Status)
}

func TestTransactionStatusTransitions(t *testing.T) {
	repo := NewBadgerTransactionRepository(newTestDB(t))
	ctx := context.Background()

	tx := newPendingTransaction("ref-final")
	require.NoError(t, repo.Insert(ctx, tx))

	finalized, err := repo.UpdateStatus(ctx, tx.ID, entity.StatusSuccess)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, finalized.Status)

	// Terminal statuses are one-way
	_, err = repo.UpdateStatus(ctx, tx.ID, entity.StatusFailed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already finalized")

	persisted, err := repo.FindByID(ctx, tx.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, persisted.Status)

	_, err = repo.UpdateStatus(ctx, "missing", entity.StatusSuccess)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
