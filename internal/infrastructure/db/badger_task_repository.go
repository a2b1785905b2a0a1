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

const taskKeyPrefix = "task:"

// BadgerTaskRepository implements the task repository interface using BadgerDB
type BadgerTaskRepository struct {
	db *badger.DB
}

// NewBadgerTaskRepository creates a new BadgerDB task repository
func NewBadgerTaskRepository(db *badger.DB) *BadgerTaskRepository {
	return &BadgerTaskRepository{db: db}
}

// Store saves a task
func (r *BadgerTaskRepository) Store(ctx context.Context, task *entity.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(taskKeyPrefix+task.ID), data)
	})

	if err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}

	return nil
}

// FindByID retrieves a task by its unique identifier
func (r *BadgerTaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(taskKeyPrefix + id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	return &task, nil
}

// FindAll retrieves every stored task
func (r *BadgerTaskRepository) FindAll(ctx context.Context) ([]*entity.Task, error) {
	tasks := []*entity.Task{}

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(taskKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var task entity.Task
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &task)
			})
			if err != nil {
				return err
			}
			tasks = append(tasks, &task)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Update persists changes to an existing task
func (r *BadgerTaskRepository) Update(ctx context.Context, task *entity.Task) error {
	task.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(taskKeyPrefix + task.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(taskKeyPrefix+task.ID), data)
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return repository.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// SetStatus updates only the status of an existing task
func (r *BadgerTaskRepository) SetStatus(ctx context.Context, id string, status entity.TaskStatus) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(taskKeyPrefix + id))
		if err != nil {
			return err
		}

		var task entity.Task
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &task)
		}); err != nil {
			return err
		}

		task.Status = status
		task.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&task)
		if err != nil {
			return err
		}

		return txn.Set([]byte(taskKeyPrefix+id), data)
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return repository.ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	return nil
}
