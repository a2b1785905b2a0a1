package repository

import (
	"context"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
)

// TaskRepository defines the interface for task storage
type TaskRepository interface {
	// Store saves a task
	Store(ctx context.Context, task *entity.Task) error

	// FindByID retrieves a task by its unique identifier
	FindByID(ctx context.Context, id string) (*entity.Task, error)

	// FindAll retrieves every stored task
	FindAll(ctx context.Context) ([]*entity.Task, error)

	// Update persists changes to an existing task
	Update(ctx context.Context, task *entity.Task) error

	// SetStatus updates only the status of an existing task
	SetStatus(ctx context.Context, id string, status entity.TaskStatus) error
}
