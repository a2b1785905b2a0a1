package service

import (
	"context"
	"fmt"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/logger"
	"github.com/arnoldphilip/task-payment-system/internal/infrastructure/middleware"
	"github.com/google/uuid"
)

// TaskService handles business logic for tasks
type TaskService struct {
	repo   repository.TaskRepository
	logger logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo repository.TaskRepository, log logger.Logger) *TaskService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TaskService{repo: repo, logger: log}
}

// CreateTask creates and stores a new task in PENDING state
func (s *TaskService) CreateTask(ctx context.Context, title, description string) (*entity.Task, error) {
	s.logger.Info("Creating task", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"title":      title,
	})

	task := &entity.Task{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Status:      entity.TaskPending,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// ListTasks retrieves all tasks
func (s *TaskService) ListTasks(ctx context.Context) ([]*entity.Task, error) {
	return s.repo.FindAll(ctx)
}

// UpdateTask updates the title and description of an existing task
func (s *TaskService) UpdateTask(ctx context.Context, id, title, description string) (*entity.Task, error) {
	s.logger.Info("Updating task", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"task_id":    id,
	})

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = description

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task %s: %w", id, err)
	}

	return task, nil
}
