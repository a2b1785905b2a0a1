package db

import (
	"context"
	"testing"

	"github.com/arnoldphilip/task-payment-system/internal/domain/entity"
	"github.com/arnoldphilip/task-payment-system/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreAndFind(t *testing.T) {
	repo := NewBadgerTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := &entity.Task{
		ID:     uuid.New().String(),
		Title:  "Pay invoice",
		Status: entity.TaskPending,
	}

	require.NoError(t, repo.Store(ctx, task))
	assert.False(t, task.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, task.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Pay invoice", found.Title)
	assert.Equal(t, entity.TaskPending, found.Status)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskFindAll(t *testing.T) {
	repo := NewBadgerTaskRepository(newTestDB(t))
	ctx := context.Background()

	tasks, err := repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, tasks)

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Store(ctx, &entity.Task{
			ID:     uuid.New().String(),
			Title:  title,
			Status: entity.TaskPending,
		}))
	}

	tasks, err = repo.FindAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, tasks, 3)
}

func TestTaskUpdate(t *testing.T) {
	repo := NewBadgerTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := &entity.Task{ID: uuid.New().String(), Title: "Old", Status: entity.TaskPending}
	require.NoError(t, repo.Store(ctx, task))

	task.Title = "New"
	assert.NoError(t, repo.Update(ctx, task))

	found, err := repo.FindByID(ctx, task.ID)
	assert.NoError(t, err)
	assert.Equal(t, "New", found.Title)

	missing := &entity.Task{ID: "missing", Title: "x"}
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}

func TestTaskSetStatus(t *testing.T) {
	repo := NewBadgerTaskRepository(newTestDB(t))
	ctx := context.Background()

	task := &entity.Task{ID: uuid.New().String(), Title: "Pay invoice", Status: entity.TaskPending}
	require.NoError(t, repo.Store(ctx, task))

	assert.NoError(t, repo.SetStatus(ctx, task.ID, entity.TaskCompleted))

	found, err := repo.FindByID(ctx, task.ID)
	assert.NoError(t, err)
	assert.Equal(t, entity.TaskCompleted, found.Status)
	assert.True(t, found.UpdatedAt.After(found.CreatedAt) || found.UpdatedAt.Equal(found.CreatedAt))

	assert.ErrorIs(t, repo.SetStatus(ctx, "missing", entity.TaskCompleted), repository.ErrNotFound)
}
