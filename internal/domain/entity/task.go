package entity

import (
	"errors"
	"time"
)

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	// TaskPending is the initial state of every task
	TaskPending TaskStatus = "PENDING"
	// TaskCompleted is set when a payment against the task settles successfully
	TaskCompleted TaskStatus = "COMPLETED"
	// TaskCancelled is set when a payment against the task is declined
	TaskCancelled TaskStatus = "CANCELLED"
)

// Task is the unit of work a payment is executed against. The payment
// workflow only reads tasks and mutates their status; it never creates
// or deletes them.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validate ensures the task meets all requirements
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}

	return nil
}
