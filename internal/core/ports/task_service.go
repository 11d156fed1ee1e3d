package ports

import (
	"context"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// CreateTaskInput carries the data for a new task.
type CreateTaskInput struct {
	Text   string
	UserID int64
	// IdempotencyKey is optional; a repeated key returns the first createid.
	IdempotencyKey string
}

// TaskService defines the task use cases.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (int64, error)
	ListTasks(ctx context.Context, userID int64) ([]domain.Task, error)
}
