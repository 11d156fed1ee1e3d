package ports

import (
	"context"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create inserts the task and returns its createid. A user id that
	// references no account yields domain.ErrUnknownOwner.
	Create(ctx context.Context, task *domain.Task) (int64, error)
	// ListByUser returns the user's tasks in creation order.
	ListByUser(ctx context.Context, userID int64) ([]domain.Task, error)
}
