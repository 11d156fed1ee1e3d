package ports

import (
	"context"
	"time"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// UserRepository defines persistence for registered accounts.
type UserRepository interface {
	// Create inserts the user and returns the store-generated id.
	Create(ctx context.Context, user *domain.User) (int64, error)
	// FindByNameAndEmail matches both fields exactly. Returns
	// domain.ErrUserNotFound when no row matches.
	FindByNameAndEmail(ctx context.Context, name, email string) (*domain.User, error)
	UpdateLoginTime(ctx context.Context, id int64, at time.Time) error
}
