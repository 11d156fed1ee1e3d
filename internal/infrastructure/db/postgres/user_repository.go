package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// UserRepository implements ports.UserRepository on the "user" table.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO "user" (name, password, email, logintime)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		user.Name, user.PasswordHash, user.Email, user.LoginTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

// FindByNameAndEmail returns the oldest account matching both fields, since
// the table does not enforce uniqueness.
func (r *UserRepository) FindByNameAndEmail(ctx context.Context, name, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, password, email, logintime
		 FROM "user"
		 WHERE name = $1 AND email = $2
		 ORDER BY id
		 LIMIT 1`,
		name, email,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Email, &u.LoginTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) UpdateLoginTime(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE "user" SET logintime = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("update login time: %w", err)
	}
	return nil
}
