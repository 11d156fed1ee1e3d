package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// Runs against a disposable database only; the tables are truncated.
func TestRepositories_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE tasks, "user" RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	id, err := users.Create(ctx, &domain.User{Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$hash", LoginTime: time.Now()})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected user id 1, got %d", id)
	}

	u, err := users.FindByNameAndEmail(ctx, "Alice", "a@x.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if u.ID != id || u.PasswordHash != "$2a$hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if _, err := users.FindByNameAndEmail(ctx, "alice", "a@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for case mismatch, got %v", err)
	}

	later := time.Now().Add(time.Hour).UTC().Truncate(time.Microsecond)
	if err := users.UpdateLoginTime(ctx, id, later); err != nil {
		t.Fatalf("update login time: %v", err)
	}
	u, _ = users.FindByNameAndEmail(ctx, "Alice", "a@x.com")
	if !u.LoginTime.Equal(later) {
		t.Fatalf("expected logintime %v, got %v", later, u.LoginTime)
	}

	createID, err := tasks.Create(ctx, &domain.Task{Text: "buy milk", UserID: id})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if createID != 1 {
		t.Fatalf("expected createid 1, got %d", createID)
	}

	if _, err := tasks.Create(ctx, &domain.Task{Text: "orphan", UserID: 999}); !errors.Is(err, domain.ErrUnknownOwner) {
		t.Fatalf("expected ErrUnknownOwner, got %v", err)
	}

	list, err := tasks.ListByUser(ctx, id)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != 1 || list[0].Text != "buy milk" || list[0].Status {
		t.Fatalf("unexpected tasks: %+v", list)
	}
}
