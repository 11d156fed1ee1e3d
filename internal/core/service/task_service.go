package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/api/metrics"
	"github.com/yao-todolist/todo-api/internal/core/domain"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

// ReplayStore abstracts the Idempotency-Key store (Redis).
//
// Reserve claims key atomically before the insert. reserved is true when
// the caller now owns the key. Otherwise createID is the id recorded by
// the first request, or 0 while that request is still running.
type ReplayStore interface {
	Reserve(ctx context.Context, key string) (createID int64, reserved bool, err error)
	Remember(ctx context.Context, key string, createID int64) error
	Release(ctx context.Context, key string) error
}

type TaskService struct {
	repo   ports.TaskRepository
	replay ReplayStore
	logger zerolog.Logger
}

// NewTaskService returns a TaskService. replay may be nil, in which case
// Idempotency-Key is ignored.
func NewTaskService(repo ports.TaskRepository, replay ReplayStore, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, replay: replay, logger: logger}
}

// CreateTask inserts a new incomplete task for the user.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (int64, error) {
	if input.UserID == 0 {
		return 0, domain.ErrMissingUserID
	}

	key := ""
	if s.replay != nil && input.IdempotencyKey != "" {
		key = strconv.FormatInt(input.UserID, 10) + ":" + input.IdempotencyKey
		id, reserved, err := s.replay.Reserve(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Int64("user_id", input.UserID).Msg("replay reserve failed, creating anyway")
			key = ""
		case reserved:
			metrics.TaskReplayTotal.WithLabelValues("miss").Inc()
		case id > 0:
			metrics.TaskReplayTotal.WithLabelValues("hit").Inc()
			s.logger.Info().Str("idempotency_key", input.IdempotencyKey).Int64("createid", id).Msg("idempotent replay")
			return id, nil
		default:
			metrics.TaskReplayTotal.WithLabelValues("in_flight").Inc()
			return 0, domain.ErrRequestInFlight
		}
	}

	task := &domain.Task{Text: input.Text, UserID: input.UserID}
	id, err := s.repo.Create(ctx, task)
	if err != nil {
		if key != "" {
			if rerr := s.replay.Release(ctx, key); rerr != nil {
				s.logger.Warn().Err(rerr).Msg("failed to release replay key")
			}
		}
		return 0, fmt.Errorf("create task: %w", err)
	}

	if key != "" {
		if err := s.replay.Remember(ctx, key, id); err != nil {
			s.logger.Warn().Err(err).Int64("createid", id).Msg("failed to store replay key")
		}
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Int64("createid", id).Int64("user_id", input.UserID).Msg("task created")
	return id, nil
}

// ListTasks returns the user's tasks in creation order.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]domain.Task, error) {
	if userID == 0 {
		return nil, domain.ErrMissingUserID
	}

	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}
