package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/api/metrics"
	"github.com/yao-todolist/todo-api/internal/core/domain"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService writing to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process assigns an id to the event if needed and persists it.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	start := time.Now()
	defer func() { metrics.AuditProcessingDuration.Observe(time.Since(start).Seconds()) }()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		metrics.AuditErrorsTotal.Inc()
		return fmt.Errorf("process audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	s.log.Debug().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("name", event.Name).
		Msg("audit event recorded")

	return nil
}
