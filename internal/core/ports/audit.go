package ports

import (
	"context"

	"github.com/yao-todolist/todo-api/internal/core/domain"
)

// AuditRepository persists credential audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts events for asynchronous recording. Record must not
// block the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}

// AuditService writes a single event to the audit trail.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
