package ports

import (
	"context"

	"github.com/employee-portal/employee-api/internal/core/domain"
)

// AuditRepository persists the employee audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
