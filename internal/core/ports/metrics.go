package ports

import "github.com/employee-portal/employee-api/internal/core/domain"

// Metrics receives the business counters emitted by the services.
type Metrics interface {
	AuthAttempt(operation string, err error)
	EmployeeMutation(action domain.AuditAction)
	AccessDenied(reason string)
}
