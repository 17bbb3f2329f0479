package domain

import "time"

// AuditAction names the kind of change recorded for an employee.
type AuditAction string

const (
	AuditCreated AuditAction = "created"
	AuditUpdated AuditAction = "updated"
	AuditDeleted AuditAction = "deleted"
)

// AuditEvent records a single mutation of an employee record.
type AuditEvent struct {
	EmployeeID string
	Action     AuditAction
	ActorID    string
	ActorRole  string
	At         time.Time
}
