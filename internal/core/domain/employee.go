package domain

import (
	"strings"
	"time"
)

// Employee is the profile record managed by the API. OwnerID links the
// record to the User allowed to see it; it may be empty.
type Employee struct {
	ID         string
	Name       string
	Email      string
	Department string
	OwnerID    string
	CreatedAt  time.Time
}

// EmployeePatch carries a partial update. Nil fields are left untouched.
type EmployeePatch struct {
	Name       *string
	Email      *string
	Department *string
	OwnerID    *string
}

// Empty reports whether the patch changes nothing.
func (p EmployeePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Department == nil && p.OwnerID == nil
}

// Apply merges the patch into e.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Email != nil {
		e.Email = *p.Email
	}
	if p.Department != nil {
		e.Department = *p.Department
	}
	if p.OwnerID != nil {
		e.OwnerID = *p.OwnerID
	}
}

// Validate checks the required profile fields.
func (e *Employee) Validate() error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return NewValidationError("name is required")
	case strings.TrimSpace(e.Email) == "":
		return NewValidationError("email is required")
	case strings.TrimSpace(e.Department) == "":
		return NewValidationError("department is required")
	}
	return nil
}
