package ports

import (
	"context"
	"time"

	"github.com/employee-portal/employee-api/internal/core/domain"
)

// OwnerSummary is the public view of the user owning an employee record.
type OwnerSummary struct {
	ID       string
	Username string
	Role     string
}

// EmployeeView is the employee representation returned by the service.
type EmployeeView struct {
	ID         string
	Name       string
	Email      string
	Department string
	OwnerID    string
	Owner      *OwnerSummary // nil when unowned or the owner no longer exists
	CreatedAt  time.Time
}

// ListEmployeesInput carries all parameters for the list endpoint.
type ListEmployeesInput struct {
	Caller  domain.Caller
	Search  string
	OwnerID string // honoured for admins only
	Page    int
}

// ListEmployeesResult is returned by List.
type ListEmployeesResult struct {
	Items       []EmployeeView
	Total       int64
	TotalPages  int
	CurrentPage int
}

// CreateEmployeeInput carries the fields of a new employee record.
type CreateEmployeeInput struct {
	Name       string
	Email      string
	Department string
	OwnerID    string
}

// EmployeeService defines the use cases over employee records.
type EmployeeService interface {
	List(ctx context.Context, input ListEmployeesInput) (*ListEmployeesResult, error)
	Create(ctx context.Context, caller domain.Caller, input CreateEmployeeInput) (*EmployeeView, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*EmployeeView, error)
	Update(ctx context.Context, caller domain.Caller, id string, patch domain.EmployeePatch) (*EmployeeView, error)
	Delete(ctx context.Context, caller domain.Caller, id string) error
}
