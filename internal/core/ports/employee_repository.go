package ports

import (
	"context"

	"github.com/employee-portal/employee-api/internal/core/domain"
)

// EmployeeListFilter carries the query parameters for listing employees.
// OwnerID is always decided by the service layer (access scoping).
type EmployeeListFilter struct {
	OwnerID string // empty = all owners
	Search  string // case-insensitive substring on name or email
	Page    int    // 1-based
	Limit   int
}

// EmployeeRepository defines persistence operations for employee profiles.
// Unknown or malformed ids yield domain.ErrEmployeeNotFound; a duplicate
// email yields domain.ErrEmailExists.
type EmployeeRepository interface {
	Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	// FindByOwner returns the first employee owned by ownerID.
	FindByOwner(ctx context.Context, ownerID string) (*domain.Employee, error)
	// List returns one page sorted by creation time (newest first) and the
	// total number of matches.
	List(ctx context.Context, filter EmployeeListFilter) ([]*domain.Employee, int64, error)
	Update(ctx context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error)
	Delete(ctx context.Context, id string) error
}
