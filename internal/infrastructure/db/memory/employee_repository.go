package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

type EmployeeRepository struct {
	mu   sync.RWMutex
	byID map[string]*domain.Employee
}

func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{byID: make(map[string]*domain.Employee)}
}

func (r *EmployeeRepository) Create(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(e.Email, "") {
		return nil, domain.ErrEmailExists
	}

	clone := *e
	clone.ID = primitive.NewObjectID().Hex()
	r.byID[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *EmployeeRepository) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	out := *e
	return &out, nil
}

func (r *EmployeeRepository) FindByOwner(_ context.Context, ownerID string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Employee
	for _, e := range r.byID {
		if e.OwnerID != ownerID {
			continue
		}
		if found == nil || e.ID < found.ID {
			found = e
		}
	}
	if found == nil {
		return nil, domain.ErrEmployeeNotFound
	}
	out := *found
	return &out, nil
}

// List mirrors the Mongo query: owner filter, case-insensitive substring on
// name or email, newest first, then skip/limit.
func (r *EmployeeRepository) List(_ context.Context, f ports.EmployeeListFilter) ([]*domain.Employee, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(f.Search)
	matched := make([]*domain.Employee, 0, len(r.byID))
	for _, e := range r.byID {
		if f.OwnerID != "" && e.OwnerID != f.OwnerID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Name), search) &&
			!strings.Contains(strings.ToLower(e.Email), search) {
			continue
		}
		clone := *e
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))

	if len(matched) == 0 {
		return []*domain.Employee{}, total, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	page := max(f.Page, 1)
	// Compare page numbers rather than offsets so huge pages cannot overflow.
	if page-1 >= (len(matched)+limit-1)/limit {
		return []*domain.Employee{}, total, nil
	}
	skip := (page - 1) * limit
	end := min(skip+limit, len(matched))
	return matched[skip:end], total, nil
}

func (r *EmployeeRepository) Update(_ context.Context, id string, patch domain.EmployeePatch) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, domain.ErrEmailExists
	}

	patch.Apply(e)
	out := *e
	return &out, nil
}

func (r *EmployeeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.byID, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *EmployeeRepository) emailTaken(email, exceptID string) bool {
	for id, e := range r.byID {
		if id != exceptID && e.Email == email {
			return true
		}
	}
	return false
}
