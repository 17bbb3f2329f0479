package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// PageSize is the fixed number of employees returned per list page.
const PageSize = 10

// maxPage keeps the store offset (page-1)*PageSize inside an int. No page
// past it can hold records.
const maxPage = math.MaxInt / PageSize

type EmployeeService struct {
	employees ports.EmployeeRepository
	users     ports.UserRepository
	audit     ports.AuditRecorder
	metrics   ports.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

func NewEmployeeService(
	employees ports.EmployeeRepository,
	users ports.UserRepository,
	audit ports.AuditRecorder,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		users:     users,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns one page of employees visible to the caller. Non-admin
// callers are scoped to their own records before the query runs, so the
// total only ever counts what they may see.
func (s *EmployeeService) List(ctx context.Context, in ports.ListEmployeesInput) (*ports.ListEmployeesResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}

	items, total, err := s.employees.List(ctx, ports.EmployeeListFilter{
		OwnerID: in.Caller.Scope(strings.TrimSpace(in.OwnerID)),
		Search:  strings.TrimSpace(in.Search),
		Page:    min(page, maxPage),
		Limit:   PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	owners, err := s.ownersOf(ctx, items)
	if err != nil {
		return nil, err
	}

	views := make([]ports.EmployeeView, 0, len(items))
	for _, e := range items {
		views = append(views, toView(e, owners[e.OwnerID]))
	}

	return &ports.ListEmployeesResult{
		Items:       views,
		Total:       total,
		TotalPages:  int((total + PageSize - 1) / PageSize),
		CurrentPage: page,
	}, nil
}

// Create stores a new employee. Only admins may create records directly.
func (s *EmployeeService) Create(ctx context.Context, caller domain.Caller, in ports.CreateEmployeeInput) (*ports.EmployeeView, error) {
	if !caller.IsAdmin() {
		s.metrics.AccessDenied("admin_only")
		return nil, domain.ErrAdminOnly
	}

	e := &domain.Employee{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		OwnerID:    strings.TrimSpace(in.OwnerID),
		CreatedAt:  s.now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.requireOwner(ctx, e.OwnerID)
	if err != nil {
		return nil, err
	}

	created, err := s.employees.Create(ctx, e)
	if err != nil {
		return nil, err
	}

	s.record(created.ID, domain.AuditCreated, caller)
	s.logger.Info().Str("employee_id", created.ID).Str("actor_id", caller.UserID).Msg("employee created")

	view := toView(created, owner)
	return &view, nil
}

// Get returns a single employee if the caller may access it.
func (s *EmployeeService) Get(ctx context.Context, caller domain.Caller, id string) (*ports.EmployeeView, error) {
	e, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, e.OwnerID)
	if err != nil {
		return nil, err
	}

	view := toView(e, owner)
	return &view, nil
}

// Update merges patch into the employee. Reassigning the owner is reserved
// for admins and the new owner must exist.
func (s *EmployeeService) Update(ctx context.Context, caller domain.Caller, id string, patch domain.EmployeePatch) (*ports.EmployeeView, error) {
	current, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	patch = trimPatch(patch)
	if patch.OwnerID != nil && *patch.OwnerID != current.OwnerID {
		if !caller.IsAdmin() {
			s.metrics.AccessDenied("admin_only")
			return nil, domain.ErrForbidden
		}
		if _, err := s.requireOwner(ctx, *patch.OwnerID); err != nil {
			return nil, err
		}
	}

	merged := *current
	patch.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updated := current
	if !patch.Empty() {
		updated, err = s.employees.Update(ctx, id, patch)
		if err != nil {
			return nil, err
		}
		s.record(updated.ID, domain.AuditUpdated, caller)
		s.logger.Info().Str("employee_id", updated.ID).Str("actor_id", caller.UserID).Msg("employee updated")
	}

	owner, err := s.ownerOf(ctx, updated.OwnerID)
	if err != nil {
		return nil, err
	}

	view := toView(updated, owner)
	return &view, nil
}

// Delete removes the employee if the caller may access it.
func (s *EmployeeService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, id); err != nil {
		return err
	}

	s.record(id, domain.AuditDeleted, caller)
	s.logger.Info().Str("employee_id", id).Str("actor_id", caller.UserID).Msg("employee deleted")
	return nil
}

// load fetches the record and applies the access rule. Existence is checked
// first so an unknown id is always a 404.
func (s *EmployeeService) load(ctx context.Context, caller domain.Caller, id string) (*domain.Employee, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(e.OwnerID) {
		s.metrics.AccessDenied("not_owner")
		s.logger.Warn().Str("employee_id", id).Str("caller_id", caller.UserID).Msg("access to employee denied")
		return nil, domain.ErrForbidden
	}
	return e, nil
}

// requireOwner resolves ownerID, which may be empty.
func (s *EmployeeService) requireOwner(ctx context.Context, ownerID string) (*domain.User, error) {
	if ownerID == "" {
		return nil, nil
	}
	u, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("resolve owner: %w", err)
	}
	return u, nil
}

// ownerOf is like requireOwner but tolerates a dangling reference.
func (s *EmployeeService) ownerOf(ctx context.Context, ownerID string) (*domain.User, error) {
	u, err := s.requireOwner(ctx, ownerID)
	if errors.Is(err, domain.ErrOwnerNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *EmployeeService) ownersOf(ctx context.Context, items []*domain.Employee) (map[string]*domain.User, error) {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, e := range items {
		if e.OwnerID == "" {
			continue
		}
		if _, ok := seen[e.OwnerID]; ok {
			continue
		}
		seen[e.OwnerID] = struct{}{}
		ids = append(ids, e.OwnerID)
	}

	owners := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	for _, u := range users {
		owners[u.ID] = u
	}
	return owners, nil
}

func (s *EmployeeService) record(employeeID string, action domain.AuditAction, caller domain.Caller) {
	s.metrics.EmployeeMutation(action)
	s.audit.Record(domain.AuditEvent{
		EmployeeID: employeeID,
		Action:     action,
		ActorID:    caller.UserID,
		ActorRole:  caller.Role,
		At:         s.now().UTC(),
	})
}

func trimPatch(p domain.EmployeePatch) domain.EmployeePatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return domain.EmployeePatch{
		Name:       trim(p.Name),
		Email:      trim(p.Email),
		Department: trim(p.Department),
		OwnerID:    trim(p.OwnerID),
	}
}

func toView(e *domain.Employee, owner *domain.User) ports.EmployeeView {
	v := ports.EmployeeView{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		OwnerID:    e.OwnerID,
		CreatedAt:  e.CreatedAt,
	}
	if owner != nil {
		v.Owner = &ports.OwnerSummary{ID: owner.ID, Username: owner.Username, Role: owner.Role}
	}
	return v
}
