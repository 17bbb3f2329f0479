package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
	"github.com/employee-portal/employee-api/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// recordingAudit collects audit events synchronously.
type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

// countingMetrics tallies the counters the services emit.
type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

func (m *countingMetrics) AuthAttempt(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.inc("auth:" + operation + ":" + result)
}

func (m *countingMetrics) EmployeeMutation(action domain.AuditAction) {
	m.inc("mutation:" + string(action))
}

func (m *countingMetrics) AccessDenied(reason string) { m.inc("denied:" + reason) }

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

// failingEmployees wraps a real repository and fails selected calls.
type failingEmployees struct {
	ports.EmployeeRepository
	createErr      error
	findByOwnerErr error
}

func (f *failingEmployees) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.EmployeeRepository.Create(ctx, e)
}

func (f *failingEmployees) FindByOwner(ctx context.Context, ownerID string) (*domain.Employee, error) {
	if f.findByOwnerErr != nil {
		return nil, f.findByOwnerErr
	}
	return f.EmployeeRepository.FindByOwner(ctx, ownerID)
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	users     *memory.UserRepository
	employees *memory.EmployeeRepository
	audit     *recordingAudit
	metrics   *countingMetrics
	tokens    *TokenService
	auth      *AuthService
	svc       *EmployeeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:     memory.NewUserRepository(),
		employees: memory.NewEmployeeRepository(),
		audit:     &recordingAudit{},
		metrics:   &countingMetrics{},
		tokens:    NewTokenService("test-secret", 0),
	}
	f.auth = NewAuthService(f.users, f.employees, f.tokens, NewBcryptHasher(bcrypt.MinCost), f.audit, f.metrics, discardLogger)
	f.svc = NewEmployeeService(f.employees, f.users, f.audit, f.metrics, discardLogger)
	return f
}

// register creates a user with a profile and returns the caller and employee id.
func (f *fixture) register(t *testing.T, username, role, email string) (domain.Caller, string) {
	t.Helper()

	res, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Username:   username,
		Password:   "pw-" + username,
		Role:       role,
		Name:       username,
		Email:      email,
		Department: "Eng",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Caller{UserID: res.UserID, Role: role}, res.EmployeeID
}

// registerBare creates a user without a profile.
func (f *fixture) registerBare(t *testing.T, username, role string) domain.Caller {
	t.Helper()

	res, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Username: username,
		Password: "pw-" + username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	if role == "" {
		role = domain.RoleUser
	}
	return domain.Caller{UserID: res.UserID, Role: role}
}

func strPtr(s string) *string { return &s }
