package ports

import (
	"context"

	"github.com/employee-portal/employee-api/internal/core/domain"
)

// RegisterInput carries a registration request. Name, Email and Department
// are optional; a profile is only created when all three are set.
type RegisterInput struct {
	Username   string
	Password   string
	Role       string
	Name       string
	Email      string
	Department string
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	UserID     string
	EmployeeID string // empty when no profile was created
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token      string
	UserID     string
	Role       string
	EmployeeID string // empty when the user owns no profile
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(userID, role string) (string, error)
	Verify(token string) (*domain.Caller, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
