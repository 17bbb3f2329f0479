package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	tokens    ports.TokenService
	hasher    ports.PasswordHasher
	audit     ports.AuditRecorder
	metrics   ports.Metrics
	logger    zerolog.Logger
	now       func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	employees ports.EmployeeRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	audit ports.AuditRecorder,
	metrics ports.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		employees: employees,
		tokens:    tokens,
		hasher:    hasher,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a user and, when all profile fields are present, the
// employee record owned by that user. If the profile cannot be stored the
// user is removed again.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	res, err := s.register(ctx, in)
	s.metrics.AuthAttempt("register", err)
	return res, err
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username is required")
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password is required")
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.NewValidationError("role must be one of: user, admin")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("password is too long")
		}
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	result := &ports.RegisterResult{UserID: user.ID}

	profile := &domain.Employee{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Department: strings.TrimSpace(in.Department),
		OwnerID:    user.ID,
		CreatedAt:  s.now().UTC(),
	}
	if profile.Name != "" && profile.Email != "" && profile.Department != "" {
		created, err := s.employees.Create(ctx, profile)
		if err != nil {
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				s.logger.Error().Err(delErr).Str("user_id", user.ID).Msg("failed to roll back user after profile error")
			}
			return nil, err
		}
		result.EmployeeID = created.ID
		s.metrics.EmployeeMutation(domain.AuditCreated)
		s.audit.Record(domain.AuditEvent{
			EmployeeID: created.ID,
			Action:     domain.AuditCreated,
			ActorID:    user.ID,
			ActorRole:  user.Role,
			At:         created.CreatedAt,
		})
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Bool("profile", result.EmployeeID != "").
		Msg("user registered")

	return result, nil
}

// Login checks the credentials and issues a session token. Unknown users
// and wrong passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	res, err := s.login(ctx, username, password)
	s.metrics.AuthAttempt("login", err)
	return res, err
}

func (s *AuthService) login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same work as a real comparison.
			_ = s.hasher.Compare(s.fallbackHash(), password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	result := &ports.LoginResult{
		Token:  token,
		UserID: user.ID,
		Role:   user.Role,
	}

	profile, err := s.employees.FindByOwner(ctx, user.ID)
	switch {
	case err == nil:
		result.EmployeeID = profile.ID
	case !errors.Is(err, domain.ErrEmployeeNotFound):
		return nil, fmt.Errorf("login: find profile: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return result, nil
}

func (s *AuthService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("fallback-password")
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to prepare fallback hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
