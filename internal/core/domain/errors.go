package domain

import "errors"

var (
	ErrUserExists         = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrOwnerNotFound      = errors.New("userId does not reference an existing user")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("not authorized")
	ErrAdminOnly          = errors.New("admin only")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError describes a rejected input. errors.Is(err, ErrValidation)
// holds for every ValidationError.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
