// Package auth handles registration and login against the local user
// store. Validation failures are reported per field so the UI can
// highlight exactly what to fix; they never touch session state.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lukereid/focusbuddy/pkg/store"
)

// MinPasswordLength is the registration password floor.
const MinPasswordLength = 6

// ErrInvalidCredentials is returned by Login when no user matches.
var ErrInvalidCredentials = errors.New("auth: invalid email or password")

// ValidationError carries field-level problems from registration.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "auth: validation failed: " + strings.Join(parts, "; ")
}

// Service provides registration and login.
type Service struct {
	users *store.UserStore
}

// NewService creates an auth service over the user store.
func NewService(users *store.UserStore) *Service {
	return &Service{users: users}
}

// Register validates the fields and creates the account. Returns
// *ValidationError for field problems and store.ErrEmailTaken for a
// duplicate email.
func (s *Service) Register(name, email, password string) (*store.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "name is required"
	}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "a valid email is required"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.users.Create(name, email, password)
}

// Login checks the credentials and returns the matching user.
func (s *Service) Login(email, password string) (*store.User, error) {
	email = strings.TrimSpace(email)

	u, err := s.users.Authenticate(email, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
