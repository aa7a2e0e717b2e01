package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tumblelog/internal/repository"
)

const (
	maxUsernameLen = 64
	minPasswordLen = 6
)

// RegisterService creates new accounts.
type RegisterService struct {
	users  repository.Users
	hasher PasswordHasher
}

func NewRegisterService(users repository.Users, hasher PasswordHasher) *RegisterService {
	return &RegisterService{users: users, hasher: hasher}
}

// Register validates the fields, hashes the password and inserts the user.
// There is no check-then-insert: the unique index on username is the only
// duplicate detection, so two concurrent registrations of the same name
// cannot both succeed. The losing insert surfaces as ErrDuplicateUsername.
func (s *RegisterService) Register(ctx context.Context, username, email, password string) (int, error) {
	if verr := validateNewUser(username, email, password); verr != nil {
		return 0, verr
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	id, err := s.users.CreateUnique(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return id, nil
}

func validateNewUser(username, email, password string) error {
	fields := map[string]string{}

	switch name := strings.TrimSpace(username); {
	case name == "":
		fields["username"] = "is required"
	case name != username:
		fields["username"] = "must not start or end with spaces"
	case len(username) > maxUsernameLen:
		fields["username"] = fmt.Sprintf("must be at most %d characters", maxUsernameLen)
	}

	if email = strings.TrimSpace(email); email == "" {
		fields["email"] = "is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "is not a valid address"
	}

	if strings.TrimSpace(password) == "" {
		fields["password"] = "is required"
	} else if len(password) < minPasswordLen {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLen)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
