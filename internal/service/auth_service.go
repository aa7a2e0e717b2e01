package service

import (
	"context"

	"tumblelog/internal/repository"
)

// AuthService verifies credentials against the user store.
type AuthService struct {
	users  repository.Users
	hasher PasswordHasher
}

func NewAuthService(users repository.Users, hasher PasswordHasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Login checks a username/password pair and returns the user id on success.
// Unknown username and wrong password both fail with ErrInvalidCredentials
// so a caller cannot enumerate usernames from the error. Store failures and
// corrupt digests propagate as-is.
func (s *AuthService) Login(ctx context.Context, username, password string) (int, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrInvalidCredentials
	}
	return u.ID, nil
}
