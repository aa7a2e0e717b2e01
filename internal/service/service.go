package service

import (
	"context"
	"time"

	"tumblelog/internal/models"
	"tumblelog/internal/repository"
)

// Authenticator verifies username/password pairs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (int, error)
}

// Registrar creates accounts, guarding username uniqueness at the storage
// layer.
type Registrar interface {
	Register(ctx context.Context, username, email, password string) (int, error)
}

// Sessions maps opaque cookie tokens to users and back.
type Sessions interface {
	NewID() string
	Attach(ctx context.Context, sessionID string, userID int) error
	Resolve(ctx context.Context, sessionID string) (*models.User, error)
	Detach(ctx context.Context, sessionID string) error
	// Run sweeps expired sessions until ctx is canceled; started from main.
	Run(ctx context.Context, tick time.Duration)
}

// APITokens issues and parses bearer tokens for the JSON API.
type APITokens interface {
	Issue(userID int) (string, error)
	Parse(accessToken string) (int, error)
}

// Posts exposes the content use-cases: publish, feed, per-user list, delete.
type Posts interface {
	Create(ctx context.Context, np NewPost) (*models.Post, error)
	Feed(ctx context.Context, f FeedFilter) ([]models.Post, error)
	ListByUser(ctx context.Context, userID int) ([]models.Post, error)
	Delete(ctx context.Context, id string, userID int) error
}

// Config carries the values the services need from configuration; no service
// reads ambient globals.
type Config struct {
	SigningKey string
	TokenTTL   time.Duration
	SessionTTL time.Duration
	BcryptCost int
}

// Service aggregates all sub-services.
type Service struct {
	Authenticator
	Registrar
	Sessions
	APITokens
	Posts
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, cfg Config) *Service {
	hasher := NewBcryptHasher(cfg.BcryptCost)
	return &Service{
		Authenticator: NewAuthService(repos.Users, hasher),
		Registrar:     NewRegisterService(repos.Users, hasher),
		Sessions:      NewSessionService(repos.Sessions, repos.Users, cfg.SessionTTL),
		APITokens:     NewTokenService(cfg.SigningKey, cfg.TokenTTL),
		Posts:         NewPostService(repos.Posts),
	}
}
