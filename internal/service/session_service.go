package service

import (
	"context"
	"time"

	"tumblelog/internal/models"
	"tumblelog/internal/repository"

	"github.com/google/uuid"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionService binds opaque cookie tokens to user ids. A session only
// stores the id; Resolve re-reads the user row every time so a deleted user
// silently degrades to anonymous.
type SessionService struct {
	sessions repository.Sessions
	users    repository.Users
	ttl      time.Duration
}

func NewSessionService(sessions repository.Sessions, users repository.Users, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionService{sessions: sessions, users: users, ttl: ttl}
}

// NewID returns a fresh unguessable session token.
func (s *SessionService) NewID() string {
	return uuid.NewString()
}

// Attach binds the session to the user, replacing any prior binding and
// refreshing the expiry. Re-login on the same cookie rebinds it.
func (s *SessionService) Attach(ctx context.Context, sessionID string, userID int) error {
	return s.sessions.Upsert(ctx, models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	})
}

// Resolve returns the current user for the session, or (nil, nil) when the
// session is unknown, expired, or its user no longer exists. Only store
// failures produce an error.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(time.Now().UTC()) {
		// Lazy cleanup; the sweeper will catch it anyway.
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Detach clears the binding. Detaching an unknown session is a no-op.
func (s *SessionService) Detach(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Run sweeps expired sessions at the given interval until ctx is canceled.
func (s *SessionService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := s.sessions.DeleteExpired(ctx, now.UTC()); err != nil {
				continue
			}
		}
	}
}
