package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tumblelog/internal/models"
)

// ErrDuplicate is returned by CreateUnique when the username unique index
// rejects the insert. The service layer maps it to its own taxonomy.
var ErrDuplicate = errors.New("duplicate key")

type Users interface {
	// CreateUnique inserts a new user and returns its ID. Uniqueness of the
	// username is enforced by the storage index, not by a prior lookup, so
	// concurrent registrations cannot both succeed.
	CreateUnique(ctx context.Context, username, email, passwordHash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type Sessions interface {
	// Upsert overwrites any existing binding for the same session id.
	Upsert(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete is idempotent: deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, from, to time.Time, limit int) ([]models.Post, error)
	ListByUser(ctx context.Context, userID int) ([]models.Post, error)
	Delete(ctx context.Context, id string, userID int) (bool, error)
}

type Repository struct {
	Users    Users
	Sessions Sessions
	Posts    Posts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(db),
		Sessions: NewSessionRepository(db),
		Posts:    NewPostRepository(db),
	}
}
