package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"tumblelog/internal/models"
	"tumblelog/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
	maxTitleLen      = 200
)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// NewPost is the input for creating a post.
type NewPost struct {
	UserID   int
	Title    string
	Body     string
	FilePath string // already-stored upload, relative to the uploads dir
}

// FeedFilter narrows the public feed by time range and size.
type FeedFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Limit int       // 0 means default
}

// PostService implements the content use-cases around the post repository.
type PostService struct {
	posts repository.Posts
}

func NewPostService(posts repository.Posts) *PostService {
	return &PostService{posts: posts}
}

// Create validates and persists a new post, returning it with id and
// timestamp filled.
func (s *PostService) Create(ctx context.Context, np NewPost) (*models.Post, error) {
	title := strings.TrimSpace(np.Title)
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "is required"
	} else if len(title) > maxTitleLen {
		fields["title"] = "is too long"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	p := models.Post{
		ID:        uuid.NewString(),
		UserID:    np.UserID,
		Title:     title,
		Body:      strings.TrimSpace(np.Body),
		FilePath:  np.FilePath,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Feed returns recent posts, newest first.
func (s *PostService) Feed(ctx context.Context, f FeedFilter) ([]models.Post, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	} else if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	return s.posts.List(ctx, from, to, limit)
}

// ListByUser returns every post by one author, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID int) ([]models.Post, error) {
	return s.posts.ListByUser(ctx, userID)
}

// Delete removes a post if it belongs to userID, ErrPostNotFound otherwise.
func (s *PostService) Delete(ctx context.Context, id string, userID int) error {
	ok, err := s.posts.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
