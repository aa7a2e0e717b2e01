package models

import "time"

// Post is one published entry: text plus an optional uploaded file.
type Post struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	FilePath  string    `json:"file_path,omitempty"` // relative to the uploads dir
	CreatedAt time.Time `json:"created_at"`
}
