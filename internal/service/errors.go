package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors for auth and content flows.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password.
	// Callers must not be able to tell the two apart from the result.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUsername  = errors.New("username already taken")
	// ErrCorruptCredential means a stored digest is not parseable bcrypt
	// output, i.e. the credential store is corrupted.
	ErrCorruptCredential = errors.New("corrupt credential digest")
	ErrInvalidToken      = errors.New("invalid token")
	ErrPostNotFound      = errors.New("post not found")
)

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
