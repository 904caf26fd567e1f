package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrInvalidID  = errors.New("id must be a UUID")
	ErrReaderNil  = errors.New("reader is nil")
	ErrNoResume   = errors.New("application has no resume")

	// Re-exported so callers of this package need not import repository.
	ErrNotFound     = repository.ErrNotFound
	ErrConflict     = repository.ErrConflict
	ErrEmptyPayload = repository.ErrEmptyPayload
	ErrInvalidField = repository.ErrInvalidField
	ErrInvalidQuery = repository.ErrInvalidQuery
)

// ValidationError reports payload fields that break validation or domain
// rules, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Resource is the generic use-case contract every HTTP resource controller consumes.
type Resource[T any] interface {
	// List returns one page of records matching the query.
	List(ctx context.Context, q repository.Query) (*repository.PageResult[T], error)
	// Get returns a single record by ID.
	Get(ctx context.Context, id string) (*T, error)
	// Create validates and stores a new record.
	Create(ctx context.Context, in *T) (*T, error)
	// Update validates and applies a partial update keyed by JSON field name.
	Update(ctx context.Context, id string, patch map[string]any) (*T, error)
	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}

func checkID(id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// wrapLookup wraps a repository lookup error with the resource name,
// keeping ErrNotFound matchable.
func wrapLookup(resource string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %w", resource, repository.ErrNotFound)
	}
	return err
}
