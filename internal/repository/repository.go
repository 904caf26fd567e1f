package repository

import (
	"context"
	"errors"
	"time"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrEmptyPayload is returned when create/update receives nothing to write.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrInvalidField is returned when a query or patch names a column outside the resource allowlists.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidQuery is returned when pagination values cannot be served.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrConflict is returned when a write violates a uniqueness or reference constraint.
	ErrConflict = errors.New("conflicting record")
)

// Repository is the generic CRUD contract consumed by services.
// Every operation is a single request/response against the store; writes
// run inside a transaction that commits fully or not at all.
type Repository[T any] interface {
	// GetAll returns one page of rows matching the query's filters and search term.
	GetAll(ctx context.Context, q Query) (*PageResult[T], error)

	// Count returns the number of rows matching the query's filters and search term.
	Count(ctx context.Context, q Query) (int, error)

	// GetByField returns the first row whose field equals value.
	GetByField(ctx context.Context, field string, value any) (*T, error)

	// GetByID is GetByField on the primary key.
	GetByID(ctx context.Context, id string) (*T, error)

	// Create inserts entity and returns the stored row (with database defaults and relations).
	Create(ctx context.Context, entity *T) (*T, error)

	// Update applies a column patch to the row identified by id and returns the updated row.
	Update(ctx context.Context, id string, patch map[string]any) (*T, error)

	// Delete removes the row identified by id and returns what was deleted.
	Delete(ctx context.Context, id string) (*T, error)
}

// Recorder observes the outcome and latency of repository operations.
type Recorder interface {
	ObserveOperation(resource, operation, outcome string, elapsed time.Duration)
}

// Operation outcomes reported to a Recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Outcome classifies err for metrics and log levels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrEmptyPayload), errors.Is(err, ErrInvalidField),
		errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrConflict):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Entity is implemented by every model the generic repository manages.
type Entity interface {
	GetID() string
}
