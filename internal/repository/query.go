package repository

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SortField orders results by one column.
type SortField struct {
	Field string
	Desc  bool
}

// Query describes a list request: pagination, a free-text search term,
// equality filters and sort order.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
	Sort    []SortField
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items      []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult fills in page bookkeeping for items out of total rows.
func NewPageResult[T any](items []T, total int, q Query) *PageResult[T] {
	if items == nil {
		items = make([]T, 0)
	}
	pages := 0
	if q.Limit > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}
	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: pages,
	}
}

// ColumnType says how a filter value is checked and bound. Values of typed
// columns are parsed before they reach SQL so a malformed value is a client
// error rather than a database error.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnUUID
	ColumnBool
)

// Options configures what a resource exposes to queries. Every column named
// by a query or patch must appear in the matching allowlist.
type Options struct {
	// Resource names the resource in logs and metrics (e.g. "jobs").
	Resource string
	// Searchable text columns matched case-insensitively by Query.Search.
	Searchable []string
	// Filterable columns usable in Query.Filters and GetByField.
	Filterable []string
	// FilterTypes lists filterable columns that are not text. The primary
	// key is always ColumnUUID.
	FilterTypes map[string]ColumnType
	// Sortable columns usable in Query.Sort.
	Sortable []string
	// Updatable columns accepted in an Update patch.
	Updatable []string
	// Preload lists relations loaded with every read.
	Preload []string
	// DefaultSort applies when a query has no sort fields.
	DefaultSort []SortField

	DefaultLimit int
	MaxLimit     int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps pagination: page defaults to 1, limit to the resource
// default, and limit never exceeds the resource maximum.
func (o Options) Normalize(q Query) Query {
	def, ceiling := o.DefaultLimit, o.MaxLimit
	if def <= 0 {
		def = defaultLimit
	}
	if ceiling <= 0 {
		ceiling = maxLimit
	}
	if def > ceiling {
		def = ceiling
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = def
	}
	if q.Limit > ceiling {
		q.Limit = ceiling
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Validate checks every filter and sort column against the allowlists,
// every filter value against its column type, and that the page offset
// fits in an int.
func (o Options) Validate(q Query) error {
	for field, value := range q.Filters {
		if !o.CanFilter(field) {
			return fmt.Errorf("%w: cannot filter by %q", ErrInvalidField, field)
		}
		if _, err := o.FilterValue(field, value); err != nil {
			return err
		}
	}
	for _, s := range q.Sort {
		if !slices.Contains(o.Sortable, s.Field) {
			return fmt.Errorf("%w: cannot sort by %q", ErrInvalidField, s.Field)
		}
	}
	if q.Limit > 0 && q.Page > 1 && q.Page-1 > math.MaxInt/q.Limit {
		return fmt.Errorf("%w: page %d is out of range", ErrInvalidQuery, q.Page)
	}
	return nil
}

// FilterValue parses value according to the type of field and returns what
// should be bound in SQL.
func (o Options) FilterValue(field, value string) (any, error) {
	typ := o.FilterTypes[field]
	if field == "id" {
		typ = ColumnUUID
	}
	switch typ {
	case ColumnUUID:
		// Only the canonical 36 character form; uuid.Validate also takes urn and braced forms.
		if len(value) != 36 || uuid.Validate(value) != nil {
			return nil, fmt.Errorf("%w: %s must be a UUID", ErrInvalidField, field)
		}
		return value, nil
	case ColumnBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidField, field)
		}
		return b, nil
	default:
		return value, nil
	}
}

// CanFilter reports whether field may be used for equality lookups.
// The primary key is always allowed.
func (o Options) CanFilter(field string) bool {
	return field == "id" || slices.Contains(o.Filterable, field)
}

// ValidatePatch rejects empty patches and columns outside Updatable.
func (o Options) ValidatePatch(patch map[string]any) error {
	if len(patch) == 0 {
		return ErrEmptyPayload
	}
	for field := range patch {
		if !slices.Contains(o.Updatable, field) {
			return fmt.Errorf("%w: cannot update %q", ErrInvalidField, field)
		}
	}
	return nil
}

// Offset returns the row offset for the query's page. A page whose offset
// would overflow yields math.MaxInt; Options.Validate rejects such pages.
func (q Query) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// ParseSort parses a comma separated sort expression. A leading "-" sorts
// descending, a leading "+" or nothing ascending: "-created_at,title".
func ParseSort(expr string) []SortField {
	var out []SortField
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sf := SortField{Field: part}
		switch part[0] {
		case '-':
			sf.Field, sf.Desc = part[1:], true
		case '+':
			sf.Field = part[1:]
		}
		if sf.Field != "" {
			out = append(out, sf)
		}
	}
	return out
}
