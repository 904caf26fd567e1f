package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/model"
	"jobboard/internal/repository"
)

// CRUD is a generic GORM implementation of repository.Repository.
// The Options allowlists decide which columns queries and patches may touch;
// every value reaches SQL as a bound parameter.
type CRUD[T repository.Entity] struct {
	db   *gorm.DB
	opts repository.Options
	log  *slog.Logger
	rec  repository.Recorder
}

// NewCRUD creates a generic repository for T.
func NewCRUD[T repository.Entity](db *gorm.DB, log *slog.Logger, opts repository.Options) *CRUD[T] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CRUD[T]{
		db:   db,
		opts: opts,
		log:  log.With("component", "repository", "resource", opts.Resource),
	}
}

// WithRecorder attaches an operation metrics recorder.
func (r *CRUD[T]) WithRecorder(rec repository.Recorder) *CRUD[T] {
	r.rec = rec
	return r
}

// Options returns the resource configuration.
func (r *CRUD[T]) Options() repository.Options {
	return r.opts
}

var (
	_ repository.Repository[model.Company]     = (*CRUD[model.Company])(nil)
	_ repository.Repository[model.Job]         = (*CRUD[model.Job])(nil)
	_ repository.Repository[model.Application] = (*CRUD[model.Application])(nil)
)

// GetAll returns one page of rows plus the total matching count.
func (r *CRUD[T]) GetAll(ctx context.Context, q repository.Query) (res *repository.PageResult[T], err error) {
	start := time.Now()
	q = r.opts.Normalize(q)
	defer func() {
		attrs := []any{"page", q.Page, "limit", q.Limit, "search", q.Search != ""}
		if res != nil {
			attrs = append(attrs, "count", len(res.Items), "total", res.Total)
		}
		r.finish(ctx, "get_all", start, err, attrs...)
	}()

	if err := r.opts.Validate(q); err != nil {
		return nil, err
	}

	var total int64
	if err := r.where(r.db.WithContext(ctx).Model(new(T)), q).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", r.opts.Resource, err)
	}

	items := make([]T, 0, q.Limit)
	if total > 0 {
		tx := r.where(r.preload(r.db.WithContext(ctx)), q)
		tx = r.order(tx, q.Sort)
		if err := tx.Limit(q.Limit).Offset(q.Offset()).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("list %s: %w", r.opts.Resource, err)
		}
	}

	return repository.NewPageResult(items, int(total), q), nil
}

// Count returns how many rows match the query's filters and search term.
func (r *CRUD[T]) Count(ctx context.Context, q repository.Query) (n int, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "count", start, err, "total", n) }()

	if err := r.opts.Validate(q); err != nil {
		return 0, err
	}
	var total int64
	if err := r.where(r.db.WithContext(ctx).Model(new(T)), q).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.opts.Resource, err)
	}
	return int(total), nil
}

// GetByField returns the first row whose field equals value.
func (r *CRUD[T]) GetByField(ctx context.Context, field string, value any) (out *T, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "get_by_field", start, err, "field", field) }()

	if !r.opts.CanFilter(field) {
		return nil, fmt.Errorf("%w: cannot look up by %q", repository.ErrInvalidField, field)
	}
	return r.first(r.db.WithContext(ctx), field, value)
}

// GetByID returns the row with the given primary key.
func (r *CRUD[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.GetByField(ctx, "id", id)
}

// Create inserts entity and re-reads it in the same transaction so the
// result carries database defaults and preloaded relations.
func (r *CRUD[T]) Create(ctx context.Context, entity *T) (out *T, err error) {
	start := time.Now()
	defer func() {
		var attrs []any
		if out != nil {
			attrs = append(attrs, "id", (*out).GetID())
		}
		r.finish(ctx, "create", start, err, attrs...)
	}()

	if entity == nil {
		return nil, repository.ErrEmptyPayload
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entity).Error; err != nil {
			return fmt.Errorf("create %s: %w", r.opts.Resource, translate(err))
		}
		stored, err := r.first(tx, "id", (*entity).GetID())
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies patch (column name to value) to the row identified by id.
// Only columns listed in Options.Updatable are accepted.
func (r *CRUD[T]) Update(ctx context.Context, id string, patch map[string]any) (out *T, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "update", start, err, "id", id, "fields", patchKeys(patch)) }()

	if err := r.opts.ValidatePatch(patch); err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.first(tx, "id", id)
		if err != nil {
			return err
		}
		if err := tx.Model(existing).Omit(clause.Associations).Updates(patch).Error; err != nil {
			return fmt.Errorf("update %s: %w", r.opts.Resource, translate(err))
		}
		stored, err := r.first(tx, "id", id)
		if err != nil {
			return err
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the row identified by id and returns it as it was.
func (r *CRUD[T]) Delete(ctx context.Context, id string) (out *T, err error) {
	start := time.Now()
	defer func() { r.finish(ctx, "delete", start, err, "id", id) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.first(tx, "id", id)
		if err != nil {
			return err
		}
		res := tx.Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Delete(new(T))
		if res.Error != nil {
			return fmt.Errorf("delete %s: %w", r.opts.Resource, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// first loads the row whose field equals value. A string value that cannot
// be stored in a typed column matches nothing, so it is reported as
// ErrNotFound without a query.
func (r *CRUD[T]) first(tx *gorm.DB, field string, value any) (*T, error) {
	if s, ok := value.(string); ok {
		v, err := r.opts.FilterValue(field, s)
		if err != nil {
			return nil, repository.ErrNotFound
		}
		value = v
	}
	var out T
	err := r.preload(tx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get %s by %s: %w", r.opts.Resource, field, err)
	}
	return &out, nil
}

func (r *CRUD[T]) preload(tx *gorm.DB) *gorm.DB {
	for _, rel := range r.opts.Preload {
		tx = tx.Preload(rel)
	}
	return tx
}

// where narrows tx to rows matching every filter and, when a search term is
// set, containing it in at least one searchable column.
func (r *CRUD[T]) where(tx *gorm.DB, q repository.Query) *gorm.DB {
	fields := make([]string, 0, len(q.Filters))
	for f := range q.Filters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		// Validate has already accepted every value.
		v, _ := r.opts.FilterValue(f, q.Filters[f])
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: f}, Value: v})
	}

	if q.Search != "" && len(r.opts.Searchable) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		conds := make([]string, len(r.opts.Searchable))
		args := make([]any, len(r.opts.Searchable))
		for i, col := range r.opts.Searchable {
			conds[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
			args[i] = pattern
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return tx
}

// order applies sort fields, falling back to the resource default, and
// always ends with the primary key so pages are stable.
func (r *CRUD[T]) order(tx *gorm.DB, fields []repository.SortField) *gorm.DB {
	if len(fields) == 0 {
		fields = r.opts.DefaultSort
	}
	hasID := false
	for _, f := range fields {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Field}, Desc: f.Desc})
		hasID = hasID || f.Field == "id"
	}
	if !hasID {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return tx
}

func (r *CRUD[T]) finish(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	elapsed := time.Since(start)
	outcome := repository.Outcome(err)
	if r.rec != nil {
		r.rec.ObserveOperation(r.opts.Resource, op, outcome, elapsed)
	}

	level := slog.LevelInfo
	switch outcome {
	case repository.OutcomeNotFound, repository.OutcomeInvalid:
		level = slog.LevelWarn
	case repository.OutcomeError:
		level = slog.LevelError
	}
	attrs = append(attrs, "outcome", outcome, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		attrs = append(attrs, "error_message", err.Error())
	}
	r.log.Log(ctx, level, "crud_"+op, attrs...)
}

// translate maps driver constraint errors onto repository.ErrConflict.
// It relies on gorm.Config.TranslateError being enabled.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func patchKeys(patch map[string]any) []string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
