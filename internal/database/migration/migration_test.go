package migration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/logger"
)

const sentinelQuery = "SELECT to_regclass($1) IS NOT NULL"

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(logger.NewHandler(buf, time.UTC, slog.LevelDebug))
}

func TestEnsureMigrated_SkipsWhenSchemaExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, newTestLogger(&buf), "db.local")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "db_migration_skip")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, newTestLogger(&buf), "db.local")

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "db_migration_success")
	assert.Contains(t, buf.String(), `"migration_step":"create_table_jobs"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, newTestLogger(&buf), "db.local")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration step create_table_companies failed")
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnError(errors.New("connection reset"))

	err = EnsureMigrated(context.Background(), db, logger.Discard(), "db.local")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check sentinel table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSteps_SentinelIsCreatedLast(t *testing.T) {
	name := strings.TrimPrefix(sentinelRelation, "public.")

	last := steps[len(steps)-1]
	assert.Contains(t, last.SQL, name)
	for _, step := range steps[:len(steps)-1] {
		assert.NotContains(t, step.SQL, name, step.Name)
	}
}

func TestSteps_ReferencesRestrictDeletes(t *testing.T) {
	for _, step := range steps {
		assert.NotContains(t, step.SQL, "CASCADE", step.Name)
		if strings.Contains(step.SQL, "REFERENCES") {
			assert.Contains(t, step.SQL, "ON DELETE RESTRICT", step.Name)
		}
	}
}

func TestEnsureMigrated_RerunsAfterPartialFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	failAt := len(steps) - 1
	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps[:failAt] {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec(regexp.QuoteMeta(steps[failAt].SQL)).WillReturnError(errors.New("could not create unique index"))

	err = EnsureMigrated(context.Background(), db, logger.Discard(), "db.local")
	require.Error(t, err)

	// Everything but the final step exists now, yet the sentinel does not,
	// so the next start runs the whole list again.
	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelRelation).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	assert.NoError(t, EnsureMigrated(context.Background(), db, logger.Discard(), "db.local"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
