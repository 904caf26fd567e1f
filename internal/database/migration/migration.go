package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelRelation is created by the final step, so its presence means
// every step has run. Steps are idempotent; a partial run is simply
// repeated on the next start.
const sentinelRelation = "public.uq_applications_job_candidate_email"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_companies",
		SQL: `CREATE TABLE IF NOT EXISTS companies (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        TEXT        NOT NULL UNIQUE,
  website     TEXT        NOT NULL DEFAULT '',
  location    TEXT        NOT NULL DEFAULT '',
  description TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS jobs (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  company_id      UUID        NOT NULL REFERENCES companies (id) ON DELETE RESTRICT,
  title           TEXT        NOT NULL,
  description     TEXT        NOT NULL DEFAULT '',
  location        TEXT        NOT NULL DEFAULT '',
  employment_type TEXT        NOT NULL DEFAULT 'full_time',
  remote          BOOLEAN     NOT NULL DEFAULT false,
  salary_min      BIGINT      NOT NULL DEFAULT 0 CHECK (salary_min >= 0),
  salary_max      BIGINT      NOT NULL DEFAULT 0 CHECK (salary_max >= 0),
  currency        TEXT        NOT NULL DEFAULT '',
  status          TEXT        NOT NULL DEFAULT 'draft',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  job_id          UUID        NOT NULL REFERENCES jobs (id) ON DELETE RESTRICT,
  candidate_name  TEXT        NOT NULL,
  candidate_email TEXT        NOT NULL,
  cover_letter    TEXT        NOT NULL DEFAULT '',
  resume_path     TEXT        NOT NULL DEFAULT '',
  status          TEXT        NOT NULL DEFAULT 'submitted',
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_jobs_company_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_company_id ON jobs (company_id);`,
	},
	{
		Name: "create_index_jobs_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);`,
	},
	{
		Name: "create_index_jobs_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs (created_at);`,
	},
	{
		Name: "create_index_applications_job_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications (job_id);`,
	},
	{
		Name: "create_index_applications_candidate_email",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_applications_candidate_email ON applications (candidate_email);`,
	},
	{
		Name: "create_unique_index_applications_job_candidate_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_applications_job_candidate_email ON applications (job_id, candidate_email);`,
	},
}

// EnsureMigrated checks if the sentinel relation exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelRelation).Scan(&exists)
	if err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
