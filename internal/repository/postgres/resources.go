package postgres

import (
	"log/slog"

	"gorm.io/gorm"

	"jobboard/internal/config"
	"jobboard/internal/model"
	"jobboard/internal/repository"
)

var newestFirst = []repository.SortField{{Field: "created_at", Desc: true}}

// CompanyOptions describes what the companies resource exposes.
func CompanyOptions(p config.PaginationConfig) repository.Options {
	return repository.Options{
		Resource:     "companies",
		Searchable:   []string{"name", "location", "description"},
		Filterable:   []string{"name", "location"},
		Sortable:     []string{"name", "location", "created_at", "updated_at"},
		Updatable:    []string{"name", "website", "location", "description"},
		DefaultSort:  []repository.SortField{{Field: "name"}},
		DefaultLimit: p.DefaultLimit,
		MaxLimit:     p.MaxLimit,
	}
}

// JobOptions describes what the jobs resource exposes.
func JobOptions(p config.PaginationConfig) repository.Options {
	return repository.Options{
		Resource:   "jobs",
		Searchable: []string{"title", "description", "location"},
		Sortable:   []string{"title", "created_at", "updated_at", "salary_min", "salary_max", "status"},
		Filterable: []string{"company_id", "status", "employment_type", "remote", "location", "currency"},
		FilterTypes: map[string]repository.ColumnType{
			"company_id": repository.ColumnUUID,
			"remote":     repository.ColumnBool,
		},
		Updatable: []string{
			"title", "description", "location", "employment_type",
			"remote", "salary_min", "salary_max", "currency", "status",
		},
		Preload:      []string{"Company"},
		DefaultSort:  newestFirst,
		DefaultLimit: p.DefaultLimit,
		MaxLimit:     p.MaxLimit,
	}
}

// ApplicationOptions describes what the applications resource exposes.
func ApplicationOptions(p config.PaginationConfig) repository.Options {
	return repository.Options{
		Resource:     "applications",
		Searchable:   []string{"candidate_name", "candidate_email", "cover_letter"},
		Filterable:   []string{"job_id", "status", "candidate_email"},
		FilterTypes:  map[string]repository.ColumnType{"job_id": repository.ColumnUUID},
		Sortable:     []string{"candidate_name", "created_at", "updated_at", "status"},
		Updatable:    []string{"candidate_name", "candidate_email", "cover_letter", "resume_path", "status"},
		Preload:      []string{"Job"},
		DefaultSort:  newestFirst,
		DefaultLimit: p.DefaultLimit,
		MaxLimit:     p.MaxLimit,
	}
}

// NewCompanies returns the companies repository.
func NewCompanies(db *gorm.DB, log *slog.Logger, p config.PaginationConfig) *CRUD[model.Company] {
	return NewCRUD[model.Company](db, log, CompanyOptions(p))
}

// NewJobs returns the jobs repository; reads preload the owning company.
func NewJobs(db *gorm.DB, log *slog.Logger, p config.PaginationConfig) *CRUD[model.Job] {
	return NewCRUD[model.Job](db, log, JobOptions(p))
}

// NewApplications returns the applications repository; reads preload the job.
func NewApplications(db *gorm.DB, log *slog.Logger, p config.PaginationConfig) *CRUD[model.Application] {
	return NewCRUD[model.Application](db, log, ApplicationOptions(p))
}
