package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard/internal/model"
	"jobboard/internal/repository"
)

// JobService manages job postings.
type JobService interface {
	Resource[model.Job]
	// ListByCompany lists the postings of one company.
	ListByCompany(ctx context.Context, companyID string, q repository.Query) (*repository.PageResult[model.Job], error)
}

type jobService struct {
	jobs         repository.Repository[model.Job]
	companies    repository.Repository[model.Company]
	applications repository.Repository[model.Application]
}

func NewJobService(
	jobs repository.Repository[model.Job],
	companies repository.Repository[model.Company],
	applications repository.Repository[model.Application],
) JobService {
	return &jobService{jobs: jobs, companies: companies, applications: applications}
}

func (s *jobService) List(ctx context.Context, q repository.Query) (*repository.PageResult[model.Job], error) {
	return s.jobs.GetAll(ctx, q)
}

func (s *jobService) ListByCompany(ctx context.Context, companyID string, q repository.Query) (*repository.PageResult[model.Job], error) {
	if err := checkID(companyID); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, wrapLookup("company", err)
	}
	q.Filters = withFilter(q.Filters, "company_id", companyID)
	return s.jobs.GetAll(ctx, q)
}

func (s *jobService) Get(ctx context.Context, id string) (*model.Job, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	j, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("job", err)
	}
	return j, nil
}

func (s *jobService) Create(ctx context.Context, in *model.Job) (*model.Job, error) {
	if in == nil {
		return nil, ErrEmptyPayload
	}
	j := *in
	j.Base = model.Base{}
	j.Company = nil
	j.Title = strings.TrimSpace(j.Title)
	j.Currency = strings.ToUpper(j.Currency)
	if j.Status == "" {
		j.Status = model.JobStatusDraft
	}
	if j.EmploymentType == "" {
		j.EmploymentType = model.EmploymentFullTime
	}

	if err := validateStruct(&j); err != nil {
		return nil, err
	}
	if err := checkSalary(&j); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, j.CompanyID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("company_id", "company does not exist")
		}
		return nil, err
	}
	return s.jobs.Create(ctx, &j)
}

func (s *jobService) Update(ctx context.Context, id string, patch map[string]any) (*model.Job, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := readOnly(patch, "id", "created_at", "updated_at", "company_id"); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	merged, typed, err := mergePatch(existing, patch)
	if err != nil {
		return nil, err
	}
	if _, ok := typed["title"]; ok {
		merged.Title = strings.TrimSpace(merged.Title)
		typed["title"] = merged.Title
	}
	if _, ok := typed["currency"]; ok {
		merged.Currency = strings.ToUpper(merged.Currency)
		typed["currency"] = merged.Currency
	}

	if err := validateStruct(merged); err != nil {
		return nil, err
	}
	if err := checkSalary(merged); err != nil {
		return nil, err
	}
	if merged.Status == model.JobStatusDraft && existing.Status != model.JobStatusDraft {
		return nil, newValidationError("status", "a published job cannot return to draft")
	}
	return s.jobs.Update(ctx, id, typed)
}

// Delete refuses to remove a job that has applications; close it instead.
func (s *jobService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	n, err := s.applications.Count(ctx, repository.Query{Filters: map[string]string{"job_id": id}})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: job has %d application(s)", ErrConflict, n)
	}
	if _, err := s.jobs.Delete(ctx, id); err != nil {
		return wrapLookup("job", err)
	}
	return nil
}

func checkSalary(j *model.Job) error {
	if j.SalaryMax > 0 && j.SalaryMin > j.SalaryMax {
		return newValidationError("salary_min", "must not exceed salary_max")
	}
	return nil
}

// withFilter returns a copy of filters with key set to value.
func withFilter(filters map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(filters)+1)
	for k, v := range filters {
		out[k] = v
	}
	out[key] = value
	return out
}
