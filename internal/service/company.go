package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobboard/internal/model"
	"jobboard/internal/repository"
)

// CompanyService manages employers.
type CompanyService interface {
	Resource[model.Company]
}

type companyService struct {
	companies repository.Repository[model.Company]
	jobs      repository.Repository[model.Job]
}

// NewCompanyService wires the company use cases. The jobs repository guards
// deletes of companies that still own postings.
func NewCompanyService(companies repository.Repository[model.Company], jobs repository.Repository[model.Job]) CompanyService {
	return &companyService{companies: companies, jobs: jobs}
}

func (s *companyService) List(ctx context.Context, q repository.Query) (*repository.PageResult[model.Company], error) {
	return s.companies.GetAll(ctx, q)
}

func (s *companyService) Get(ctx context.Context, id string) (*model.Company, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	c, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("company", err)
	}
	return c, nil
}

func (s *companyService) Create(ctx context.Context, in *model.Company) (*model.Company, error) {
	if in == nil {
		return nil, ErrEmptyPayload
	}
	c := *in
	c.Base = model.Base{}
	c.Jobs = nil
	c.Name = strings.TrimSpace(c.Name)

	if err := validateStruct(&c); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, c.Name); err != nil {
		return nil, err
	}
	return s.companies.Create(ctx, &c)
}

func (s *companyService) Update(ctx context.Context, id string, patch map[string]any) (*model.Company, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := readOnly(patch, "id", "created_at", "updated_at"); err != nil {
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
	if _, ok := typed["name"]; ok {
		merged.Name = strings.TrimSpace(merged.Name)
		typed["name"] = merged.Name
	}
	if err := validateStruct(merged); err != nil {
		return nil, err
	}
	if merged.Name != existing.Name {
		if err := s.ensureNameFree(ctx, merged.Name); err != nil {
			return nil, err
		}
	}
	return s.companies.Update(ctx, id, typed)
}

func (s *companyService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	n, err := s.jobs.Count(ctx, repository.Query{Filters: map[string]string{"company_id": id}})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: company still has %d job(s)", ErrConflict, n)
	}
	if _, err := s.companies.Delete(ctx, id); err != nil {
		return wrapLookup("company", err)
	}
	return nil
}

func (s *companyService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.companies.GetByField(ctx, "name", name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: company %q already exists", ErrConflict, name)
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}
