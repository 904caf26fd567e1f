package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"jobboard/internal/model"
	"jobboard/internal/repository"
	"jobboard/internal/service"
)

type MockResource[T any] struct {
	mock.Mock
}

var (
	_ service.CompanyService     = (*MockResource[model.Company])(nil)
	_ service.JobService         = (*MockJobService)(nil)
	_ service.ApplicationService = (*MockApplicationService)(nil)
)

func (m *MockResource[T]) List(ctx context.Context, q repository.Query) (*repository.PageResult[T], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockResource[T]) Get(ctx context.Context, id string) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Create(ctx context.Context, in *T) (*T, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Update(ctx context.Context, id string, patch map[string]any) (*T, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockResource[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockJobService struct {
	MockResource[model.Job]
}

func (m *MockJobService) ListByCompany(ctx context.Context, companyID string, q repository.Query) (*repository.PageResult[model.Job], error) {
	args := m.Called(ctx, companyID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Job]), args.Error(1)
}

type MockApplicationService struct {
	MockResource[model.Application]
}

func (m *MockApplicationService) ListByJob(ctx context.Context, jobID string, q repository.Query) (*repository.PageResult[model.Application], error) {
	args := m.Called(ctx, jobID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Application]), args.Error(1)
}

func (m *MockApplicationService) UploadResume(ctx context.Context, id string, r io.Reader, in service.ResumeUpload) (*model.Application, error) {
	args := m.Called(ctx, id, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockApplicationService) ResumeURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockApplicationService) OpenResume(ctx context.Context, id string) (*service.ResumeFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResumeFile), args.Error(1)
}
