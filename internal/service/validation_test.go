package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/model"
	"jobboard/internal/repository"
)

func TestValidateStruct(t *testing.T) {
	err := validateStruct(&model.Job{Title: "x", Status: "archived", Currency: "EURO"})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["company_id"])
	assert.Equal(t, "must be at least 2 characters", verr.Fields["title"])
	assert.Equal(t, "must be one of: draft open closed", verr.Fields["status"])
	assert.Equal(t, "must be exactly 3 characters", verr.Fields["currency"])
	assert.Contains(t, verr.Error(), "validation failed: company_id: is required")

	ok := &model.Company{Name: "Acme", Website: "https://acme.test"}
	assert.NoError(t, validateStruct(ok))
}

func TestMergePatch(t *testing.T) {
	existing := &model.Job{
		Base:      model.Base{ID: "job-1"},
		CompanyID: "company-1",
		Title:     "Go Engineer",
		SalaryMin: 100,
		SalaryMax: 200,
		Status:    model.JobStatusDraft,
	}

	t.Run("typed values", func(t *testing.T) {
		merged, typed, err := mergePatch(existing, map[string]any{
			"salary_max": float64(300),
			"remote":     true,
			"status":     "open",
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"salary_max": int64(300),
			"remote":     true,
			"status":     "open",
		}, typed)
		assert.Equal(t, int64(300), merged.SalaryMax)
		assert.Equal(t, "Go Engineer", merged.Title)
		// The original is untouched.
		assert.Equal(t, int64(200), existing.SalaryMax)
		assert.Equal(t, model.JobStatusDraft, existing.Status)
	})

	t.Run("embedded base fields are addressable", func(t *testing.T) {
		_, typed, err := mergePatch(existing, map[string]any{"id": "other"})
		require.NoError(t, err)
		assert.Equal(t, "other", typed["id"])
	})

	t.Run("empty patch", func(t *testing.T) {
		_, _, err := mergePatch(existing, map[string]any{})
		assert.ErrorIs(t, err, repository.ErrEmptyPayload)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, _, err := mergePatch(existing, map[string]any{"salary": 1})
		assert.ErrorIs(t, err, repository.ErrInvalidField)
	})

	t.Run("relation field", func(t *testing.T) {
		_, _, err := mergePatch(existing, map[string]any{"company": map[string]any{"name": "x"}})
		assert.ErrorIs(t, err, repository.ErrInvalidField)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, _, err := mergePatch(existing, map[string]any{"salary_min": "lots"})

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "must be of type int64", verr.Fields["salary_min"])
	})
}

func TestReadOnly(t *testing.T) {
	assert.NoError(t, readOnly(map[string]any{"title": "x"}, "id"))
	assert.ErrorIs(t, readOnly(map[string]any{"id": "x"}, "id"), repository.ErrInvalidField)
}
