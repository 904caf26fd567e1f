package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobboard/internal/model"
	"jobboard/internal/repository"
	repoMocks "jobboard/internal/repository/mocks"
)

func TestListOptions_Query(t *testing.T) {
	q := listOptions{search: "go", status: "open", company: "c-1", sort: "-salary_max", page: 2, limit: 20}.query()

	assert.Equal(t, repository.Query{
		Page:    2,
		Limit:   20,
		Search:  "go",
		Filters: map[string]string{"status": "open", "company_id": "c-1"},
		Sort:    []repository.SortField{{Field: "salary_max", Desc: true}},
	}, q)

	assert.Nil(t, listOptions{page: 1}.query().Filters)
}

func TestListJobs(t *testing.T) {
	ctx := context.Background()
	repo := new(repoMocks.MockRepository[model.Job])
	page := repository.NewPageResult([]model.Job{{Title: "Go Engineer", Status: "open"}}, 1, repository.Query{Page: 1, Limit: 10})
	repo.On("GetAll", ctx, mock.Anything).Return(page, nil).Once()

	var buf bytes.Buffer
	require.NoError(t, listJobs(ctx, repo, listOptions{page: 1}, &buf))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(1), out["total"])
	assert.Len(t, out["data"], 1)

	repo.On("GetAll", ctx, mock.Anything).Return(nil, repository.ErrInvalidField).Once()
	assert.ErrorIs(t, listJobs(ctx, repo, listOptions{}, &buf), repository.ErrInvalidField)
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["jobs"])

	list, _, err := root.Find([]string{"jobs", "list"})
	require.NoError(t, err)
	for _, flag := range []string{"search", "status", "company", "sort", "page", "limit"} {
		assert.NotNil(t, list.Flags().Lookup(flag), flag)
	}
}

func TestRootCmd_MigrateNeedsDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"migrate"})

	err := root.Execute()

	assert.ErrorContains(t, err, "invalid database config")
}
