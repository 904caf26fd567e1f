package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"jobboard/internal/model"
	"jobboard/internal/repository"
	"jobboard/internal/repository/postgres"
)

type listOptions struct {
	search  string
	status  string
	company string
	sort    string
	page    int
	limit   int
}

func (o listOptions) query() repository.Query {
	q := repository.Query{
		Page:   o.page,
		Limit:  o.limit,
		Search: o.search,
		Sort:   repository.ParseSort(o.sort),
	}
	if o.status != "" || o.company != "" {
		q.Filters = make(map[string]string, 2)
	}
	if o.status != "" {
		q.Filters["status"] = o.status
	}
	if o.company != "" {
		q.Filters["company_id"] = o.company
	}
	return q
}

func newJobsCmd(e *env) *cobra.Command {
	jobs := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect job postings",
	}

	var opts listOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "Print one page of job postings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, gdb, err := openGorm(e)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := postgres.NewJobs(gdb, e.log, e.cfg.Pagination)
			return listJobs(cmd.Context(), repo, opts, cmd.OutOrStdout())
		},
	}
	f := list.Flags()
	f.StringVar(&opts.search, "search", "", "case-insensitive text match on title, description and location")
	f.StringVar(&opts.status, "status", "", "filter by status (draft, open, closed)")
	f.StringVar(&opts.company, "company", "", "filter by company ID")
	f.StringVar(&opts.sort, "sort", "", "comma separated sort fields, prefix with - for descending")
	f.IntVar(&opts.page, "page", 1, "page number")
	f.IntVar(&opts.limit, "limit", 0, "page size (0 uses the configured default)")

	jobs.AddCommand(list)
	return jobs
}

func listJobs(ctx context.Context, repo repository.Repository[model.Job], opts listOptions, w io.Writer) error {
	res, err := repo.GetAll(ctx, opts.query())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
