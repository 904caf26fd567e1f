package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/database/migration"
	"jobboard/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env carries what every subcommand needs; it is filled in PersistentPreRunE.
type env struct {
	cfg *config.AppConfig
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "jobboard-cli",
		Short:         "Operational commands for the job board database",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e.cfg = config.Load()
			// Logs go to stderr so command output on stdout stays machine readable.
			e.log = slog.New(logger.NewHandler(cmd.ErrOrStderr(), e.cfg.Location(), logger.ParseLevel(e.cfg.Log.Level)))
			return nil
		},
	}
	root.AddCommand(newMigrateCmd(e), newJobsCmd(e))
	return root
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the job board tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.NewPostgres(e.cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if err := migration.EnsureMigrated(ctx, db, e.log, e.cfg.Database.Host); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		},
	}
}

// openGorm opens the pool and the GORM session on top of it.
func openGorm(e *env) (*sql.DB, *gorm.DB, error) {
	db, err := database.NewPostgres(e.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	gdb, err := database.NewGorm(db, e.log, time.Duration(e.cfg.Database.SlowQueryMs)*time.Millisecond)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, gdb, nil
}
