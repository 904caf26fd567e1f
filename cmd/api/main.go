package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobboard/docs"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/database/migration"
	handlers "jobboard/internal/http/handler"
	"jobboard/internal/http/middleware"
	"jobboard/internal/logger"
	"jobboard/internal/metrics"
	tracing "jobboard/internal/otel"
	"jobboard/internal/repository/postgres"
	"jobboard/internal/service"
	"jobboard/internal/storage"
)

// @title Job Board API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Log, cfg.Location())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server_exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL pool (database/sql + otelsql), shared with GORM
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	gdb, err := database.NewGorm(db, log, time.Duration(cfg.Database.SlowQueryMs)*time.Millisecond)
	if err != nil {
		return err
	}

	// S3-compatible résumé store
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	crudMetrics, err := metrics.NewCRUDMetrics(reg)
	if err != nil {
		return err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	// Repositories and services
	companyRepo := postgres.NewCompanies(gdb, log, cfg.Pagination).WithRecorder(crudMetrics)
	jobRepo := postgres.NewJobs(gdb, log, cfg.Pagination).WithRecorder(crudMetrics)
	applicationRepo := postgres.NewApplications(gdb, log, cfg.Pagination).WithRecorder(crudMetrics)

	svcs := handlers.Services{
		Companies:    service.NewCompanyService(companyRepo, jobRepo),
		Jobs:         service.NewJobService(jobRepo, companyRepo, applicationRepo),
		Applications: service.NewApplicationService(applicationRepo, jobRepo, objStore, cfg.MinIO.PresignExpiry(), log),
	}

	app := fiber.New(fiber.Config{
		AppName:      "jobboard",
		ErrorHandler: handlers.ErrorHandler(),
		// Résumé uploads plus multipart overhead.
		BodyLimit: int(service.MaxResumeSize) + 1<<20,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svcs)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_start", slog.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("server_shutdown")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
