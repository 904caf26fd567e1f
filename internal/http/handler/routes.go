package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"jobboard/internal/model"
	"jobboard/internal/service"
)

// APIPrefix is the path prefix of every resource route.
const APIPrefix = "/api/v1"

// Services bundles the use cases the routes dispatch to.
type Services struct {
	Companies    service.CompanyService
	Jobs         service.JobService
	Applications service.ApplicationService
}

// RegisterRoutes attaches the probes and the resource routes to the Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group(APIPrefix)

	companies := mountResource[model.Company](api, "/companies", svcs.Companies)
	companies.Get("/:id/jobs", ListCompanyJobs(svcs.Jobs))

	jobs := mountResource[model.Job](api, "/jobs", svcs.Jobs)
	jobs.Get("/:id/applications", ListJobApplications(svcs.Applications))

	applications := mountResource[model.Application](api, "/applications", svcs.Applications)
	applications.Post("/:id/resume", UploadResume(svcs.Applications))
	applications.Get("/:id/resume", GetResume(svcs.Applications))
}

// mountResource registers the standard CRUD routes for one resource and
// returns its group for nested routes.
func mountResource[T any](r fiber.Router, path string, svc service.Resource[T]) fiber.Router {
	g := r.Group(path)
	g.Get("/", ListResource(svc))
	g.Post("/", CreateResource(svc))
	g.Get("/:id", GetResource(svc))
	g.Put("/:id", UpdateResource(svc))
	g.Patch("/:id", UpdateResource(svc))
	g.Delete("/:id", DeleteResource(svc))
	return g
}

// HealthCheck reports healthy only when the database answers a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
