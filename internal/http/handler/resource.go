package handler

import (
	"github.com/gofiber/fiber/v2"

	"jobboard/internal/service"
)

// ListResource lists one page of any resource.
// GET /<resource>?page=&limit=&search=&sort=&<field>=<value>
func ListResource[T any](svc service.Resource[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseListQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", err.Error())
		}
		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetResource returns one record by ID.
func GetResource[T any](svc service.Resource[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		v, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	}
}

// CreateResource decodes a JSON body into T and creates it.
func CreateResource[T any](svc service.Resource[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_PAYLOAD", "request body is empty")
		}
		var in T
		if err := decodeStrict(c.Body(), &in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		}
		v, err := svc.Create(c.UserContext(), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// UpdateResource applies a partial JSON update. PUT and PATCH share it.
func UpdateResource[T any](svc service.Resource[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if len(c.Body()) == 0 {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_PAYLOAD", "request body is empty")
		}
		patch, err := decodePatch(c.Body())
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		}
		v, err := svc.Update(c.UserContext(), id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(v)
	}
}

// DeleteResource removes one record by ID.
func DeleteResource[T any](svc service.Resource[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListCompanyJobs lists the postings of the company in the path.
func ListCompanyJobs(svc service.JobService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		q, err := parseListQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", err.Error())
		}
		res, err := svc.ListByCompany(c.UserContext(), id, q)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// ListJobApplications lists the applications to the job in the path.
func ListJobApplications(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		q, err := parseListQuery(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_QUERY", err.Error())
		}
		res, err := svc.ListByJob(c.UserContext(), id, q)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadResume attaches a résumé (multipart/form-data, field name: file) to an application.
func UploadResume(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		app, err := svc.UploadResume(c.UserContext(), id, f, service.ResumeUpload{
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(app)
	}
}

// GetResume returns a presigned download link for an application's résumé,
// or with ?download=1 streams the file itself as an attachment.
func GetResume(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if c.QueryBool("download") {
			f, err := svc.OpenResume(c.UserContext(), id)
			if err != nil {
				return respondError(c, err)
			}
			c.Attachment(f.Filename)
			c.Set(fiber.HeaderContentType, f.ContentType)
			// fasthttp closes the stream once the body is written.
			return c.SendStream(f.Body, int(f.Size))
		}
		u, err := svc.ResumeURL(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": u})
	}
}
