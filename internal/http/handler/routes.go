package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"libapi/internal/model"
	"libapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, libSvc service.LibraryService) {
	app.Get("/", Dashboard(libSvc))

	app.Get("/books/:level/:subject", ListBooks(libSvc))
	app.Get("/papers/:level/:subject", ListPapers(libSvc))

	app.Post("/upload", UploadDocument(libSvc))

	app.Get("/view/:id", ViewDocument(libSvc))
	app.Get("/download/:id", DownloadDocument(libSvc))

	app.Delete("/documents/:id", DeleteDocument(libSvc))
	// Form clients cannot issue DELETE.
	app.Post("/documents/:id/delete", DeleteDocument(libSvc))

	app.Get("/share/:level/:subject", ShareDocument(libSvc))

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
}

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain 200 for orchestrator liveness checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Dashboard returns aggregate statistics plus per-level/subject counts.
func Dashboard(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := svc.Dashboard(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(data)
	}
}

// ListBooks returns the book listing for a level and subject.
func ListBooks(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListBooks(c.UserContext(), c.Params("level"), c.Params("subject"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": docs, "total": len(docs)})
	}
}

// ListPapers returns the exam paper listing for a level and subject.
func ListPapers(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.ListPapers(c.UserContext(), c.Params("level"), c.Params("subject"))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"items": docs, "total": len(docs)})
	}
}

// UploadDocument accepts a multipart form (file field: Upload) plus the
// document fields and stores the asset and its metadata.
func UploadDocument(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("Upload")
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

		in := &model.UploadInput{
			Subject:     c.FormValue("subject"),
			Level:       c.FormValue("level"),
			Language:    c.FormValue("language"),
			Category:    c.FormValue("category"),
			Kind:        c.FormValue("uploadType", model.KindBook),
			Author:      c.FormValue("author"),
			Year:        c.FormValue("year"),
			ExamSeason:  c.FormValue("examseason"),
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Reader:      f,
		}
		// Papers carry the examining body in place of an author.
		if in.Kind == model.KindPaper {
			if body := c.FormValue("exambody"); body != "" {
				in.Author = body
			}
		}

		doc, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrReaderNil), errors.Is(err, service.ErrMissingField):
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
			case errors.Is(err, service.ErrStorage):
				return writeError(c, fiber.StatusBadGateway, "STORAGE_ERROR", "failed to store file")
			case errors.Is(err, service.ErrStore):
				return writeError(c, fiber.StatusInternalServerError, "STORE_ERROR", "failed to save document metadata")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ViewDocument bumps the view counter and redirects to the stored asset URL.
func ViewDocument(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		doc, err := svc.View(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrNoFilePath) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Redirect(doc.FilePath, fiber.StatusFound)
	}
}

// DownloadDocument streams the asset bytes back as an attachment.
func DownloadDocument(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.Download(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoFilePath):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			case errors.Is(err, service.ErrStorage):
				return writeError(c, fiber.StatusBadGateway, "STORAGE_ERROR", "failed to fetch file")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.Filename))
		c.Set(fiber.HeaderContentType, "application/octet-stream")
		return c.Send(res.Data)
	}
}

// DeleteDocument removes the stored asset (best effort) and the metadata record.
func DeleteDocument(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		res, err := svc.Delete(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			case errors.Is(err, service.ErrStore):
				return writeError(c, fiber.StatusInternalServerError, "STORE_ERROR", "failed to delete document metadata")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// ShareDocument redirects to a WhatsApp share link for a level/subject
// listing. An optional phone query parameter addresses the recipient.
func ShareDocument(svc service.LibraryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		link := svc.ShareLink(c.Params("level"), c.Params("subject"), c.BaseURL(), c.Query("phone"))
		return c.Redirect(link, fiber.StatusFound)
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Params("id"))
	}
	return id, nil
}
