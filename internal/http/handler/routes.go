package handler

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"objgate/internal/service"
)

// DefaultMaxFiles caps a multiple-file upload when Options.MaxFiles is unset.
const DefaultMaxFiles = 10

// Options tunes the storage routes.
type Options struct {
	MaxFiles int
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type viewURLResponse struct {
	URL string `json:"url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// RegisterRoutes attaches the storage routes to router.
// Fixed paths are registered before /storage/:key so they are not captured as keys.
func RegisterRoutes(router fiber.Router, svc service.StorageService, opts Options) {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}

	st := router.Group("/storage")
	st.Get("/", ListFiles(svc))
	st.Get("/list", ListFiles(svc))
	st.Get("/file", ViewFileByName(svc))
	st.Get("/upload-url", GetUploadURL(svc))
	st.Get("/upload/presigned", GetUploadURL(svc))
	st.Get("/download/:name", DownloadFile(svc))
	st.Post("/upload", UploadFile(svc))
	st.Post("/upload/single", UploadFile(svc))
	st.Post("/upload/multiple", UploadMultipleFiles(svc, opts.MaxFiles))
	st.Get("/:key", ViewFile(svc))
	st.Delete("/:key", DeleteFile(svc))
}

// RegisterHealth attaches readiness and liveness probes.
func RegisterHealth(router fiber.Router, p Pinger) {
	router.Get("/health", HealthCheck(p))
	router.Get("/healthz", LivenessProbe())
}

// HealthCheck godoc
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	healthResponse
//	@Failure	503	{object}	errorPayload
//	@Router		/health [get]
func HealthCheck(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(healthResponse{Status: "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListFiles godoc
//
//	@Summary	List all files in storage
//	@Tags		storage
//	@Produce	json
//	@Success	200	{array}		storage.ObjectInfo
//	@Failure	502	{object}	errorPayload
//	@Router		/storage [get]
func ListFiles(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListFiles(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(items)
	}
}

// ViewFile godoc
//
//	@Summary	Get a pre-signed URL to view a file
//	@Tags		storage
//	@Produce	json
//	@Param		key	path		string	true	"Object key"
//	@Success	200	{object}	viewURLResponse
//	@Router		/storage/{key} [get]
func ViewFile(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return viewURL(c, svc, pathParam(c, "key"))
	}
}

// ViewFileByName godoc
//
//	@Summary	Get a pre-signed URL for a key that may contain slashes
//	@Tags		storage
//	@Produce	json
//	@Param		name	query		string	true	"Object key"
//	@Success	200		{object}	viewURLResponse
//	@Failure	400		{object}	errorPayload
//	@Router		/storage/file [get]
func ViewFileByName(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return viewURL(c, svc, c.Query("name"))
	}
}

func viewURL(c *fiber.Ctx, svc service.StorageService, key string) error {
	u, err := svc.GetViewURL(c.UserContext(), key)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(viewURLResponse{URL: u})
}

// UploadFile godoc
//
//	@Summary	Upload a single file directly
//	@Tags		storage
//	@Accept		mpfd
//	@Produce	json
//	@Param		file	formData	file	true	"File to upload"
//	@Success	201		{object}	service.UploadResult
//	@Failure	400		{object}	errorPayload
//	@Failure	502		{object}	errorPayload
//	@Router		/storage/upload/single [post]
func UploadFile(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := readFormFiles(c, "file", 1)
		if err != nil {
			return writeServiceError(c, err)
		}

		res, err := svc.UploadFile(c.UserContext(), files[0])
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// UploadMultipleFiles godoc
//
//	@Summary		Upload multiple files directly
//	@Description	Files are uploaded concurrently; results follow input order. Without mode the first failure fails the request and already stored files stay. mode=best-effort reports every file and answers 207 when any failed.
//	@Tags			storage
//	@Accept			mpfd
//	@Produce		json
//	@Param			files	formData	file	true	"Files to upload"
//	@Param			mode	query		string	false	"best-effort"
//	@Success		201		{array}		service.UploadResult
//	@Success		207		{array}		service.UploadOutcome
//	@Failure		400		{object}	errorPayload
//	@Failure		502		{object}	errorPayload
//	@Router			/storage/upload/multiple [post]
func UploadMultipleFiles(svc service.StorageService, maxFiles int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := readFormFiles(c, "files", maxFiles)
		if err != nil {
			return writeServiceError(c, err)
		}

		if c.Query("mode") == "best-effort" {
			outcomes, err := svc.UploadMultipleFilesBestEffort(c.UserContext(), files)
			if err != nil {
				return writeServiceError(c, err)
			}
			status := fiber.StatusCreated
			for _, o := range outcomes {
				if o.Err != nil {
					status = fiber.StatusMultiStatus
					break
				}
			}
			return c.Status(status).JSON(outcomes)
		}

		results, err := svc.UploadMultipleFiles(c.UserContext(), files)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(results)
	}
}

// GetUploadURL godoc
//
//	@Summary	Get a pre-signed URL for file upload
//	@Tags		storage
//	@Produce	json
//	@Param		extension	query		string	true	"File extension, e.g. .pdf"
//	@Success	200			{object}	service.UploadURL
//	@Failure	400			{object}	errorPayload
//	@Router		/storage/upload/presigned [get]
func GetUploadURL(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.GetUploadURL(c.UserContext(), c.Query("extension"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteFile godoc
//
//	@Summary	Delete a file from storage
//	@Tags		storage
//	@Produce	json
//	@Param		key	path		string	true	"Object key"
//	@Success	200	{object}	messageResponse
//	@Failure	502	{object}	errorPayload
//	@Router		/storage/{key} [delete]
func DeleteFile(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteFile(c.UserContext(), pathParam(c, "key")); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(messageResponse{Message: "File deleted successfully"})
	}
}

// DownloadFile godoc
//
//	@Summary	Download a file
//	@Tags		storage
//	@Produce	octet-stream
//	@Param		name	path	string	true	"Object key"
//	@Success	200
//	@Failure	404	{object}	errorPayload
//	@Router		/storage/download/{name} [get]
func DownloadFile(svc service.StorageService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := pathParam(c, "name")
		ctx := c.UserContext()

		contentType, err := svc.GetFileContentType(ctx, name)
		if err != nil {
			return writeServiceError(c, err)
		}
		rc, err := svc.GetFile(ctx, name)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(name)
		c.Set(fiber.HeaderContentType, contentType)
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc)
	}
}

func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
