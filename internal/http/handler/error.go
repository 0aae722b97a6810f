package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"objgate/internal/http/middleware"
	"objgate/internal/service"
)

var (
	errFileRequired  = errors.New("file is required")
	errMalformedForm = errors.New("malformed multipart form")
	errTooManyFiles  = errors.New("too many files")
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_EXTENSION", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service and request errors onto the error envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrObjectNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "object not found")
	case errors.Is(err, service.ErrInvalidExtension):
		return writeError(c, fiber.StatusBadRequest, "INVALID_EXTENSION", "invalid file extension")
	case errors.Is(err, service.ErrKeyRequired):
		return writeError(c, fiber.StatusBadRequest, "KEY_REQUIRED", "key is required")
	case errors.Is(err, service.ErrNoFiles), errors.Is(err, errFileRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, errMalformedForm):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "request body is not a valid multipart form")
	case errors.Is(err, errTooManyFiles):
		return writeError(c, fiber.StatusBadRequest, "TOO_MANY_FILES", err.Error())
	case errors.Is(err, service.ErrStoreWriteFailed),
		errors.Is(err, service.ErrStoreReadFailed),
		errors.Is(err, service.ErrStoreListFailed),
		errors.Is(err, service.ErrStoreDeleteFailed):
		return writeError(c, fiber.StatusBadGateway, "STORE_UNAVAILABLE", "object store request failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
