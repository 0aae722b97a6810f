package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"objgate/internal/http/middleware"
	"objgate/internal/service"
	serviceMocks "objgate/internal/service/mocks"
	"objgate/internal/storage"
	"objgate/internal/storage/storagetest"
)

type pingFunc func() error

func (f pingFunc) Ping(context.Context) error { return f() }

func multipartBody(t *testing.T, field string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, n := range names {
		part, err := writer.CreateFormFile(field, n)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + n))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	var pingErr error
	app := fiber.New()
	app.Get("/health", HealthCheck(pingFunc(func() error { return pingErr })))

	t.Run("healthy", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		pingErr = errors.New("bucket unreachable")
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Get("/storage", ListFiles(mockSvc))

	t.Run("success", func(t *testing.T) {
		items := []storage.ObjectInfo{{Key: "a.txt", Size: 3}, {Key: "b.txt", Size: 4}}
		mockSvc.On("ListFiles", mock.Anything).Return(items, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []storage.ObjectInfo
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 2)
		assert.Equal(t, "a.txt", result[0].Key)
		mockSvc.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		mockSvc.On("ListFiles", mock.Anything).
			Return(nil, fmt.Errorf("%w: denied", service.ErrStoreListFailed)).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "STORE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestViewFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Get("/storage/file", ViewFileByName(mockSvc))
	app.Get("/storage/:key", ViewFile(mockSvc))

	t.Run("by path", func(t *testing.T) {
		mockSvc.On("GetViewURL", mock.Anything, "my photo.png").Return("http://signed", nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/my%20photo.png", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "http://signed", body["url"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("by query with slashes", func(t *testing.T) {
		mockSvc.On("GetViewURL", mock.Anything, "docs/2024/a.pdf").Return("http://signed", nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/file?name=docs/2024/a.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing name", func(t *testing.T) {
		mockSvc.On("GetViewURL", mock.Anything, "").Return("", service.ErrKeyRequired).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/file", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "KEY_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Post("/storage/upload", UploadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "test.txt")

		expected := &service.UploadResult{FileKey: "1-test.txt", URL: "http://u", SignedURL: "http://s", ContentType: "text/plain"}
		mockSvc.On("UploadFile", mock.Anything, mock.MatchedBy(func(f service.FileInput) bool {
			return f.Filename == "test.txt" && string(f.Body) == "content of test.txt"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/storage/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.UploadResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, *expected, result)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		body, ct := multipartBody(t, "file")
		req := httptest.NewRequest(http.MethodPost, "/storage/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/storage/upload", strings.NewReader(`{"file":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/storage/upload", strings.NewReader("not a multipart body"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "BAD_REQUEST", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("store error", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "test.txt")
		mockSvc.On("UploadFile", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: boom", service.ErrStoreWriteFailed)).Once()

		req := httptest.NewRequest(http.MethodPost, "/storage/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadMultipleFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Post("/storage/upload/multiple", UploadMultipleFiles(mockSvc, 2))

	names := func(files []service.FileInput) []string {
		out := make([]string, len(files))
		for i, f := range files {
			out[i] = f.Filename
		}
		return out
	}

	t.Run("success keeps order", func(t *testing.T) {
		body, ct := multipartBody(t, "files", "a.txt", "b.txt")
		mockSvc.On("UploadMultipleFiles", mock.Anything, mock.MatchedBy(func(files []service.FileInput) bool {
			return assert.ObjectsAreEqual([]string{"a.txt", "b.txt"}, names(files))
		})).Return([]service.UploadResult{{FileKey: "1-a.txt"}, {FileKey: "1-b.txt"}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/storage/upload/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result []service.UploadResult
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.Equal(t, "1-a.txt", result[0].FileKey)
		assert.Equal(t, "1-b.txt", result[1].FileKey)
		mockSvc.AssertExpectations(t)
	})

	t.Run("too many files", func(t *testing.T) {
		body, ct := multipartBody(t, "files", "a.txt", "b.txt", "c.txt")

		req := httptest.NewRequest(http.MethodPost, "/storage/upload/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "TOO_MANY_FILES", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("fail fast", func(t *testing.T) {
		body, ct := multipartBody(t, "files", "a.txt", "b.txt")
		mockSvc.On("UploadMultipleFiles", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: b.txt", service.ErrStoreWriteFailed)).Once()

		req := httptest.NewRequest(http.MethodPost, "/storage/upload/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("best effort with a failure", func(t *testing.T) {
		body, ct := multipartBody(t, "files", "a.txt", "b.txt")
		outcomes := []service.UploadOutcome{
			{UploadResult: service.UploadResult{FileKey: "1-a.txt", OriginalName: "a.txt"}},
			{UploadResult: service.UploadResult{OriginalName: "b.txt"}, Error: "disk full", Err: errors.New("disk full")},
		}
		mockSvc.On("UploadMultipleFilesBestEffort", mock.Anything, mock.Anything).Return(outcomes, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/storage/upload/multiple?mode=best-effort", body)
		req.Header.Set("Content-Type", ct)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)

		var result []map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.Equal(t, "disk full", result[1]["error"])
		assert.NotContains(t, result[0], "error")
		mockSvc.AssertExpectations(t)
	})
}

func TestGetUploadURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Get("/storage/upload/presigned", GetUploadURL(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("GetUploadURL", mock.Anything, ".pdf").Return(&service.UploadURL{
			SignedURL:   "http://signed-put",
			URL:         "http://store/uploads/k.pdf",
			FileKey:     "k.pdf",
			ContentType: "application/pdf",
			ExpiresAt:   time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
		}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/upload/presigned?extension=.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "http://signed-put", body["signedUrl"])
		assert.Equal(t, "http://store/uploads/k.pdf", body["path"])
		assert.Equal(t, "application/pdf", body["contentType"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid extension", func(t *testing.T) {
		mockSvc.On("GetUploadURL", mock.Anything, ".zzzUnknown").
			Return(nil, fmt.Errorf("%w: %q", service.ErrInvalidExtension, ".zzzUnknown")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/upload/presigned?extension=.zzzUnknown", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_EXTENSION", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockStorageService)
	app := fiber.New()
	app.Delete("/storage/:key", DeleteFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("DeleteFile", mock.Anything, "a.txt").Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/storage/a.txt", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "File deleted successfully", body["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		mockSvc.On("DeleteFile", mock.Anything, "a.txt").
			Return(fmt.Errorf("%w: denied", service.ErrStoreDeleteFailed)).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/storage/a.txt", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadFile(t *testing.T) {
	store := storagetest.New()
	svc := service.NewStorageService(store, nil)
	_, err := svc.PutObject(t.Context(), "report.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/storage/download/:name", DownloadFile(svc))

	t.Run("streams body", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/download/report.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(b))
	})

	t.Run("not found", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/download/missing.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(middleware.RequestID())

	mockSvc := new(serviceMocks.MockStorageService)
	RegisterHealth(app, pingFunc(func() error { return nil }))
	RegisterRoutes(app.Group("/api"), mockSvc, Options{})

	t.Run("not found route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		assert.NotEmpty(t, res.RequestID)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("fixed paths win over key", func(t *testing.T) {
		mockSvc.On("ListFiles", mock.Anything).Return([]storage.ObjectInfo{}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/storage/list", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "GetViewURL", mock.Anything, "list")
		mockSvc.AssertExpectations(t)
	})

	t.Run("upload url alias", func(t *testing.T) {
		mockSvc.On("GetUploadURL", mock.Anything, "png").Return(&service.UploadURL{FileKey: "k.png"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/storage/upload-url?extension=png", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
