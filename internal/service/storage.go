package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"objgate/internal/keygen"
	"objgate/internal/storage"
)

// PresignExpiry is the fixed lifetime of every presigned URL. It is not renewable.
const PresignExpiry = time.Hour

// DefaultContentType is reported when the store has no content type for an object.
const DefaultContentType = "application/octet-stream"

var (
	ErrKeyRequired       = errors.New("key is required")
	ErrNoFiles           = errors.New("at least one file is required")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrObjectNotFound    = storage.ErrObjectNotFound
	ErrStoreWriteFailed  = errors.New("object store write failed")
	ErrStoreReadFailed   = errors.New("object store read failed")
	ErrStoreListFailed   = errors.New("object store list failed")
	ErrStoreDeleteFailed = errors.New("object store delete failed")
)

// FileInput is one uploaded file as produced by the multipart parser.
type FileInput struct {
	Field       string
	Filename    string
	ContentType string
	Body        []byte
}

// PutResult holds the URLs of a freshly written object.
type PutResult struct {
	URL       string `json:"url"`
	SignedURL string `json:"signedUrl"`
}

// UploadResult describes one stored file.
type UploadResult struct {
	FileKey      string `json:"fileKey"`
	URL          string `json:"url"`
	SignedURL    string `json:"signedUrl"`
	ContentType  string `json:"contentType"`
	OriginalName string `json:"originalName,omitempty"`
}

// UploadOutcome is the per-file result of a best-effort batch upload.
type UploadOutcome struct {
	UploadResult
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// UploadURL is a presigned PUT issued for a generated key.
type UploadURL struct {
	SignedURL   string    `json:"signedUrl"`
	URL         string    `json:"path"`
	FileKey     string    `json:"fileKey"`
	ContentType string    `json:"contentType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// StorageService maps gateway operations onto the object store.
type StorageService interface {
	// PutObject writes body under key and returns its permanent and signed URLs.
	PutObject(ctx context.Context, key string, body []byte, contentType string) (*PutResult, error)
	// UploadFile stores one file under a timestamped key.
	UploadFile(ctx context.Context, f FileInput) (*UploadResult, error)
	// GetFile streams the object. The caller closes the reader.
	GetFile(ctx context.Context, key string) (io.ReadCloser, error)
	// GetFileContentType returns the stored MIME type, or DefaultContentType.
	GetFileContentType(ctx context.Context, key string) (string, error)
	// GetViewURL presigns a GET for key without checking that it exists.
	GetViewURL(ctx context.Context, key string) (string, error)
	// GetUploadURL presigns a PUT for a fresh random key ending in ext.
	GetUploadURL(ctx context.Context, ext string) (*UploadURL, error)
	// ListFiles returns one page of objects as the store reports them.
	ListFiles(ctx context.Context) ([]storage.ObjectInfo, error)
	// DeleteFile removes key. Deleting a missing key succeeds.
	DeleteFile(ctx context.Context, key string) error
	// UploadMultipleFiles uploads all files concurrently and fails with the first error.
	// Files already written stay in the store.
	UploadMultipleFiles(ctx context.Context, files []FileInput) ([]UploadResult, error)
	// UploadMultipleFilesBestEffort attempts every file and reports each outcome.
	UploadMultipleFilesBestEffort(ctx context.Context, files []FileInput) ([]UploadOutcome, error)
}

type storageService struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
}

// Option customizes the service.
type Option func(*storageService)

// WithClock replaces time.Now for key timestamps and expiry reporting.
func WithClock(now func() time.Time) Option {
	return func(s *storageService) { s.now = now }
}

// NewStorageService constructs a new StorageService.
func NewStorageService(store storage.Store, log *zap.Logger, opts ...Option) StorageService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &storageService{store: store, log: log.Named("storage"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *storageService) PutObject(ctx context.Context, key string, body []byte, contentType string) (*PutResult, error) {
	return s.put(ctx, key, body, contentType, nil)
}

func (s *storageService) put(ctx context.Context, key string, body []byte, contentType string, meta map[string]string) (*PutResult, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	s.log.Debug("uploading object", zap.String("key", key), zap.String("content_type", contentType))

	_, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: contentType,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Error("failed to upload object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreWriteFailed, key, err)
	}

	signed, err := s.GetViewURL(ctx, key)
	if err != nil {
		s.log.Error("failed to sign uploaded object", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreWriteFailed, key, err)
	}

	s.log.Info("uploaded object", zap.String("key", key), zap.Int("size", len(body)))
	return &PutResult{URL: s.store.ObjectURL(key), SignedURL: signed}, nil
}

func (s *storageService) UploadFile(ctx context.Context, f FileInput) (*UploadResult, error) {
	contentType := f.ContentType
	if contentType == "" {
		contentType = sniffContentType(f.Body)
	}
	key := keygen.Timestamped(s.now(), f.Filename)

	// Header values must be ASCII, so the name is stored escaped.
	res, err := s.put(ctx, key, f.Body, contentType, map[string]string{
		"original-filename": url.QueryEscape(f.Filename),
	})
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		FileKey:      key,
		URL:          res.URL,
		SignedURL:    res.SignedURL,
		ContentType:  contentType,
		OriginalName: f.Filename,
	}, nil
}

func (s *storageService) GetFile(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	s.log.Debug("getting file", zap.String("key", key))

	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, s.readError("get", key, err)
	}
	return rc, nil
}

func (s *storageService) GetFileContentType(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	s.log.Debug("getting content type", zap.String("key", key))

	info, err := s.store.Stat(ctx, key)
	if err != nil {
		return "", s.readError("head", key, err)
	}
	if info.ContentType == "" {
		return DefaultContentType, nil
	}
	return info.ContentType, nil
}

func (s *storageService) GetViewURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrKeyRequired
	}
	s.log.Debug("generating view url", zap.String("key", key))

	u, err := s.store.PresignGet(ctx, key, PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return u, nil
}

func (s *storageService) GetUploadURL(ctx context.Context, ext string) (*UploadURL, error) {
	s.log.Debug("generating upload url", zap.String("extension", ext))

	ext = normalizeExtension(ext)
	contentType := contentTypeForExtension(ext)
	if contentType == "" {
		s.log.Error("invalid file extension", zap.String("extension", ext))
		return nil, fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}

	key := keygen.Random(ext)
	issued := s.now()
	signed, err := s.store.PresignPut(ctx, key, contentType, PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}

	return &UploadURL{
		SignedURL:   signed,
		URL:         s.store.ObjectURL(key),
		FileKey:     key,
		ContentType: contentType,
		ExpiresAt:   issued.Add(PresignExpiry).UTC(),
	}, nil
}

func (s *storageService) ListFiles(ctx context.Context) ([]storage.ObjectInfo, error) {
	s.log.Debug("listing all files")

	items, err := s.store.List(ctx)
	if err != nil {
		s.log.Error("failed to list files", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreListFailed, err)
	}
	return items, nil
}

func (s *storageService) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	s.log.Debug("deleting file", zap.String("key", key))

	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Error("failed to delete file", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrStoreDeleteFailed, key, err)
	}
	s.log.Info("deleted file", zap.String("key", key))
	return nil
}

func (s *storageService) UploadMultipleFiles(ctx context.Context, files []FileInput) ([]UploadResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	s.log.Info("uploading files", zap.Int("count", len(files)))

	// Results are written by index so output order matches input order.
	results := make([]UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			res, err := s.UploadFile(gctx, f)
			if err != nil {
				s.log.Error("failed to upload file", zap.String("filename", f.Filename), zap.Error(err))
				return err
			}
			s.log.Debug("uploaded file", zap.String("filename", f.Filename), zap.String("key", res.FileKey))
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *storageService) UploadMultipleFilesBestEffort(ctx context.Context, files []FileInput) ([]UploadOutcome, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	s.log.Info("uploading files (best effort)", zap.Int("count", len(files)))

	outcomes := make([]UploadOutcome, len(files))
	var g errgroup.Group
	for i, f := range files {
		g.Go(func() error {
			out := UploadOutcome{UploadResult: UploadResult{OriginalName: f.Filename}}
			res, err := s.UploadFile(ctx, f)
			if err != nil {
				s.log.Warn("file upload failed", zap.String("filename", f.Filename), zap.Error(err))
				out.Err = err
				out.Error = err.Error()
			} else {
				out.UploadResult = *res
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

func (s *storageService) readError(op, key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Debug("object not found", zap.String("op", op), zap.String("key", key))
		return fmt.Errorf("%s %s: %w", op, key, err)
	}
	s.log.Error("failed to read object", zap.String("op", op), zap.String("key", key), zap.Error(err))
	return fmt.Errorf("%w: %s %s: %w", ErrStoreReadFailed, op, key, err)
}
