// Package storage contains the S3-compatible object store adapters used by the gateway.
// Implementations never touch local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// ErrObjectNotFound is returned when the requested key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// maxListKeys caps List to a single ListObjectsV2 page.
const maxListKeys = 1000

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Store is a reusable, S3-compatible object storage client bound to one bucket.
// It is safe for concurrent use; nothing in it is mutated after construction.
type Store interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object metadata without fetching the content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns a single page of objects in the bucket.
	List(ctx context.Context) ([]ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignPut returns a time-limited URL allowing a PUT of the given content type.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// ObjectURL returns the permanent, unsigned URL of key.
	ObjectURL(key string) string
	// Ping checks that the bucket is reachable.
	Ping(ctx context.Context) error
}

// objectURL joins endpoint, bucket and key in path style.
func objectURL(endpoint, bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + strings.Join(segs, "/")
}
