// Package storagetest provides an in-memory storage.Store for tests.
//
// Presigned URLs carry X-Amz-Date and X-Amz-Expires like SigV4 URLs, and
// Authorize checks them against a caller-supplied time the way a real store
// would reject an expired link.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"objgate/internal/storage"
)

const amzDateFormat = "20060102T150405Z"

// ErrExpired is returned by Authorize for a URL past its expiry.
var ErrExpired = errors.New("request has expired")

type object struct {
	data        []byte
	contentType string
	modified    time.Time
}

// Store is a goroutine-safe in-memory bucket.
type Store struct {
	Bucket string
	Now    func() time.Time
	// PutHook runs before a Put is applied. A non-nil error aborts the write.
	PutHook func(ctx context.Context, key string) error
	PingErr error

	mu      sync.Mutex
	objects map[string]object
	written []string
}

// New returns an empty store for bucket "uploads".
func New() *Store {
	return &Store{
		Bucket:  "uploads",
		Now:     time.Now,
		objects: make(map[string]object),
	}
}

var _ storage.Store = (*Store)(nil)

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	if s.PutHook != nil {
		if err := s.PutHook(ctx, key); err != nil {
			return storage.ObjectInfo{}, err
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	obj := object{data: data, contentType: opt.ContentType, modified: s.Now()}
	s.objects[key] = obj
	s.written = append(s.written, key)
	return s.info(key, obj), nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), s.info(key, obj), nil
}

func (s *Store) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	return s.info(key, obj), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Store) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.ObjectInfo, 0, len(s.objects))
	for k, obj := range s.objects {
		out = append(out, s.info(k, obj))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.presign("GET", key, "", expiry), nil
}

func (s *Store) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	return s.presign("PUT", key, contentType, expiry), nil
}

func (s *Store) ObjectURL(key string) string {
	return "http://store.test/" + s.Bucket + "/" + key
}

func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// Authorize validates a presigned URL for method at time at.
func (s *Store) Authorize(rawURL, method string, at time.Time) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	q := u.Query()
	if q.Get("X-Test-Method") != method {
		return fmt.Errorf("url not signed for %s", method)
	}
	issued, err := time.Parse(amzDateFormat, q.Get("X-Amz-Date"))
	if err != nil {
		return err
	}
	secs, err := strconv.Atoi(q.Get("X-Amz-Expires"))
	if err != nil {
		return err
	}
	if at.After(issued.Add(time.Duration(secs) * time.Second)) {
		return ErrExpired
	}
	return nil
}

// Has reports whether key is stored.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// Written returns keys in the order their writes completed.
func (s *Store) Written() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.written...)
}

func (s *Store) presign(method, key, contentType string, expiry time.Duration) string {
	q := url.Values{}
	q.Set("X-Amz-Date", s.Now().UTC().Format(amzDateFormat))
	q.Set("X-Amz-Expires", strconv.Itoa(int(expiry.Seconds())))
	q.Set("X-Test-Method", method)
	if contentType != "" {
		q.Set("X-Test-Content-Type", contentType)
	}
	return s.ObjectURL(key) + "?" + q.Encode()
}

func (s *Store) info(key string, obj object) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.modified,
	}
}
