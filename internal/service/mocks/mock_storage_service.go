package mocks

import (
	"context"
	"io"

	"objgate/internal/service"
	"objgate/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) PutObject(ctx context.Context, key string, body []byte, contentType string) (*service.PutResult, error) {
	args := m.Called(ctx, key, body, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PutResult), args.Error(1)
}

func (m *MockStorageService) UploadFile(ctx context.Context, f service.FileInput) (*service.UploadResult, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockStorageService) GetFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorageService) GetFileContentType(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) GetViewURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) GetUploadURL(ctx context.Context, ext string) (*service.UploadURL, error) {
	args := m.Called(ctx, ext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadURL), args.Error(1)
}

func (m *MockStorageService) ListFiles(ctx context.Context) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]storage.ObjectInfo)
	return items, args.Error(1)
}

func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageService) UploadMultipleFiles(ctx context.Context, files []service.FileInput) ([]service.UploadResult, error) {
	args := m.Called(ctx, files)
	res, _ := args.Get(0).([]service.UploadResult)
	return res, args.Error(1)
}

func (m *MockStorageService) UploadMultipleFilesBestEffort(ctx context.Context, files []service.FileInput) ([]service.UploadOutcome, error) {
	args := m.Called(ctx, files)
	res, _ := args.Get(0).([]service.UploadOutcome)
	return res, args.Error(1)
}
