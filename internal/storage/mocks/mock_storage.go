package mocks

import (
	"context"
	"io"

	"libapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, r io.Reader, opt storage.UploadOptions) (storage.UploadResult, error) {
	args := m.Called(ctx, r, opt)
	if f, ok := args.Get(0).(func(context.Context, io.Reader, storage.UploadOptions) storage.UploadResult); ok {
		return f(ctx, r, opt), args.Error(1)
	}
	return args.Get(0).(storage.UploadResult), args.Error(1)
}

func (m *MockStorage) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
