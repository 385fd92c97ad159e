package mocks

import (
	"context"

	"libapi/internal/model"
	"libapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) Upload(ctx context.Context, in *model.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Delete(ctx context.Context, id int64) (*service.DeleteResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeleteResult), args.Error(1)
}

func (m *MockLibraryService) View(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLibraryService) Download(ctx context.Context, id int64) (*service.DownloadResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockLibraryService) ListBooks(ctx context.Context, level, subject string) ([]model.Document, error) {
	args := m.Called(ctx, level, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockLibraryService) ListPapers(ctx context.Context, level, subject string) ([]model.Document, error) {
	args := m.Called(ctx, level, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockLibraryService) Dashboard(ctx context.Context) (*service.DashboardData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DashboardData), args.Error(1)
}

func (m *MockLibraryService) ShareLink(level, subject, baseURL, phone string) string {
	args := m.Called(level, subject, baseURL, phone)
	return args.String(0)
}
