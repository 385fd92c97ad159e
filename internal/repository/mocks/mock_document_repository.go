package mocks

import (
	"context"

	"libapi/internal/model"
	"libapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id int64, isPaper bool) (*model.Document, error) {
	args := m.Called(ctx, id, isPaper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAnyByID(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByLevelSubject(ctx context.Context, level, subject string, isPaper bool) ([]model.Document, error) {
	args := m.Called(ctx, level, subject, isPaper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentRepository) IncrementViews(ctx context.Context, id int64, isPaper bool) error {
	args := m.Called(ctx, id, isPaper)
	return args.Error(0)
}

func (m *MockDocumentRepository) IncrementDownloads(ctx context.Context, id int64, isPaper bool) error {
	args := m.Called(ctx, id, isPaper)
	return args.Error(0)
}

func (m *MockDocumentRepository) CountByLevelSubject(ctx context.Context, isPaper bool) (map[string]int, error) {
	args := m.Called(ctx, isPaper)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockDocumentRepository) DashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DashboardStats), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id int64, isPaper bool) error {
	args := m.Called(ctx, id, isPaper)
	return args.Error(0)
}
