package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

// MockImportService is a mock implementation of ImportService for testing
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Submit(ctx context.Context, req services.ImportRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockImportService) Status(ctx context.Context, jobID string) (*services.JobState, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JobState), args.Error(1)
}

func (m *MockImportService) Wait() {}

// MockLinkageService is a mock implementation of LinkageService for testing
type MockLinkageService struct {
	mock.Mock
}

func (m *MockLinkageService) Resolve(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPropertyService is a mock implementation of PropertyService for testing
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) GetProperty(ctx context.Context, parcelID string) (*models.PropertyView, error) {
	args := m.Called(ctx, parcelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyView), args.Error(1)
}
