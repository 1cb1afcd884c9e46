package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

func TestGetProperty_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockPropertyRepository)
	service := NewPropertyService(mockRepo, logger.New("test"))
	ctx := context.Background()

	parcel := "25-3612-00-1"
	expected := &models.PropertyView{
		Property: models.Property{ID: uuid.New(), ParcelID: &parcel, Status: models.StatusActive},
	}
	mockRepo.On("FindByParcelID", ctx, parcel).Return(expected, nil)

	// Act
	view, err := service.GetProperty(ctx, "  "+parcel+" ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, expected, view)
	mockRepo.AssertExpectations(t)
}

func TestGetProperty_NotFound(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := NewPropertyService(mockRepo, logger.New("test"))
	ctx := context.Background()

	// Repository returns nil, nil when no property found
	mockRepo.On("FindByParcelID", ctx, "missing").Return(nil, nil)

	view, err := service.GetProperty(ctx, "missing")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	mockRepo.AssertExpectations(t)
}

func TestGetProperty_BlankParcelID(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := NewPropertyService(mockRepo, logger.New("test"))

	_, err := service.GetProperty(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidParcelID)
	mockRepo.AssertNotCalled(t, "FindByParcelID")
}

func TestGetProperty_DatabaseError(t *testing.T) {
	mockRepo := new(MockPropertyRepository)
	service := NewPropertyService(mockRepo, logger.New("test"))
	ctx := context.Background()

	dbErr := errors.New("database connection failed")
	mockRepo.On("FindByParcelID", ctx, "P-1").Return(nil, dbErr)

	_, err := service.GetProperty(ctx, "P-1")
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to query property")
	mockRepo.AssertExpectations(t)
}
