package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
)

func TestResolve_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockReconcileRepository)
	service := NewLinkageService(mockRepo, logger.New("test"))
	ctx := context.Background()

	mockRepo.On("LinkAuctionHistory", ctx).Return(int64(3), nil)

	// Act
	linked, err := service.Resolve(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), linked)
	mockRepo.AssertExpectations(t)
}

func TestResolve_NothingToLink(t *testing.T) {
	mockRepo := new(MockReconcileRepository)
	service := NewLinkageService(mockRepo, logger.New("test"))
	ctx := context.Background()

	mockRepo.On("LinkAuctionHistory", ctx).Return(int64(0), nil)

	linked, err := service.Resolve(ctx)
	require.NoError(t, err)
	assert.Zero(t, linked)
	mockRepo.AssertExpectations(t)
}

func TestResolve_DatabaseError(t *testing.T) {
	mockRepo := new(MockReconcileRepository)
	service := NewLinkageService(mockRepo, logger.New("test"))
	ctx := context.Background()

	dbErr := errors.New("connection reset")
	mockRepo.On("LinkAuctionHistory", ctx).Return(int64(0), dbErr)

	_, err := service.Resolve(ctx)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to link auction history")
	mockRepo.AssertExpectations(t)
}
