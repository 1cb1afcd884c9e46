package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

// Service-level errors
var (
	ErrInvalidParcelID  = errors.New("parcel id must not be blank")
	ErrPropertyNotFound = errors.New("property not found")
)

// PropertyService defines the interface for reading reconciled properties.
type PropertyService interface {
	// GetProperty retrieves a property with its details and auction history.
	// Returns ErrInvalidParcelID for a blank id.
	// Returns ErrPropertyNotFound if no property has the parcel id.
	GetProperty(ctx context.Context, parcelID string) (*models.PropertyView, error)
}

// propertyService is the concrete implementation of PropertyService.
type propertyService struct {
	repo repository.PropertyRepository
	log  *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(repo repository.PropertyRepository, log *logger.Logger) PropertyService {
	return &propertyService{
		repo: repo,
		log:  log,
	}
}

// GetProperty looks the property up by its natural key and transforms
// repository responses into business-level errors.
func (s *propertyService) GetProperty(ctx context.Context, parcelID string) (*models.PropertyView, error) {
	parcelID = strings.TrimSpace(parcelID)
	if parcelID == "" {
		return nil, ErrInvalidParcelID
	}

	view, err := s.repo.FindByParcelID(ctx, parcelID)
	if err != nil {
		s.log.Error("Failed to query property", err, map[string]interface{}{
			"parcel_id": parcelID,
		})
		return nil, fmt.Errorf("failed to query property: %w", err)
	}

	// Repository returns nil, nil when no property found
	if view == nil {
		s.log.Debug("No property found", map[string]interface{}{
			"parcel_id": parcelID,
		})
		return nil, ErrPropertyNotFound
	}

	s.log.Info("Property found", map[string]interface{}{
		"parcel_id": parcelID,
		"history":   len(view.History),
	})
	return view, nil
}
