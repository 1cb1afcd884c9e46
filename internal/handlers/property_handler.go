package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxsale/api/internal/errors"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

// PropertyHandler handles reads of reconciled properties.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// PropertyResponse represents the response for the property endpoint.
type PropertyResponse struct {
	Property *PropertyData `json:"property"`
}

// PropertyData is a property with everything reconciled onto it.
type PropertyData struct {
	models.Property
	Location       *models.Point           `json:"location,omitempty"`
	Details        *models.PropertyDetails `json:"details,omitempty"`
	AuctionHistory []models.AuctionHistory `json:"auctionHistory"`
}

// Get handles GET /api/v1/properties/:parcel_id endpoint.
func (h *PropertyHandler) Get(c *gin.Context) {
	parcelID := c.Param("parcel_id")

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing property request", map[string]interface{}{
			"parcel_id": parcelID,
		})
	}

	view, err := h.service.GetProperty(c.Request.Context(), parcelID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidParcelID) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found with this parcel id")
			return
		}
		apierrors.InternalServerError(c, "Failed to query property data", err)
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{
		Property: mapPropertyViewToDTO(view),
	})
}

// mapPropertyViewToDTO converts a PropertyView to the response DTO.
// History is always a JSON array, never null.
func mapPropertyViewToDTO(view *models.PropertyView) *PropertyData {
	if view == nil {
		return nil
	}

	history := view.History
	if history == nil {
		history = []models.AuctionHistory{}
	}

	return &PropertyData{
		Property:       view.Property,
		Location:       view.Property.Location(),
		Details:        view.Details,
		AuctionHistory: history,
	}
}
