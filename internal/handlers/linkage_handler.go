package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/taxsale/api/internal/errors"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

// LinkageHandler exposes the linkage resolver.
type LinkageHandler struct {
	service services.LinkageService
}

// NewLinkageHandler creates a new LinkageHandler instance.
func NewLinkageHandler(service services.LinkageService) *LinkageHandler {
	return &LinkageHandler{service: service}
}

// LinkageResponse reports how many history rows a run linked.
type LinkageResponse struct {
	Linked int64 `json:"linked"`
}

// Resolve handles POST /api/v1/linkage/resolve endpoint.
func (h *LinkageHandler) Resolve(c *gin.Context) {
	linked, err := h.service.Resolve(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to link auction history", err)
		return
	}
	c.JSON(http.StatusOK, LinkageResponse{Linked: linked})
}
