package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/taxsale/api/internal/errors"
	"github.com/stwalsh4118/taxsale/api/internal/ingest"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/services"
)

// ImportHandler handles import job submission and polling.
type ImportHandler struct {
	service        services.ImportService
	maxUploadBytes int64
}

// NewImportHandler creates a new ImportHandler instance.
func NewImportHandler(service services.ImportService, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// FileImportForm represents the form fields sent alongside an uploaded file.
type FileImportForm struct {
	Kind   string `form:"kind" binding:"required,oneof=properties auctions"`
	County string `form:"county" binding:"omitempty,max=100"`
}

// BlobImportRequest represents a JSON submission of scraped text blobs.
type BlobImportRequest struct {
	Kind  string        `json:"kind" binding:"required,eq=raw_text"`
	Blobs []ingest.Blob `json:"blobs" binding:"required,min=1,dive"`
}

// SubmitResponse is returned once a job has been accepted.
type SubmitResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}

// JobStatusResponse represents the response for the poll endpoint.
type JobStatusResponse struct {
	Progress *models.JobProgress `json:"progress,omitempty"`
	JobID    string              `json:"job_id"`
	Status   models.JobStatus    `json:"status"`
	Errors   []string            `json:"errors,omitempty"`
	Stalled  bool                `json:"stalled,omitempty"`
}

// Submit handles POST /api/v1/imports endpoint.
// Multipart requests carry a CSV or XLSX file; JSON requests carry raw text blobs.
func (h *ImportHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	var req services.ImportRequest
	var ok bool
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, ok = h.bindFile(c)
	} else {
		req, ok = h.bindBlobs(c)
	}
	if !ok {
		return
	}

	jobID, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedKind) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to start import", err)
		return
	}

	c.Set(middleware.JobIDKey, jobID)
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Import accepted", map[string]interface{}{
			"job_id": jobID,
			"kind":   req.Kind,
		})
	}

	c.JSON(http.StatusAccepted, SubmitResponse{
		JobID:  jobID,
		Status: models.JobPending,
	})
}

func (h *ImportHandler) bindFile(c *gin.Context) (services.ImportRequest, bool) {
	var form FileImportForm
	if err := c.ShouldBind(&form); err != nil {
		h.bindError(c, err, "Invalid form fields")
		return services.ImportRequest{}, false
	}

	header, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			apierrors.PayloadTooLarge(c, h.maxUploadBytes)
			return services.ImportRequest{}, false
		}
		apierrors.BadRequest(c, "A file field is required", nil)
		return services.ImportRequest{}, false
	}

	file, err := header.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return services.ImportRequest{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", fmt.Errorf("failed to read %s: %w", header.Filename, err))
		return services.ImportRequest{}, false
	}

	req := services.ImportRequest{
		Kind: models.JobKind(form.Kind),
		Name: header.Filename,
		Data: data,
	}
	if form.County != "" {
		req.County = &form.County
	}
	return req, true
}

func (h *ImportHandler) bindBlobs(c *gin.Context) (services.ImportRequest, bool) {
	var body BlobImportRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err, "Invalid request body")
		return services.ImportRequest{}, false
	}
	return services.ImportRequest{
		Kind:  models.KindRawText,
		Blobs: body.Blobs,
	}, true
}

func (h *ImportHandler) bindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	if tooLarge(err) {
		apierrors.PayloadTooLarge(c, h.maxUploadBytes)
		return
	}
	apierrors.BadRequest(c, message, nil)
}

// tooLarge reports whether err came from the request body size limit.
func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// Status handles GET /api/v1/imports/:job_id endpoint.
func (h *ImportHandler) Status(c *gin.Context) {
	jobID := c.Param("job_id")

	state, err := h.service.Status(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			apierrors.NotFound(c, "Import job not found or expired")
			return
		}
		apierrors.InternalServerError(c, "Failed to read import status", err)
		return
	}

	c.JSON(http.StatusOK, JobStatusResponse{
		JobID:    state.JobID,
		Status:   state.Status,
		Errors:   state.Errors,
		Progress: state.Progress,
		Stalled:  state.Stalled,
	})
}
