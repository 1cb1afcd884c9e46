package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/taxsale/api/internal/middleware"
)

// Error codes returned in ErrorDetail.Code.
const (
	ErrNotFound        = "NOT_FOUND"
	ErrBadRequest      = "BAD_REQUEST"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrValidation      = "VALIDATION_ERROR"
	ErrTooManyRequests = "TOO_MANY_REQUESTS"
	ErrPayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// ErrorResponse is the envelope for every error body.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// reply logs through the request logger, when present, and writes the error
// body. With abort set the rest of the handler chain is skipped.
func reply(c *gin.Context, status int, detail ErrorDetail, logMsg string, err error, fields map[string]interface{}, abort bool) {
	detail.RequestID = middleware.GetRequestID(c)

	if log := middleware.GetLogger(c); log != nil {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["request_id"] = detail.RequestID
		fields["path"] = c.Request.URL.Path
		if status >= http.StatusInternalServerError {
			fields["method"] = c.Request.Method
			log.Error(logMsg, err, fields)
		} else {
			log.Warn(logMsg, fields)
		}
	}

	body := ErrorResponse{Error: detail}
	if abort {
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.JSON(status, body)
}

// NotFound writes a 404.
func NotFound(c *gin.Context, message string) {
	reply(c, http.StatusNotFound,
		ErrorDetail{Code: ErrNotFound, Message: message},
		"Resource not found", nil,
		map[string]interface{}{"message": message}, false)
}

// BadRequest writes a 400 with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	fields := map[string]interface{}{"message": message}
	if details != nil {
		fields["details"] = details
	}
	reply(c, http.StatusBadRequest,
		ErrorDetail{Code: ErrBadRequest, Message: message, Details: details},
		"Bad request", nil, fields, false)
}

// TooManyRequests writes a 429 and aborts the chain.
func TooManyRequests(c *gin.Context, message string) {
	reply(c, http.StatusTooManyRequests,
		ErrorDetail{Code: ErrTooManyRequests, Message: message},
		"Rate limit exceeded", nil,
		map[string]interface{}{"ip": c.ClientIP()}, true)
}

// PayloadTooLarge writes a 413 for an upload over limitBytes.
func PayloadTooLarge(c *gin.Context, limitBytes int64) {
	reply(c, http.StatusRequestEntityTooLarge,
		ErrorDetail{
			Code:    ErrPayloadTooLarge,
			Message: "Upload exceeds the maximum allowed size",
			Details: map[string]interface{}{"limit_bytes": limitBytes},
		},
		"Upload too large", nil,
		map[string]interface{}{"limit_bytes": limitBytes}, false)
}

// InternalServerError writes a 500. err is logged but never sent to the
// client; message should be generic.
func InternalServerError(c *gin.Context, message string, err error) {
	reply(c, http.StatusInternalServerError,
		ErrorDetail{Code: ErrInternalServer, Message: message},
		"Internal server error", err,
		map[string]interface{}{"message": message}, false)
}

// ValidationError writes a 400 listing a message per failed field.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	details := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = formatValidationError(fe)
	}

	reply(c, http.StatusBadRequest,
		ErrorDetail{
			Code:    ErrValidation,
			Message: "Validation failed for one or more fields",
			Details: details,
		},
		"Validation error", nil,
		map[string]interface{}{"fields": details}, false)
}

func formatValidationError(fe validator.FieldError) string {
	p := fe.Param()
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + p + ")"
	case "max":
		return "Value is too long or large (maximum: " + p + ")"
	case "len":
		return "Must have length of " + p
	case "gt":
		return "Must be greater than " + p
	case "gte":
		return "Must be greater than or equal to " + p
	case "lt":
		return "Must be less than " + p
	case "lte":
		return "Must be less than or equal to " + p
	case "oneof":
		return "Must be one of: " + p
	case "eq":
		return "Must be " + p
	case "url":
		return "Must be a valid URL"
	case "uuid":
		return "Must be a valid UUID"
	}
	return "Validation failed for tag: " + fe.Tag()
}
