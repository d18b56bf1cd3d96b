// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/logging"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details holds field-level messages for validation failures.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.Error.Details = details

	return resp
}

// WithTraceID sets the trace ID of the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes resp with the status its code maps to, stamped
// with the request's trace ID.
func AbortWithError(c *gin.Context, resp *ErrorResponse) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(resp.Error.Code), resp.WithTraceID(GetTraceID(c)))
}

// GetTraceID returns the ID used to correlate an error response with logs:
// the active OTel trace, then the request ID header.
func GetTraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return c.GetHeader("X-Request-ID")
}

// HandleError writes the response for an error returned by the quote
// service. Validation failures get a 400 envelope with field details.
// Missing quotes get a bare 404 and every other failure a bare 500, which
// is also logged.
func HandleError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	switch {
	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, "request validation failed")

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		AbortWithError(c, resp)

	case domain.IsNotFound(err):
		c.AbortWithStatus(http.StatusNotFound)

	default:
		logging.FromContext(ctx).ErrorContext(ctx, "request failed",
			slog.Any("error", err),
			slog.String("trace_id", GetTraceID(c)),
		)

		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// HandleBindError writes the envelope for a request body that could not be
// decoded or failed struct validation. Oversized bodies get 413, everything
// else 400.
func HandleBindError(c *gin.Context, err error) {
	var resp *ErrorResponse

	if limit, ok := IsBodyTooLarge(err); ok {
		resp = NewErrorResponse(ErrorCodePayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit))
	} else if IsValidationError(err) {
		resp = NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", ValidationErrors(err))
	} else {
		resp = NewErrorResponseWithDetails(ErrorCodeBadRequest, "request body is not valid JSON for this endpoint", BindingErrors(err))
	}

	AbortWithError(c, resp)
}
