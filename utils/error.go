package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stable error codes surfaced to API callers.
const (
	CodeMissingFields          = "missing_fields"
	CodeInvalid                = "invalid"
	CodeOutsideAvailability    = "outside_availability"
	CodeOverlap                = "overlap"
	CodeOverlapOrBuffer        = "overlap_or_buffer"
	CodeNotFound               = "not_found"
	CodeForbidden              = "forbidden"
	CodeInvalidStatus          = "invalid_status"
	CodeInvalidService         = "invalid_service"
	CodeInvalidAmount          = "invalid_amount"
	CodeProviderMissingAccount = "provider_missing_account"
	CodeTransferFailed         = "transfer_failed"
)

// ServiceError is a structured error with a stable code that calling
// layers can map to user-facing messages.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewServiceError builds a ServiceError with a formatted message.
func NewServiceError(code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the stable code from an error chain, or "" if none.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
