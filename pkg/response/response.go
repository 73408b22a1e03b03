package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-live/idgen/pkg/idgen"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes for generator failures.
const (
	CodeClockRollback        = "CLOCK_ROLLBACK"
	CodeTimestampRange       = "TIMESTAMP_OUT_OF_RANGE"
	CodeInvalidEncoding      = "INVALID_ID"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
)

// Success sends a successful response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Error sends an error response.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", message)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// ServiceUnavailable sends a 503 error response.
func ServiceUnavailable(c *gin.Context, code, message string) {
	Error(c, http.StatusServiceUnavailable, code, message)
}

// FromError maps a generator error to its status and code. Clock errors
// are 503 and decode errors 400.
func FromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, idgen.ErrClockRollback):
		ServiceUnavailable(c, CodeClockRollback, err.Error())
	case errors.Is(err, idgen.ErrTimestampRange):
		ServiceUnavailable(c, CodeTimestampRange, err.Error())
	case errors.Is(err, idgen.ErrInvalidEncoding):
		Error(c, http.StatusBadRequest, CodeInvalidEncoding, err.Error())
	case errors.Is(err, idgen.ErrInvalidConfiguration):
		Error(c, http.StatusBadRequest, CodeInvalidConfiguration, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
