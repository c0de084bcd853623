package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the standard envelope for every kernel API response.
type Response struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorInfo carries error detail in a failed Response.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Metadata is attached to every Response for request tracing.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Common error codes returned by the kernel API.
const (
	ErrorCodeBadRequest    = "BAD_REQUEST"
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

func newMetadata(c *gin.Context) Metadata {
	return Metadata{Timestamp: time.Now(), RequestID: requestID(c)}
}

// SuccessResponse writes a 200 response with data in the standard envelope.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Success: true, Data: data, Metadata: newMetadata(c)})
}

// ErrorResponse writes an error response in the standard envelope.
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success:  false,
		Error:    &ErrorInfo{Code: code, Message: message},
		Metadata: newMetadata(c),
	})
}

// BadRequestError writes a 400 response.
func BadRequestError(c *gin.Context, message string) {
	ErrorResponse(c, 400, ErrorCodeBadRequest, message)
}

// NotFoundError writes a 404 response.
func NotFoundError(c *gin.Context, message string) {
	ErrorResponse(c, 404, ErrorCodeNotFound, message)
}

// InternalError writes a 500 response.
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, 500, ErrorCodeInternalError, message)
}

// requestID extracts the request ID set by RequestIDMiddleware, or
// generates one if the middleware was not installed (tests).
func requestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
