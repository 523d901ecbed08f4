package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lnpos/voucherd/internal/shared/id"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"

	maxRequestIDLength = 64
)

// RequestID propagates the caller's request id or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Next()
	}
}

// validRequestID accepts UUIDs and short alphanumeric ids so that arbitrary
// header content never reaches the logs.
func validRequestID(s string) bool {
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	return id.IsValid(s, maxRequestIDLength)
}
