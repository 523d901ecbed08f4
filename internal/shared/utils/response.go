package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lnpos/voucherd/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ListResponse wraps an unpaginated list with its length.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// CreatedResponse sends a created response
func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Message: "Resource created successfully",
	}
	if len(message) > 0 {
		response.Message = message[0]
	}

	c.JSON(http.StatusCreated, response)
}

// ListSuccessResponse sends a list with its item count
func ListSuccessResponse(c *gin.Context, items interface{}, total int) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    ListResponse{Items: items, Total: total},
	})
}

// ErrorResponse sends an error response with custom status code and message
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    "error",
			Message: message,
		},
	})
}

// ErrorResponseWithError sends an error response based on error type
func ErrorResponseWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	// Non-AppErrors never leak their text to clients.
	info := ErrorInfo{
		Type:    string(errors.ErrorTypeInternal),
		Message: "Internal server error occurred",
	}

	if appErr := errors.GetAppError(err); appErr != nil {
		statusCode = appErr.Code
		info = ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}

	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &info,
	})
}
