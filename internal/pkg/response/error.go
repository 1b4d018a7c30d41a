package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error sends a JSON error response.
// AppErrors are answered with their own status and message. Anything else is recorded on the
// gin context for the request logger and answered with a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest answers 400 with a message and the binding/validation details.
func BadRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
