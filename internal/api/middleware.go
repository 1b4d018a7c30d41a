package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/room-booking-backend/internal/auth"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-booking-backend/internal/user"
)

const (
	HeaderRequestID = "X-Request-ID"
	requestIDKey    = "requestID"
)

// RequireAdmin ensures the authenticated user is an admin.
// The role is read from the database, not the token. It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "user not found"})
				return
			}
			response.Error(c, err)
			c.Abort()
			return
		}

		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}

// RequestLogger tags each request with an id (echoing X-Request-ID when the client sent one)
// and logs method, path, status and latency once the handler chain returns.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if userID := auth.GetUserID(c); userID != "" {
			args = append(args, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", args...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", args...)
		default:
			log.Info("request handled", args...)
		}
	}
}
