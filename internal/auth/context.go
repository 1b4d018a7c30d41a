package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

func getString(c *gin.Context, key string) string {
	if v, ok := c.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return getString(c, userIDKey)
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	return getString(c, userEmailKey)
}

// GetUserRole returns the role carried by the access token or empty string.
func GetUserRole(c *gin.Context) string {
	return getString(c, userRoleKey)
}

// SetUser stores an identity on the context. Used by AuthRequired and by tests.
func SetUser(c *gin.Context, id, email, role string) {
	c.Set(userIDKey, id)
	c.Set(userEmailKey, email)
	c.Set(userRoleKey, role)
}
