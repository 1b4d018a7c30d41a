package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-booking-backend/internal/pkg/response"
)

// AuthRequired rejects requests without a valid "Authorization: Bearer <token>" header
// and stores the token's user on the context.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "missing or malformed bearer token"})
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "invalid or expired token"})
			return
		}

		SetUser(c, claims.UserID, claims.Email, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
