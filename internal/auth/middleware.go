package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/studyhall/server/internal/errors"
)

// validates JWT tokens and adds user info to context
func AuthMiddleware(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Unauthorized(c, "authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			errors.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := issuer.ValidateJWT(parts[1])
		if err != nil {
			errors.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	return userID, userID != ""
}
