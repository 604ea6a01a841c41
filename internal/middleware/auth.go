package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"contactbook/internal/auth"
)

const userIDContextKey = "userID"

func UserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Get(userIDContextKey)
	if !ok {
		return "", false
	}
	value, ok := userID.(string)
	return value, ok && value != ""
}

// RequireAuth verifies the bearer token and stores its subject in the gin
// context. Failures answer the 401 envelope.
func RequireAuth(cfg auth.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abort(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		claims, err := auth.VerifyToken(parts[1], cfg)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Token is not valid")
			return
		}

		c.Set(userIDContextKey, claims.UserID)
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
