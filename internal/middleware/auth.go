package middleware

import (
	"net/http"
	"os"
	"strings"

	"taskify/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type AuthzConfig struct {
	Secret string
}

// AuthzMiddleware verifies the bearer token and stores the caller's
// identity under "user_id"/"role". Every downstream accessor scopes its
// queries to that id; no handler trusts a user id from the request body.
func AuthzMiddleware(config AuthzConfig) gin.HandlerFunc {
	secret := config.Secret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = "default_secret_change_in_production"
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header required",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header must be a bearer token",
			})
			return
		}

		claims, err := utils.ParseJWT(parts[1], secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or expired token",
			})
			return
		}

		if tokenType, ok := claims["type"].(string); ok && tokenType == "refresh" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Refresh tokens cannot be used for API access",
			})
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || !utils.IsValidUUID(userID) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token carries no valid user identity",
			})
			return
		}

		c.Set("user_id", userID)
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}

		c.Next()
	}
}
