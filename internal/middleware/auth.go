package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nocta-service/internal/functions"
	"nocta-service/internal/models"
)

// AuthMiddleware validates the Authorization header against the auth function
// and stores the resolved identity on the request context.
func AuthMiddleware(verifier functions.AuthVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("userID", identity.ID)
		c.Set("userEmail", identity.Email)
		c.Set("role", identity.Role)
		c.Next()
	}
}

// RequireCompany gates a route to company accounts.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleCompany {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "company account required"})
			return
		}
		c.Next()
	}
}

// RequireInternalSecret gates a route to callers presenting the shared
// internal secret. Callbacks from the serverless functions carry no user
// session, so they authenticate with this header instead. An unconfigured
// secret keeps the route closed.
func RequireInternalSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Internal-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
