package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/backend/internal/utils"
)

// APIKeyMiddleware guards the public referral endpoints with a shared key
// carried in the x-api-key header. The configured value may be the plain key
// or a bcrypt hash of it, so deployments never have to keep the plaintext in
// their environment.
func APIKeyMiddleware(expectedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Public API is not configured"})
			c.Abort()
			return
		}

		provided := c.GetHeader("x-api-key")
		if !apiKeyMatches(provided, expectedKey) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func apiKeyMatches(provided, expected string) bool {
	if strings.HasPrefix(expected, "$2a$") || strings.HasPrefix(expected, "$2b$") {
		return utils.CheckPasswordHash(provided, expected)
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
