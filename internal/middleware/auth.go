package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/models"
	"github.com/estatelink/backend/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextProfileID = "profile_id"
	ContextRole      = "role"
)

// AuthMiddleware verifies the bearer token and loads the caller's profile.
// The profile row is the source of truth for role and active status, so a
// deactivated user is rejected even with a valid token.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var profile models.UserProfile
		if err := db.First(&profile, "user_id = ?", claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			c.Abort()
			return
		}
		if !profile.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, profile.Email)
		c.Set(ContextProfileID, profile.ID)
		c.Set(ContextRole, profile.Role)

		c.Next()
	}
}

// RequireRole ensures the caller holds one of the given roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRole)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}
		role := value.(models.Role)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		c.Abort()
	}
}

// CallerRole returns the role AuthMiddleware stored on the context.
func CallerRole(c *gin.Context) models.Role {
	if value, exists := c.Get(ContextRole); exists {
		return value.(models.Role)
	}
	return ""
}

// extractToken gets the token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}
