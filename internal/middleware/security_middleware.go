package middleware

import (
	"net/http"
	"strings"
	"time"

	"gamecafe-pos/internal/auth"
	"gamecafe-pos/internal/database"
	"gamecafe-pos/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's identity in the context for the handlers
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole restricts a route group to one role (e.g. "admin")
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != allowedRole {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CheckLicense blocks the whole API while the install has no active,
// unexpired license. The activation routes themselves stay outside this
// guard so a locked system can be unlocked.
func CheckLicense() gin.HandlerFunc {
	return func(c *gin.Context) {
		var license models.SystemLicense
		if err := database.DB.First(&license).Error; err != nil || !license.IsActive {
			c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "message": "System is not activated"})
			c.Abort()
			return
		}
		if time.Now().After(license.ExpirationDate) {
			c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "message": "License expired. Please contact support to renew."})
			c.Abort()
			return
		}
		c.Next()
	}
}
