package middleware

import (
	"net/http"
	"strings"

	userRepo "handyhub/database/repository/user"
	"handyhub/models"
	"handyhub/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserKey holds the authenticated *models.User on the request.
	ContextUserKey = "currentUser"
)

// JWTAuthMiddleware authenticates requests via a Bearer token and loads the
// account so downstream handlers can derive the actor's role.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, _, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by JWTAuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}

// RequireVendor rejects requests from accounts that are not providers.
func RequireVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || (!user.IsProvider && !user.IsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Vendor access required"})
			return
		}
		c.Next()
	}
}
