package middleware

import (
	"net/http" // HTTP status codes

	"ecosort/internal/domain" // Role constants
	"ecosort/internal/store"  // Data-access layer

	"github.com/gin-gonic/gin" // Gin web framework
)

// RequireRole checks the user's role from the database on each request, so a
// token issued before a role change cannot keep its old privileges. The
// loaded user is stored in the context for handlers that need the actor.
func RequireRole(st *store.Store, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := st.GetUser(userID.(uint)) // Fetch user from database
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Set("user", user) // Store the actor for handlers
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	}
}

// Actor returns the user loaded by RequireRole
func Actor(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
