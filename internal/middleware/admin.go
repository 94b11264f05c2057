package middleware

import (
	"net/http" // HTTP status codes

	"book_review_api/internal/domain" // Importing domain models
	"book_review_api/internal/policy" // Access policy checks

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnlyMiddleware loads the actor's role from the database on each request
// and evaluates the admin-or-read-only policy against it
func AdminOnlyMiddleware(db *gorm.DB, adminRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// If user not found or any error, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Evaluate the admin-or-read-only policy for this request
		req := policy.Request{
			SafeMethod: policy.SafeMethod(c.Request.Method), // Read-only methods pass through
			ActorID:    user.ID,                             // Acting user
			ActorRole:  user.Role,                           // Acting user's role
		}
		if err := policy.Evaluate(req, policy.Authenticated, policy.AdminOrReadOnly(adminRole)); err != nil {
			// If denied, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
