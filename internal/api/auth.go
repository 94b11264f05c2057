package api

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"book_review_api/internal/config" // Application configuration
	"book_review_api/internal/domain" // Importing domain models
	"book_review_api/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`    // Username must be provided
	Email     string `json:"email" binding:"required,email"` // Email must be provided and well formed
	Password  string `json:"password" binding:"required"`    // Password must be provided
	Password2 string `json:"password2" binding:"required"`   // Password confirmation must be provided
}

// TokenRequest is the credential payload for token issuance
type TokenRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// TokenRefreshRequest carries a refresh token
type TokenRefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"` // Refresh token must be provided
}

// ChangePasswordRequest is the credential rotation payload
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`  // Current password must be provided
	NewPassword  string `json:"new_password" binding:"required"`  // New password must be provided
	NewPassword2 string `json:"new_password2" binding:"required"` // New password confirmation must be provided
}

// TokenResponse is the issued token pair
type TokenResponse struct {
	Access  string `json:"access"`  // Access token
	Refresh string `json:"refresh"` // Refresh token
}

// actorID returns the authenticated user's ID from the gin context
func actorID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Set by the JWT middleware
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// isValidPassword checks the password against the configured length policy
func isValidPassword(password string, cfg *config.Config) bool {
	return len(password) >= cfg.PasswordMinLen && len(password) <= cfg.PasswordMaxLen
}

// RegisterHandler creates a new user account
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return field errors
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		// Validate the password pair
		if req.Password != req.Password2 {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"password": "Password fields didn't match."}))
			return
		}
		// Validate password strength
		if !isValidPassword(req.Password, cfg) {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"password": "Password does not meet the length policy."}))
			return
		}
		username := strings.ToLower(req.Username) // Lowercase username to keep uniqueness case-insensitive
		email := strings.ToLower(req.Email)       // Lowercase email as well
		// Reject already-registered emails up front
		var count int64
		if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err == nil && count > 0 {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"email": "Email already exists."}))
			return
		}
		// Reject taken usernames up front
		if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err == nil && count > 0 {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"username": "Username already exists."}))
			return
		}
		// Hash the password; only the hash is ever stored
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Username: username, Email: email, Password: string(hash)}
		// Attempt to create the user; the unique indexes catch races past the pre-checks
		if err := db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"non_field_errors": "A user with that username or email already exists."}))
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // Username
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{
			"id":       user.ID,       // New user ID
			"username": user.Username, // Username
			"email":    user.Email,    // Email
		})
	}
}

// TokenHandler exchanges credentials for an access and refresh token pair
func TokenHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return field errors
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", strings.ToLower(req.Username)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate the token pair
		access, refresh, err := utils.GenerateTokenPair(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
			return
		}
		// Return the token pair in the response
		c.JSON(http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
	}
}

// TokenRefreshHandler exchanges a refresh token for a new access token
func TokenRefreshHandler(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenRefreshRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return field errors
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		// Parse and validate the refresh token
		claims, err := utils.ParseRefreshToken(req.Refresh, jwtSecret)
		if err != nil {
			// Invalid, expired or wrong-type token
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		// Mint a fresh access token
		access, err := utils.GenerateAccessToken(claims.UserID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access": access}) // Return the new access token
	}
}

// ChangePasswordHandler rotates the authenticated user's credential.
// Outstanding tokens are not revoked; they stay valid until expiry, which is
// the token service's concern.
func ChangePasswordHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := actorID(c) // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return field errors
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		var user domain.User // Fetch the acting user
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Verify the old password
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"old_password": "Your old password was entered incorrectly. Please enter it again."}))
			return
		}
		// Validate the new password pair
		if req.NewPassword != req.NewPassword2 {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"new_password": "The two password fields didn't match."}))
			return
		}
		// Validate new password strength
		if !isValidPassword(req.NewPassword, cfg) {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"new_password": "Password does not meet the length policy."}))
			return
		}
		// Hash and store the new credential
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		if err := db.Model(&user).Update("password", string(hash)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
			return
		}
		// Log the rotation
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // Acting user ID
		}).Info("Password changed")
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
