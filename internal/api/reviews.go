package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"book_review_api/internal/domain" // Importing domain models
	"book_review_api/internal/policy" // Access policy checks
	"book_review_api/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// reviewCacheTTL is how long review reads stay cached
const reviewCacheTTL = 60 * time.Second

// CreateReviewRequest is the payload for creating a review. The book and
// author references come from the path and the token, never from the body.
type CreateReviewRequest struct {
	Rating  int    `json:"rating"`  // Rating, validated against [1,5]
	Comment string `json:"comment"` // Review comment
}

// UpdateReviewRequest carries the mutable review fields; nil fields are left
// unchanged. Book and author references are immutable after creation.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`  // New rating, if set
	Comment *string `json:"comment"` // New comment, if set
}

// ReviewResponse is the externally visible review shape, showing the author's
// username instead of the raw user ID
type ReviewResponse struct {
	ID        uint      `json:"id"`         // Review ID
	Book      uint      `json:"book"`       // Reviewed book ID
	User      string    `json:"user"`       // Author's username
	Rating    int       `json:"rating"`     // Rating
	Comment   string    `json:"comment"`    // Comment
	CreatedAt time.Time `json:"created_at"` // Creation timestamp
}

// toReviewResponse maps a review (with its User preloaded) to the response shape
func toReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,            // Review ID
		Book:      r.BookID,        // Reviewed book ID
		User:      r.User.Username, // Author's username
		Rating:    r.Rating,        // Rating
		Comment:   r.Comment,       // Comment
		CreatedAt: r.CreatedAt,     // Creation timestamp
	}
}

// reviewListCacheKey builds the cache key for a book's review listing
func reviewListCacheKey(bookID uint) string {
	return "reviews:book:" + strconv.Itoa(int(bookID))
}

// reviewCacheKey builds the cache key for a single review
func reviewCacheKey(id uint) string {
	return "reviews:id:" + strconv.Itoa(int(id))
}

// isValidRating checks the inclusive rating range
func isValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// ListBookReviewsHandler returns all reviews for a book, newest first.
// Unrestricted read, but a missing book is a 404 rather than an empty list.
func ListBookReviewsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookID, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil || bookID <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var book domain.Book // Ensure the book exists
		if err := db.First(&book, bookID).Error; err != nil {
			// If book not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		ctx := context.Background()                // Context for Redis operations
		cacheKey := reviewListCacheKey(book.ID)    // Cache key for this listing
		var cached []ReviewResponse                // Cached listing
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			// Return cached listing
			c.JSON(http.StatusOK, gin.H{"reviews": cached, "cached": true})
			return
		}
		var reviews []domain.Review // Fetch reviews with their authors, newest first
		if err := db.Preload("User").
			Where("book_id = ?", book.ID).
			Order("created_at desc, id desc").
			Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		// Map to the response shape
		resp := make([]ReviewResponse, len(reviews))
		for i, r := range reviews {
			resp[i] = toReviewResponse(r)
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, reviewCacheTTL)  // Cache the listing
		c.JSON(http.StatusOK, gin.H{"reviews": resp, "cached": false}) // Return listing
	}
}

// CreateReviewHandler creates a review for a book on behalf of the
// authenticated actor. At most one review per (book, user): a duplicate is a
// conflict whether it is caught by the pre-check or by the unique index when
// two creations race.
func CreateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := actorID(c) // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		bookID, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil || bookID <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var book domain.Book // Ensure the book exists
		if err := db.First(&book, bookID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var req CreateReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		// Validate the rating range
		if !isValidRating(req.Rating) {
			c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"rating": "Rating must be between 1 and 5."}))
			return
		}
		// Reject duplicates up front for a clean error on the common path
		var count int64
		if err := db.Model(&domain.Review{}).
			Where("book_id = ? AND user_id = ?", book.ID, userID).
			Count(&count).Error; err == nil && count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this book."})
			return
		}
		review := domain.Review{
			BookID:  book.ID,     // Reviewed book, taken from the path
			UserID:  userID,      // Author, taken from the token
			Rating:  req.Rating,  // Rating
			Comment: req.Comment, // Comment
		}
		// Create the review; the unique index arbitrates racing duplicates
		if err := db.Omit("User").Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent creation won the race
				c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this book."})
				return
			}
			logrus.WithFields(logrus.Fields{
				"book_id": book.ID,     // Book ID
				"user_id": userID,      // Author ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create review") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		// Load the author for the response
		if err := db.First(&review.User, userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		// Log the creation
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID, // New review ID
			"book_id":   book.ID,   // Book ID
			"user_id":   userID,    // Author ID
		}).Info("Review created")
		// Invalidate the listing cache for this book
		_ = utils.DeleteCache(context.Background(), rdb, reviewListCacheKey(book.ID))
		// Return the created review
		c.JSON(http.StatusCreated, gin.H{"review": toReviewResponse(review)})
	}
}

// GetReviewHandler returns a single review by ID. Unrestricted read.
func GetReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse review ID from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		ctx := context.Background()          // Context for Redis operations
		cacheKey := reviewCacheKey(uint(id)) // Cache key for this review
		var cached ReviewResponse
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			// Return cached review
			c.JSON(http.StatusOK, gin.H{"review": cached, "cached": true})
			return
		}
		var review domain.Review // Fetch the review with its author
		if err := db.Preload("User").First(&review, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		resp := toReviewResponse(review)
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, reviewCacheTTL)  // Cache the review
		c.JSON(http.StatusOK, gin.H{"review": resp, "cached": false}) // Return review
	}
}

// UpdateReviewHandler mutates a review's rating or comment. Owner only; the
// book and author references never change after creation. Serves PUT and PATCH.
func UpdateReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := actorID(c)                // Acting user, 0 when anonymous
		id, err := strconv.Atoi(c.Param("id")) // Parse review ID from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		var review domain.Review // Fetch the review with its author
		if err := db.Preload("User").First(&review, id).Error; err != nil {
			// If review not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		// Evaluate the owner-or-read-only policy for this request
		preq := policy.Request{
			SafeMethod: policy.SafeMethod(c.Request.Method), // Mutations require ownership
			ActorID:    userID,                              // Acting user
			OwnerID:    review.UserID,                       // Review author
		}
		if err := policy.Evaluate(preq, policy.Authenticated, policy.OwnerOrReadOnly); err != nil {
			if errors.Is(err, policy.ErrAuthRequired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this review"})
			return
		}
		var req UpdateReviewRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		updates := map[string]any{} // Only the mutable fields
		if req.Rating != nil {
			// Re-validate the rating range
			if !isValidRating(*req.Rating) {
				c.JSON(http.StatusBadRequest, fieldErrors(map[string]string{"rating": "Rating must be between 1 and 5."}))
				return
			}
			updates["rating"] = *req.Rating // New rating
			review.Rating = *req.Rating     // Keep the response in sync
		}
		if req.Comment != nil {
			updates["comment"] = *req.Comment // New comment
			review.Comment = *req.Comment     // Keep the response in sync
		}
		// Apply the updates, if any
		if len(updates) > 0 {
			if err := db.Model(&review).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
				return
			}
		}
		// Log the mutation
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID, // Review ID
			"user_id":   userID,    // Acting user
		}).Info("Review updated")
		// Invalidate per-review and listing caches
		_ = utils.DeleteCache(context.Background(), rdb, reviewCacheKey(review.ID), reviewListCacheKey(review.BookID))
		// Return the updated review
		c.JSON(http.StatusOK, gin.H{"review": toReviewResponse(review)})
	}
}

// DeleteReviewHandler removes a review. Owner only.
func DeleteReviewHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := actorID(c)                // Acting user, 0 when anonymous
		id, err := strconv.Atoi(c.Param("id")) // Parse review ID from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		var review domain.Review // Fetch the review
		if err := db.First(&review, id).Error; err != nil {
			// If review not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		// Evaluate the owner-or-read-only policy for this request
		preq := policy.Request{
			SafeMethod: policy.SafeMethod(c.Request.Method), // DELETE is never safe
			ActorID:    userID,                              // Acting user
			OwnerID:    review.UserID,                       // Review author
		}
		if err := policy.Evaluate(preq, policy.Authenticated, policy.OwnerOrReadOnly); err != nil {
			if errors.Is(err, policy.ErrAuthRequired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to modify this review"})
			return
		}
		// Delete the review
		if err := db.Delete(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		// Log the deletion
		logrus.WithFields(logrus.Fields{
			"review_id": review.ID, // Review ID
			"user_id":   userID,    // Acting user
		}).Info("Review deleted")
		// Invalidate per-review and listing caches
		_ = utils.DeleteCache(context.Background(), rdb, reviewCacheKey(review.ID), reviewListCacheKey(review.BookID))
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}
