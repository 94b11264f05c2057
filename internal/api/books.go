package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"book_review_api/internal/domain" // Importing domain models
	"book_review_api/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// bookCacheTTL is how long catalog reads stay cached
const bookCacheTTL = 60 * time.Second

// BookRequest is the admin payload for creating a book
type BookRequest struct {
	Title       string `json:"title" binding:"required"`  // Title must be provided
	Author      string `json:"author" binding:"required"` // Author must be provided
	Description string `json:"description"`               // Description is optional
}

// BookUpdateRequest carries the mutable book fields; nil fields are left unchanged
type BookUpdateRequest struct {
	Title       *string `json:"title"`       // New title, if set
	Author      *string `json:"author"`      // New author, if set
	Description *string `json:"description"` // New description, if set
}

// bookListCacheKey is the cache key for the full catalog listing
const bookListCacheKey = "books:all"

// bookCacheKey builds the cache key for a single book
func bookCacheKey(id uint) string {
	return "books:id:" + strconv.Itoa(int(id))
}

// ListBooksHandler returns the full catalog. Unrestricted read.
func ListBooksHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var books []domain.Book
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, bookListCacheKey, &books)
		if err == nil && found {
			// Return cached catalog
			c.JSON(http.StatusOK, gin.H{"books": books, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Find(&books).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
			return
		}
		_ = utils.SetCache(ctx, rdb, bookListCacheKey, books, bookCacheTTL) // Cache the catalog
		c.JSON(http.StatusOK, gin.H{"books": books, "cached": false})      // Return catalog
	}
}

// GetBookHandler returns a single book by ID. Unrestricted read.
func GetBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil || id <= 0 {
			// Non-numeric IDs cannot resolve to a book
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		ctx := context.Background()        // Context for Redis operations
		cacheKey := bookCacheKey(uint(id)) // Cache key for this book
		var book domain.Book
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &book)
		if err == nil && found {
			// Return cached book
			c.JSON(http.StatusOK, gin.H{"book": book, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.First(&book, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, book, bookCacheTTL)  // Cache the book
		c.JSON(http.StatusOK, gin.H{"book": book, "cached": false}) // Return book
	}
}

// CreateBookHandler adds a book to the catalog. Admin only (gated upstream).
func CreateBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BookRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return field errors
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		book := domain.Book{
			Title:       req.Title,       // Book title
			Author:      req.Author,      // Book author
			Description: req.Description, // Book description
		}
		// Attempt to create the book
		if err := db.Create(&book).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"title": req.Title,   // Book title
				"error": err.Error(), // Error message
			}).Error("Failed to create book") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create book"})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"book_id": book.ID,    // New book ID
			"title":   book.Title, // Book title
		}).Info("Book created")
		// Invalidate the catalog listing cache
		_ = utils.DeleteCache(context.Background(), rdb, bookListCacheKey)
		// Return the created book
		c.JSON(http.StatusCreated, gin.H{"book": book})
	}
}

// UpdateBookHandler mutates a book's fields. Admin only (gated upstream).
// Serves both PUT and PATCH; absent fields are left unchanged.
func UpdateBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var book domain.Book // Fetch the book
		if err := db.First(&book, id).Error; err != nil {
			// If book not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var req BookUpdateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, bindErrors(err))
			return
		}
		updates := map[string]any{} // Only the provided fields
		if req.Title != nil {
			updates["title"] = *req.Title // New title
		}
		if req.Author != nil {
			updates["author"] = *req.Author // New author
		}
		if req.Description != nil {
			updates["description"] = *req.Description // New description
		}
		// Apply the updates, if any
		if len(updates) > 0 {
			if err := db.Model(&book).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update book"})
				return
			}
		}
		// Log the mutation
		logrus.WithFields(logrus.Fields{
			"book_id": book.ID, // Book ID
		}).Info("Book updated")
		// Invalidate listing and per-book caches
		_ = utils.DeleteCache(context.Background(), rdb, bookListCacheKey, bookCacheKey(book.ID))
		// Return the updated book
		c.JSON(http.StatusOK, gin.H{"book": book})
	}
}

// DeleteBookHandler removes a book and, in the same transaction, every review
// referencing it. Admin only (gated upstream). The cascade is explicit so the
// unit of work is visible rather than buried in schema constraints.
func DeleteBookHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id")) // Parse book ID from path
		if err != nil || id <= 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var book domain.Book // Fetch the book
		if err := db.First(&book, id).Error; err != nil {
			// If book not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		var reviews []domain.Review // Dependent reviews, enumerated for cache invalidation
		if err := db.Where("book_id = ?", book.ID).Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
			return
		}
		// Delete the reviews and the book atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			// Remove dependent reviews first
			if err := tx.Where("book_id = ?", book.ID).Delete(&domain.Review{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the book itself
			if err := tx.Delete(&book).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"book_id": book.ID,     // Book ID
				"error":   err.Error(), // Error message
			}).Error("Book deletion failed") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete book"})
			return
		}
		// Log the deletion with the cascade size
		logrus.WithFields(logrus.Fields{
			"book_id":         book.ID,      // Book ID
			"reviews_removed": len(reviews), // Number of cascaded reviews
		}).Info("Book deleted")
		// Invalidate catalog, per-book and review caches
		keys := []string{bookListCacheKey, bookCacheKey(book.ID), reviewListCacheKey(book.ID)}
		for _, r := range reviews {
			keys = append(keys, reviewCacheKey(r.ID)) // Per-review cache entries
		}
		_ = utils.DeleteCache(context.Background(), rdb, keys...)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Book deleted"})
	}
}
