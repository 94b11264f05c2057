package api

import (
	"net/http" // HTTP status codes

	"book_review_api/internal/config"     // Application configuration
	"book_review_api/internal/middleware" // Custom middleware

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus metrics handler
	"github.com/redis/go-redis/v9"                            // Redis client
	"gorm.io/gorm"                                            // GORM ORM library
)

// NewRouter wires the full resource surface onto a gin engine. All
// dependencies come in explicitly; there is no global state.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.New()                          // Gin router instance
	r.Use(gin.Recovery())                   // Recover from handler panics
	r.Use(middleware.MetricsMiddleware())   // Record request metrics

	// Operational endpoints
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"}) // Liveness probe
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus scrape endpoint

	// Public auth endpoints, rate limited per client IP
	authLimit := middleware.RateLimitMiddleware(cfg.AuthRateLimit, cfg.AuthRateBurst)
	r.POST("/register", authLimit, RegisterHandler(db, cfg))        // Registration endpoint
	r.POST("/token", authLimit, TokenHandler(db, cfg.JWTSecret))    // Token pair issuance
	r.POST("/token/refresh", TokenRefreshHandler(cfg.JWTSecret))    // Access token refresh

	// Authenticated credential rotation
	r.POST("/change-password", middleware.JWTAuthMiddleware(cfg.JWTSecret), ChangePasswordHandler(db, cfg))

	// Catalog reads, open to everyone
	r.GET("/books", ListBooksHandler(db, rdb))    // List catalog
	r.GET("/books/:id", GetBookHandler(db, rdb))  // Retrieve one book

	// Catalog writes, admin only
	bookAdmin := r.Group("/books")
	bookAdmin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db, cfg.AdminRole))
	bookAdmin.POST("", CreateBookHandler(db, rdb))        // Create book
	bookAdmin.PUT("/:id", UpdateBookHandler(db, rdb))     // Replace mutable fields
	bookAdmin.PATCH("/:id", UpdateBookHandler(db, rdb))   // Partial update
	bookAdmin.DELETE("/:id", DeleteBookHandler(db, rdb))  // Delete book, cascading reviews

	// Review listing is public; creation requires authentication
	r.GET("/books/:id/reviews", ListBookReviewsHandler(db, rdb))
	r.POST("/books/:id/reviews", middleware.JWTAuthMiddleware(cfg.JWTSecret), CreateReviewHandler(db, rdb))

	// Review detail: read public, mutations owner-only
	r.GET("/reviews/:id", GetReviewHandler(db, rdb))
	reviewAuth := r.Group("/reviews")
	reviewAuth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	reviewAuth.PUT("/:id", UpdateReviewHandler(db, rdb))     // Replace mutable fields
	reviewAuth.PATCH("/:id", UpdateReviewHandler(db, rdb))   // Partial update
	reviewAuth.DELETE("/:id", DeleteReviewHandler(db, rdb))  // Delete review

	return r
}
