package middleware

import (
	"strconv" // Status code formatting
	"time"    // Request timing

	"github.com/gin-gonic/gin"                              // Gin web framework
	"github.com/prometheus/client_golang/prometheus"        // Prometheus metric types
	"github.com/prometheus/client_golang/prometheus/promauto" // Auto-registered metrics
)

var (
	// httpRequestsTotal counts requests by method, route and status
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	// httpRequestDuration observes request latency by method and route
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// MetricsMiddleware records request counts and latency per route
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now() // Start timing
		c.Next()            // Run the handler chain
		route := c.FullPath()
		// Fall back to the raw path for unmatched routes
		if route == "" {
			route = c.Request.URL.Path
		}
		status := strconv.Itoa(c.Writer.Status())                                               // Response status
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()                // Count the request
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds()) // Record latency
	}
}
