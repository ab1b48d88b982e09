package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Config controls which middleware Setup installs
type Config struct {
	ServiceName     string
	Logger          *slog.Logger
	EnableCORS      bool
	AllowedOrigins  []string
	LogExcludePaths []string
}

// DefaultConfig returns the standard middleware configuration
func DefaultConfig(serviceName string, logger *slog.Logger) *Config {
	return &Config{
		ServiceName:     serviceName,
		Logger:          logger,
		EnableCORS:      true,
		AllowedOrigins:  []string{"*"},
		LogExcludePaths: []string{"/health", "/ready", "/metrics"},
	}
}

// Setup installs the standard middleware chain on a router
func Setup(router *gin.Engine, config *Config) {
	router.Use(Recovery(config.Logger))
	router.Use(RequestID())
	router.Use(CorrelationID())
	router.Use(Logger(&LoggerConfig{
		Logger:       config.Logger,
		ExcludePaths: config.LogExcludePaths,
	}))
	if config.EnableCORS {
		router.Use(CORS(config.AllowedOrigins))
	}
	router.Use(ContentType())
	router.Use(ErrorHandler(config.Logger))

	router.NoRoute(NoRoute())
	router.NoMethod(NoMethod())
}

// CORS handles cross-origin requests
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+HeaderRequestID+", "+HeaderCorrelationID)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ContentType rejects write requests that are not JSON
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength > 0 {
				ct := c.ContentType()
				if ct != "application/json" {
					c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
						"code":    "UNSUPPORTED_MEDIA_TYPE",
						"message": "content type must be application/json",
					})
					return
				}
			}
		}
		c.Next()
	}
}

// NoRoute handles unmatched routes
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "route not found",
			"path":    c.Request.URL.Path,
		})
	}
}

// NoMethod handles unsupported methods on matched routes
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"code":    "METHOD_NOT_ALLOWED",
			"message": "method not allowed",
			"path":    c.Request.URL.Path,
		})
	}
}
