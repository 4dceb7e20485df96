package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for the UI
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	protected := r.Group("/")
	if apiAccessKey != "" {
		protected.Use(authMiddleware(apiAccessKey))
		slog.Info("API authentication enabled")
	} else {
		slog.Warn("API authentication disabled (API_ACCESS_KEY not set)")
	}

	schedule := protected.Group("/schedule")
	{
		schedule.GET("/config", handler.GetScheduleConfig)
		schedule.POST("/config", handler.SaveScheduleConfig)
		schedule.GET("/timezone", handler.GetTimezone)
		schedule.GET("/posted-ids", handler.GetPostedIDs)
		schedule.POST("/posted-ids/:id", handler.MarkPosted)
		schedule.DELETE("/posted-ids/:id", handler.UnmarkPosted)
		schedule.GET("/pending", handler.ListPending)
		schedule.POST("/pending/:id/approve", handler.ApprovePending)
		schedule.DELETE("/pending/:id", handler.RejectPending)
		schedule.GET("/history", handler.GetHistory)
		schedule.GET("/status", handler.GetStatus)
		schedule.POST("/run-now", handler.RunNow)
	}

	driveGroup := protected.Group("/drive")
	{
		driveGroup.GET("/photos", handler.ListDrivePhotos)
		driveGroup.GET("/folder", handler.GetDriveFolder)
		driveGroup.GET("/photo/:id/raw", handler.GetDrivePhotoRaw)
	}

	instagram := protected.Group("/instagram")
	{
		instagram.POST("/post", handler.ManualPost)
		instagram.POST("/queue", handler.ManualQueue)
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "AutoInstaPost",
			"description": "Scheduled Instagram publishing from a cloud photo folder",
			"endpoints": map[string]string{
				"health":  "/health",
				"config":  "/schedule/config",
				"status":  "/schedule/status",
				"pending": "/schedule/pending",
				"history": "/schedule/history",
				"photos":  "/drive/photos?folder_id=<id>",
				"post":    "/instagram/post (POST)",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
