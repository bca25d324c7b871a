package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/release-radar/app/radar"
)

const SessionHeader = "X-Session-ID"

// NewServer creates a new HTTP server with all routes configured
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
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", SessionHeader}
	corsConfig.ExposeHeaders = []string{SessionHeader}
	r.Use(cors.New(corsConfig))

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/feed.xml", handler.GetFeed)

	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		slog.Info("API authentication enabled")
	} else {
		slog.Info("API authentication disabled (API key not set)")
	}
	{
		api.GET("/releases", sessionMiddleware(handler.sessions.Get), handler.ListReleases)
		api.POST("/releases/seen", sessionMiddleware(handler.sessions.Open), handler.MarkSeen)
		api.POST("/releases/load-more", sessionMiddleware(handler.sessions.Open), handler.LoadMore)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Release Radar",
			"description": "Release listing monitor with search links, seen markers and deep search",
			"endpoints": map[string]string{
				"releases":  "/api/releases?q=&page=&per_page=&unseen=",
				"seen":      "/api/releases/seen (POST)",
				"load_more": "/api/releases/load-more (POST)",
				"feed":      "/feed.xml",
				"health":    "/health",
				"stats":     "/stats",
				"metrics":   "/metrics",
			},
			"api_status": map[string]interface{}{
				"auth_required":  apiAccessKey != "",
				"header":         "X-API-Key",
				"session_header": SessionHeader,
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// sessionMiddleware resolves the caller's session from the session header
// with resolve and echoes its id back. Read routes pass a resolver that never
// creates sessions.
func sessionMiddleware(resolve func(id string) (*radar.Session, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolve(c.GetHeader(SessionHeader))
		if err != nil {
			slog.Error("Failed to resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
			return
		}

		c.Header(SessionHeader, sess.ID)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

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
