// Package api exposes the daemon's own status over HTTP so operators
// can inspect the latest verdicts without reading logs.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentonrails/newsmon/internal/monitor"
)

// NewRouter builds the status router around a running Monitor. When
// apiKey is non-empty the status route requires it; /healthz stays
// open for load balancers.
func NewRouter(mon *monitor.Monitor, apiKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	statusGroup := r.Group("/api/v1")
	if apiKey != "" {
		statusGroup.Use(APIKeyMiddleware(apiKey))
	}
	statusGroup.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"services": mon.Verdicts()})
	})

	return r
}
