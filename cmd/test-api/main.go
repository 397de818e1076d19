package main

import (
	"flag"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Local stand-in for the newsletter API's monitoring endpoints, for
// developing against the rest adapter without a deployed system.
var requestCounter uint64

func main() {
	listen := flag.String("listen", ":8081", "Listen address")
	flag.Parse()

	r := gin.Default()
	r.Use(func(c *gin.Context) {
		count := atomic.AddUint64(&requestCounter, 1)
		log.Info().Uint64("request", count).Str("path", c.Request.URL.Path).
			Str("user_agent", c.Request.UserAgent()).Msg("Request received")
		c.Next()
	})

	r.GET("/api/v1/monitoring/worker/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"recent_runs":  4,
			"success_rate": 100.0,
			"last_run":     time.Now().UTC().Add(-20 * time.Minute).Format(time.RFC3339),
			"issues":       []string{},
		})
	})

	r.GET("/api/v1/monitoring/publisher/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":             "healthy",
			"recent_newsletters": 1,
			"last_generation":    time.Now().UTC().Add(-3 * time.Hour).Format(time.RFC3339),
			"issues":             []string{},
		})
	})

	r.GET("/api/v1/monitoring/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"components": gin.H{"worker": "healthy", "publisher": "healthy"},
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.POST("/api/v1/monitoring/update", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "recorded"})
	})
	r.POST("/api/v1/monitoring/heartbeat", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "recorded"})
	})

	log.Info().Str("listen", *listen).Msg("Stub newsletter API starting")
	if err := r.Run(*listen); err != nil {
		log.Fatal().Err(err).Msg("Stub newsletter API stopped")
	}
}
