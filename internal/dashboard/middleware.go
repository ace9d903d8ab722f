package dashboard

import (
	"log"
	"time"

	"github.com/ativarub/rollout/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs each request and records it in the HTTP metrics.
// Probe and scrape endpoints are metered but not logged.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		observability.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)

		switch c.Request.URL.Path {
		case "/healthz", "/metrics":
			return
		}
		log.Printf("dashboard: %s %s %d %s id=%s",
			c.Request.Method, c.Request.URL.Path, status, elapsed.Round(time.Microsecond), c.GetString(requestIDKey))
	}
}
