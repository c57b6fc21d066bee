// Package httpapi wires the HTTP boundary (Gin) to the inbound event queue
// and the operational endpoints. The boundary is deliberately thin: the only
// business route is the webhook that receives transport events as JSON and
// feeds them to the dispatcher queue; everything else is observability.
package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/supperjio/jiobot/internal/config"
	"github.com/supperjio/jiobot/internal/httpapi/middleware"
	"github.com/supperjio/jiobot/internal/surface"
)

const webhookSecretHeader = "X-Webhook-Secret"

// RegisterRoutes attaches middleware and endpoints to the given Gin engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS
func RegisterRoutes(r *gin.Engine, cfg config.Config, events chan<- surface.Event) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", webhookSecretHeader},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", webhookSecretHeader},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "message": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"code": "method_not_allowed", "message": "method not allowed"})
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.POST("/webhook", webhookHandler(cfg.WebhookSecret, events))
}

// webhookHandler authenticates the transport bridge by shared secret and
// enqueues the event. A full queue answers 503 so the bridge retries with the
// same update id; the inbox dedup absorbs the redelivery.
func webhookHandler(secret string, events chan<- surface.Event) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			middleware.LoggerFrom(c).Warn().Msg("webhook post with bad secret")
			c.JSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "bad webhook secret"})
			return
		}

		var ev surface.Event
		if err := c.ShouldBindJSON(&ev); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "bad_request", "message": "malformed event"})
			return
		}

		select {
		case events <- ev:
			c.JSON(http.StatusOK, gin.H{"status": "queued"})
		default:
			middleware.LoggerFrom(c).Error().Int64("update_id", ev.UpdateID).Msg("event queue full")
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": "queue_full", "message": "event queue full"})
		}
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; reads past the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
