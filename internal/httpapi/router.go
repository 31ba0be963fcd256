// Package httpapi exposes the news and summarize services over HTTP with gin.
package httpapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-newsdesk/internal/apierr"
	"github.com/samvad-hq/samvad-newsdesk/internal/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Deps are the services behind the routes. Stats may be nil.
type Deps struct {
	News      NewsService
	Summarize Summarizer
	Stats     StatsFunc
}

// Options tunes middleware.
type Options struct {
	AllowedOrigins []string
	RateWindow     time.Duration
	RateMax        int
	MaxBodyBytes   int64
	// Now is used by the rate limiter; nil means time.Now.
	Now func() time.Time
}

// NewRouter builds the gin engine with every route and middleware installed.
func NewRouter(deps Deps, opts Options, log logger.Logger) *gin.Engine {
	log = logger.Ensure(log)
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	r := gin.New()
	r.Use(
		requestID(),
		accessLog(log),
		gin.CustomRecoveryWithWriter(io.Discard, recoverJSON(log)),
		cors(opts.AllowedOrigins),
	)

	h := &handlers{deps: deps, log: log}

	r.GET("/api/health", h.health)

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.health)
	v1.GET("/news", h.news)
	v1.GET("/stats", h.stats)

	limiter := NewRateLimiter(opts.RateMax, opts.RateWindow, opts.Now)
	v1.POST("/summarize", rateLimit(limiter), limitBody(opts.MaxBodyBytes), h.summarize)

	r.NoRoute(func(c *gin.Context) {
		writeError(c, log, apierr.NotFound())
	})

	return r
}

// writeError renders err as {"error","message"} and aborts the chain.
func writeError(c *gin.Context, log logger.Logger, err error) {
	e := apierr.From(err)
	if e.Status >= http.StatusInternalServerError {
		fields := map[string]any{
			"code":       e.Code,
			"status":     e.Status,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(requestIDKey),
		}
		if e.Err != nil {
			fields["error"] = e.Err.Error()
		}
		log.ErrorObj("request failed", "http_error", fields)
	}
	c.AbortWithStatusJSON(e.Status, apierr.BodyOf(e))
}
