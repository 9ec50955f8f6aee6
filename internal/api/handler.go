package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"CryptoPulse/internal/analysis"
	"CryptoPulse/internal/logger"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/ratelimit"
)

// Analyzer runs one analysis pass.
type Analyzer interface {
	Run(ctx context.Context) (*analysis.Report, error)
}

// Options configures the handler.
type Options struct {
	AnalysisTimeout time.Duration
	// DebugErrors adds the underlying error text to 500 responses.
	DebugErrors bool
	// Providers is reported by the health endpoint.
	Providers []string
}

// Handler serves the analysis endpoints.
type Handler struct {
	analyzer Analyzer
	limiter  ratelimit.Limiter
	opts     Options
	now      func() time.Time
}

// NewHandler creates a new Handler. A nil limiter disables rate limiting.
func NewHandler(analyzer Analyzer, limiter ratelimit.Limiter, opts Options) *Handler {
	if limiter == nil {
		limiter = ratelimit.NoopLimiter{}
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 60 * time.Second
	}
	return &Handler{analyzer: analyzer, limiter: limiter, opts: opts, now: time.Now}
}

// NewRouter builds the gin engine with every route and middleware mounted.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), cors())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/analyze", h.Analyze)
		api.POST("/analyze", h.Analyze)
		api.GET("/search-trades", h.Analyze)
		api.POST("/search-trades", h.Analyze)
	}
	return r
}

// Health reports liveness and the configured providers.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthEnvelope{
		Status:    "ok",
		Message:   "API is running",
		Timestamp: timestamp(h.now()),
		Providers: h.opts.Providers,
	})
}

// Analyze checks the client's rate limit, runs an analysis and writes the
// ranked results.
func (h *Handler) Analyze(c *gin.Context) {
	client := ClientID(c.Request)
	reqID := c.GetString(requestIDKey)

	decision, err := h.limiter.Check(c.Request.Context(), client)
	if err != nil {
		logger.Warn("rate limiter unavailable, allowing request",
			zap.String(requestIDKey, reqID), zap.String("client", client), zap.Error(err))
		decision = ratelimit.Decision{Allowed: true}
	}
	if !decision.Allowed {
		h.rateLimited(c, decision.RetryAfter)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.AnalysisTimeout)
	defer cancel()

	report, err := h.analyzer.Run(ctx)
	if err != nil {
		h.fail(c, reqID, client, err)
		return
	}

	results := report.Results
	if results == nil {
		results = []model.RankedResult{}
	}
	c.JSON(http.StatusOK, successEnvelope{
		Success:       true,
		Results:       results,
		TotalAnalyzed: report.TotalAnalyzed,
		Timestamp:     timestamp(report.GeneratedAt),
		Message:       fmt.Sprintf("Analysis complete: %d signals from %d coins", len(results), report.TotalAnalyzed),
		DataSource:    report.DataSource,
	})
}

func (h *Handler) rateLimited(c *gin.Context, retryAfter time.Duration) {
	minutes := remainingMinutes(retryAfter)
	c.Header("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))
	c.JSON(http.StatusTooManyRequests, rateLimitEnvelope{
		Success:       false,
		Error:         "Rate limit exceeded",
		Message:       fmt.Sprintf("Please wait %d minute(s) before requesting a new analysis", minutes),
		RemainingTime: minutes,
		Timestamp:     timestamp(h.now()),
	})
}

func (h *Handler) fail(c *gin.Context, reqID, client string, err error) {
	logger.Error("analysis failed",
		zap.String(requestIDKey, reqID), zap.String("client", client), zap.Error(err))

	msg := "Internal server error"
	switch {
	case errors.Is(err, analysis.ErrNoMarketData):
		msg = "Market data is unavailable from every source"
	case errors.Is(err, context.DeadlineExceeded):
		msg = "Analysis timed out"
	case errors.Is(err, context.Canceled):
		msg = "Analysis cancelled"
	}

	env := errorEnvelope{Success: false, Error: msg, Timestamp: timestamp(h.now())}
	if h.opts.DebugErrors {
		env.Detail = err.Error()
	}
	c.JSON(http.StatusInternalServerError, env)
}
