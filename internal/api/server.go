// Package api exposes impact analysis over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dusk-indust/scimpact/internal/impact"
	"github.com/dusk-indust/scimpact/internal/sparql"
)

// requestIDHeader carries the request ID in and out.
const requestIDHeader = "X-Request-ID"

// Analyzer is the use case the API serves.
type Analyzer interface {
	Analyze(ctx context.Context, supplierName string, limits impact.Limits) (*impact.Report, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	analyzer Analyzer
	logger   *zap.Logger
	gatherer prometheus.Gatherer
}

// NewServer creates a Server. gatherer may be nil to omit /metrics.
func NewServer(analyzer Analyzer, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{analyzer: analyzer, logger: logger, gatherer: gatherer}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/health", HealthCheck)
	r.POST("/impact", s.HandleImpact)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http api listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleImpact handles POST /impact.
//
// Responses:
//
//	200 OK: impact.Report (full or not-found shape)
//	400 Bad Request: malformed body or non-positive limits
//	502 Bad Gateway: the store rejected a query
//	503 Service Unavailable: the store is unreachable
//	504 Gateway Timeout: the store did not answer in time
func (s *Server) HandleImpact(c *gin.Context) {
	requestID := c.GetString(requestIDHeader)
	logger := s.logger.With(zap.String("request_id", requestID))

	var req ImpactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid request body: " + err.Error(),
			Code:      CodeInvalidRequest,
			RequestID: requestID,
		})
		return
	}

	limits := impact.Limits{
		Parts:    orDefault(req.TopKParts),
		Products: orDefault(req.TopKProducts),
		Regions:  orDefault(req.TopKRegions),
	}

	report, err := s.analyzer.Analyze(c.Request.Context(), req.SupplierName, limits)
	if err != nil {
		status, code := classify(err)
		logger.Error("impact analysis failed", zap.String("code", code), zap.Error(err))
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code, RequestID: requestID})
		return
	}
	c.JSON(http.StatusOK, report)
}

// classify maps an analysis error onto an HTTP status and error code,
// keeping "store unreachable" distinct from "store rejected query".
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, impact.ErrInvalidLimits):
		return http.StatusBadRequest, CodeInvalidRequest
	case sparql.IsTimeout(err):
		return http.StatusGatewayTimeout, CodeStoreTimeout
	case sparql.ReasonOf(err) == sparql.ReasonUnreachable:
		return http.StatusServiceUnavailable, CodeStoreUnreachable
	case sparql.ReasonOf(err) != "":
		return http.StatusBadGateway, CodeStoreRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, CodeCanceled
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func orDefault(v *int) int {
	if v == nil {
		return impact.DefaultTopK
	}
	return *v
}

// requestID propagates or assigns an X-Request-ID.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
