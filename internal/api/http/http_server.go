package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/olyamironova/mev-matcher/internal/api/dto"
	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"github.com/olyamironova/mev-matcher/internal/metrics"
	"github.com/olyamironova/mev-matcher/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const maxDepth = 1000

type HTTPServer struct {
	Eng       *core.Engine
	log       *zap.Logger
	metrics   *metrics.Metrics
	rateLimit time.Duration
}

type Option func(*HTTPServer)

func WithLogger(l *zap.Logger) Option      { return func(s *HTTPServer) { s.log = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *HTTPServer) { s.metrics = m } }

// WithRateLimit limits order submission per client. Zero disables it.
func WithRateLimit(d time.Duration) Option { return func(s *HTTPServer) { s.rateLimit = d } }

func NewHTTPServer(eng *core.Engine, opts ...Option) *HTTPServer {
	s := &HTTPServer{Eng: eng, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine. Panics inside handlers are logged and
// answered with 500.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(s.log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(s.log, true))

	r.GET("/", s.root)
	r.GET("/healthz", s.healthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	submit := []gin.HandlerFunc{s.submitOrder}
	if s.rateLimit > 0 {
		rl := middleware.NewRateLimiter(s.rateLimit)
		submit = append([]gin.HandlerFunc{rl.Middleware()}, submit...)
	}
	r.POST("/orders", submit...)
	r.GET("/orders/:id", s.getOrder)
	r.GET("/orders/:id/trades", s.getTrades)
	r.GET("/orderbook", s.getOrderbook)
	return r
}

func (s *HTTPServer) root(c *gin.Context) {
	c.String(http.StatusOK, "matcher %s is running", s.Eng.Symbol())
}

func (s *HTTPServer) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.ClientID == "" {
		req.ClientID = c.GetHeader(middleware.ClientIDHeader)
	}

	res, err := s.Eng.Submit(c.Request.Context(), req.ToDomain())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromSubmitResult(res))
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, err := s.Eng.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: dto.FromOrder(o)})
}

func (s *HTTPServer) getTrades(c *gin.Context) {
	id := c.Param("id")
	trades, err := s.Eng.GetTradesForOrder(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetTradesResponse{OrderID: id, Trades: dto.FromTrades(trades)})
}

func (s *HTTPServer) getOrderbook(c *gin.Context) {
	depth := 0
	if v := c.Query("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxDepth {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "depth must be an integer between 0 and 1000", Field: "depth"})
			return
		}
		depth = n
	}
	c.JSON(http.StatusOK, dto.FromSnapshot(s.Eng.Orderbook(depth)))
}

func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Field: ve.Field})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrEngineClosed):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
