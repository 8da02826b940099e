// Package httpapi exposes the calendar engine as a JSON HTTP surface.
//
// Routes:
//
//	GET /api/v1/calendar/day?date=YYYY-MM-DD[&lat=..&lon=..]
//	GET /api/v1/calendar/range?start=YYYY-MM-DD&end=YYYY-MM-DD[&lat=..&lon=..]
//	GET /healthz
//	GET /metrics
//
// Responses are exactly the engine's stable record shapes; errors are
// rendered as {"error": {"kind": ..., "message": ...}}.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/toki-jp/toki"
)

// Server wires the calendar into gin handlers.
type Server struct {
	cal *toki.Calendar
	log *zap.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a Server around a configured calendar. Each server carries
// its own metrics registry, so tests can build several without colliding.
func New(cal *toki.Calendar, log *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Server{
		cal:      cal,
		log:      log,
		registry: registry,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toki",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toki",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Router builds the gin engine with logging, request IDs, and metrics.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.observe)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.GET("/calendar/day", s.handleDay)
	v1.GET("/calendar/range", s.handleRange)
	return r
}

// observe is the request middleware: uuid request IDs, zap access logs,
// prometheus counters.
func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	c.Set("request_id", requestID)

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	status := c.Writer.Status()
	elapsed := time.Since(start)

	s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	s.latency.WithLabelValues(route).Observe(elapsed.Seconds())
	s.log.Info("request",
		zap.String("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("route", route),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
}

// observerFor applies optional lat/lon query overrides.
func (s *Server) observerFor(c *gin.Context) (*toki.Calendar, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return s.cal, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("%w: lat and lon must be provided together", toki.ErrInvalidInput)
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat must be a number", toki.ErrInvalidInput)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lon must be a number", toki.ErrInvalidInput)
	}
	return s.cal.Observer(lat, lon), nil
}

func (s *Server) handleDay(c *gin.Context) {
	d, err := toki.ParseCivilDate(c.Query("date"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	cal, err := s.observerFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	rec, err := cal.Day(c.Request.Context(), d)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleRange(c *gin.Context) {
	start, err := toki.ParseCivilDate(c.Query("start"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	end, err := toki.ParseCivilDate(c.Query("end"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	cal, err := s.observerFor(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	rec, err := cal.Range(c.Request.Context(), start, end)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// renderError maps engine error kinds onto HTTP statuses.
func (s *Server) renderError(c *gin.Context, err error) {
	kind, status := "internal", http.StatusInternalServerError
	switch {
	case errors.Is(err, toki.ErrInvalidInput):
		kind, status = "invalid_input", http.StatusBadRequest
	case errors.Is(err, toki.ErrOutOfEphemerisRange):
		kind, status = "out_of_ephemeris_range", http.StatusUnprocessableEntity
	case errors.Is(err, toki.ErrEphemerisUnavailable):
		kind, status = "ephemeris_unavailable", http.StatusServiceUnavailable
	case errors.Is(err, toki.ErrRootFindFailed):
		kind = "root_find_failed"
	case errors.Is(err, toki.ErrLunisolarResolutionFailed):
		kind = "lunisolar_resolution_failed"
	case c.Request.Context().Err() != nil:
		kind, status = "canceled", http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("kind", kind), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": gin.H{"kind": kind, "message": err.Error()}})
}
