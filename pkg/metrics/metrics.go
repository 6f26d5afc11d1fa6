// Package metrics keeps in-process request counters and serves them as JSON.
package metrics

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Registry holds request counters plus named gauges sampled on read.
// Safe for concurrent use.
type Registry struct {
	totalRequests  int64
	activeRequests int64
	totalErrors    int64
	totalLatencyMs int64
	maxLatencyMs   int64

	startTime time.Time
	now       func() time.Time

	mu                sync.Mutex
	endpointCounts    map[string]int64
	endpointLatencies map[string]int64
	statusCodes       map[int]int64
	gauges            map[string]func() int
}

func New() *Registry {
	r := &Registry{now: time.Now}
	r.Reset()
	return r
}

// Gauge registers a value read each time a snapshot is taken.
func (r *Registry) Gauge(name string, fn func() int) {
	r.mu.Lock()
	r.gauges[name] = fn
	r.mu.Unlock()
}

// Middleware tracks request count, latency, in-flight requests and error rates.
func (r *Registry) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&r.activeRequests, 1)
			start := r.now()

			err := next(c)
			// Let the error handler write the status before it is counted.
			if err != nil {
				c.Error(err)
			}

			latencyMs := r.now().Sub(start).Milliseconds()
			atomic.AddInt64(&r.activeRequests, -1)
			atomic.AddInt64(&r.totalRequests, 1)
			atomic.AddInt64(&r.totalLatencyMs, latencyMs)

			for {
				current := atomic.LoadInt64(&r.maxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&r.maxLatencyMs, current, latencyMs) {
					break
				}
			}

			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := c.Request().Method + " " + path

			r.mu.Lock()
			r.endpointCounts[endpoint]++
			r.endpointLatencies[endpoint] += latencyMs
			r.statusCodes[status]++
			r.mu.Unlock()

			if status >= http.StatusBadRequest {
				atomic.AddInt64(&r.totalErrors, 1)
			}

			return nil
		}
	}
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	Gauges         map[string]int   `json:"gauges,omitempty"`
}

func (r *Registry) Snapshot() Snapshot {
	total := atomic.LoadInt64(&r.totalRequests)
	errs := atomic.LoadInt64(&r.totalErrors)

	s := Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&r.activeRequests),
		TotalErrors:    errs,
		MaxLatencyMs:   atomic.LoadInt64(&r.maxLatencyMs),
	}
	if total > 0 {
		s.AvgLatencyMs = float64(atomic.LoadInt64(&r.totalLatencyMs)) / float64(total)
		s.ErrorRate = float64(errs) / float64(total) * 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s.UptimeSeconds = r.now().Sub(r.startTime).Seconds()
	s.EndpointCounts = make(map[string]int64, len(r.endpointCounts))
	s.EndpointAvgMs = make(map[string]int64, len(r.endpointCounts))
	for k, v := range r.endpointCounts {
		s.EndpointCounts[k] = v
		s.EndpointAvgMs[k] = r.endpointLatencies[k] / v
	}
	s.StatusCodes = make(map[int]int64, len(r.statusCodes))
	for k, v := range r.statusCodes {
		s.StatusCodes[k] = v
	}
	if len(r.gauges) > 0 {
		s.Gauges = make(map[string]int, len(r.gauges))
		for name, fn := range r.gauges {
			s.Gauges[name] = fn()
		}
	}
	return s
}

// Endpoints returns the tracked endpoints in sorted order.
func (s Snapshot) Endpoints() []string {
	out := make([]string, 0, len(s.EndpointCounts))
	for k := range s.EndpointCounts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Reset zeroes the counters. In-flight requests and gauges are kept.
func (r *Registry) Reset() {
	atomic.StoreInt64(&r.totalRequests, 0)
	atomic.StoreInt64(&r.totalErrors, 0)
	atomic.StoreInt64(&r.totalLatencyMs, 0)
	atomic.StoreInt64(&r.maxLatencyMs, 0)

	r.mu.Lock()
	r.endpointCounts = make(map[string]int64)
	r.endpointLatencies = make(map[string]int64)
	r.statusCodes = make(map[int]int64)
	if r.gauges == nil {
		r.gauges = make(map[string]func() int)
	}
	r.startTime = r.now()
	r.mu.Unlock()
}

// Register mounts GET /metrics/requests and POST /metrics/reset.
func (r *Registry) Register(e *echo.Echo) {
	e.GET("/metrics/requests", func(c echo.Context) error {
		return c.JSON(http.StatusOK, r.Snapshot())
	})
	e.POST("/metrics/reset", func(c echo.Context) error {
		r.Reset()
		return c.JSON(http.StatusOK, map[string]string{"status": "metrics_reset"})
	})
}
