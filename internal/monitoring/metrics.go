package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics is a point-in-time snapshot of the request counters.
type Metrics struct {
	RequestCount   int64            `json:"request_count"`
	ActiveRequests int64            `json:"active_requests"`
	ErrorCount     int64            `json:"error_count"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoints"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
}

type metricsState struct {
	mu             sync.Mutex
	requestCount   int64
	activeRequests int64
	errorCount     int64
	statusCodes    map[string]int64
	endpoints      map[string]int64
	totalLatency   time.Duration
	startedAt      time.Time
}

var global = newMetricsState()

func newMetricsState() *metricsState {
	return &metricsState{
		statusCodes: make(map[string]int64),
		endpoints:   make(map[string]int64),
		startedAt:   time.Now(),
	}
}

func resetGlobalMetrics() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.requestCount = 0
	global.activeRequests = 0
	global.errorCount = 0
	global.statusCodes = make(map[string]int64)
	global.endpoints = make(map[string]int64)
	global.totalLatency = 0
	global.startedAt = time.Now()
}

// MetricsMiddleware counts requests, latencies and response classes per
// method+path.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		global.mu.Lock()
		global.activeRequests++
		global.mu.Unlock()

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)

		global.mu.Lock()
		global.activeRequests--
		global.requestCount++
		global.totalLatency += elapsed
		if status >= http.StatusInternalServerError {
			global.errorCount++
		}
		global.statusCodes[http.StatusText(status)]++
		global.endpoints[c.Request.Method+" "+c.FullPath()]++
		global.mu.Unlock()
	}
}

func GetMetrics() Metrics {
	global.mu.Lock()
	defer global.mu.Unlock()

	statusCodes := make(map[string]int64, len(global.statusCodes))
	for k, v := range global.statusCodes {
		statusCodes[k] = v
	}
	endpoints := make(map[string]int64, len(global.endpoints))
	for k, v := range global.endpoints {
		endpoints[k] = v
	}

	var avgLatency float64
	if global.requestCount > 0 {
		avgLatency = float64(global.totalLatency.Milliseconds()) / float64(global.requestCount)
	}

	return Metrics{
		RequestCount:   global.requestCount,
		ActiveRequests: global.activeRequests,
		ErrorCount:     global.errorCount,
		StatusCodes:    statusCodes,
		Endpoints:      endpoints,
		AvgLatencyMs:   avgLatency,
		UptimeSeconds:  time.Since(global.startedAt).Seconds(),
	}
}

func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, GetMetrics())
	}
}
