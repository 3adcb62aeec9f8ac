// Package metrics exposes Prometheus instruments for the HTTP surface and
// the generation workflow.
package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config labels every instrument with service identity.
type Config struct {
	ServiceName string
	Environment string
}

// HTTPMetrics tracks request volume and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Metrics exposes application-level instruments.
type Metrics struct {
	generations       *prometheus.CounterVec
	generationFailed  *prometheus.CounterVec
	quotaDenied       *prometheus.CounterVec
	likeToggles       prometheus.Counter
	rateLimitRejected prometheus.Counter
}

// NewHTTPMetrics registers the HTTP instruments on the default registerer.
func NewHTTPMetrics(cfg Config) (*HTTPMetrics, error) {
	constLabels := constLabels(cfg)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "inkwell_http_requests_total",
		Help:        "HTTP requests by route, method and status.",
		ConstLabels: constLabels,
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "inkwell_http_request_duration_seconds",
		Help:        "HTTP request latency; generation routes are dominated by the upstream model call.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		ConstLabels: constLabels,
	}, []string{"route", "method"})

	for _, c := range []prometheus.Collector{requests, duration} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// New registers the workflow instruments on the default registerer.
func New(cfg Config) (*Metrics, error) {
	constLabels := constLabels(cfg)

	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "inkwell_generations_total",
		Help:        "Successful generations by creation type.",
		ConstLabels: constLabels,
	}, []string{"type"})
	generationFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "inkwell_generation_failures_total",
		Help:        "Failed generations by creation type and stage.",
		ConstLabels: constLabels,
	}, []string{"type", "stage"})
	quotaDenied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "inkwell_quota_denied_total",
		Help:        "Requests rejected by the free-tier quota gate.",
		ConstLabels: constLabels,
	}, []string{"type"})
	likeToggles := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "inkwell_like_toggles_total",
		Help:        "Like toggle operations.",
		ConstLabels: constLabels,
	})
	rateLimitRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "inkwell_rate_limit_rejected_total",
		Help:        "Requests rejected by the per-user rate limiter.",
		ConstLabels: constLabels,
	})

	for _, c := range []prometheus.Collector{generations, generationFailed, quotaDenied, likeToggles, rateLimitRejected} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &Metrics{
		generations:       generations,
		generationFailed:  generationFailed,
		quotaDenied:       quotaDenied,
		likeToggles:       likeToggles,
		rateLimitRejected: rateLimitRejected,
	}, nil
}

func (m *Metrics) RecordGeneration(creationType string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(creationType).Inc()
}

func (m *Metrics) RecordGenerationFailure(creationType, stage string) {
	if m == nil {
		return
	}
	m.generationFailed.WithLabelValues(creationType, stage).Inc()
}

func (m *Metrics) RecordQuotaDenied(creationType string) {
	if m == nil {
		return
	}
	m.quotaDenied.WithLabelValues(creationType).Inc()
}

func (m *Metrics) RecordLikeToggle() {
	if m == nil {
		return
	}
	m.likeToggles.Inc()
}

func (m *Metrics) RecordRateLimitRejected() {
	if m == nil {
		return
	}
	m.rateLimitRejected.Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := statusClass(c.Writer.Status())

		h.requests.WithLabelValues(route, method, status).Inc()
		h.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "inkwell"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
