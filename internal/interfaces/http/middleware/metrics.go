package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that hit no route, keeping cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPMetrics counts requests and observes latency per method, route and
// status. Samples go to the Prometheus registerer and, when meter is not
// nil, to the OpenTelemetry meter.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge

	otelRequests metric.Int64Counter
	otelDuration metric.Float64Histogram
}

// NewHTTPMetrics registers the HTTP collectors on reg
func NewHTTPMetrics(reg prometheus.Registerer, meter metric.Meter) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopfront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shopfront",
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}

	if meter != nil {
		if m.otelRequests, err = meter.Int64Counter("http.server.requests",
			metric.WithDescription("HTTP requests"),
			metric.WithUnit("{request}")); err != nil {
			return nil, err
		}
		if m.otelDuration, err = meter.Float64Histogram("http.server.duration",
			metric.WithDescription("HTTP request latency"),
			metric.WithUnit("s")); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register adopts an identical collector that is already registered
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, err
}

// Middleware records every request that passes through it
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.inFlight.Inc()

		c.Next()

		m.inFlight.Dec()
		elapsed := time.Since(start).Seconds()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(method, route, status).Inc()
		m.duration.WithLabelValues(method, route).Observe(elapsed)

		if m.otelRequests != nil {
			ctx := c.Request.Context()
			attrs := metric.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", route),
				attribute.String("http.status_code", status),
			)
			m.otelRequests.Add(ctx, 1, attrs)
			m.otelDuration.Record(ctx, elapsed, attrs)
		}
	}
}
