package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics records order placement outcomes and volume. Every sample goes
// to the OpenTelemetry meter and to a private Prometheus registry served on
// /metrics, so the numbers are available with or without a collector.
type OrderMetrics struct {
	registry *prometheus.Registry

	placements        *prometheus.CounterVec
	placementDuration *prometheus.HistogramVec
	unitsSold         prometheus.Counter

	otelPlacements metric.Int64Counter
	otelDuration   metric.Float64Histogram
	otelUnits      metric.Int64Counter
}

// NewOrderMetrics registers instruments on meter and a fresh Prometheus
// registry that also carries the Go runtime and process collectors.
func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	m := &OrderMetrics{
		registry: prometheus.NewRegistry(),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "order_placements_total",
			Help:      "Order placement attempts by outcome.",
		}, []string{"outcome"}),
		placementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopfront",
			Name:      "order_placement_duration_seconds",
			Help:      "Latency of order placement attempts.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"outcome"}),
		unitsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopfront",
			Name:      "order_units_sold_total",
			Help:      "Units moved by committed orders.",
		}),
	}

	m.registry.MustRegister(
		m.placements,
		m.placementDuration,
		m.unitsSold,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var err error
	if m.otelPlacements, err = meter.Int64Counter("order.placements",
		metric.WithDescription("Order placement attempts by outcome"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, fmt.Errorf("failed to create counter order.placements: %w", err)
	}
	if m.otelDuration, err = meter.Float64Histogram("order.placement.duration",
		metric.WithDescription("Latency of order placement attempts"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create histogram order.placement.duration: %w", err)
	}
	if m.otelUnits, err = meter.Int64Counter("order.units_sold",
		metric.WithDescription("Units moved by committed orders"),
		metric.WithUnit("{unit}")); err != nil {
		return nil, fmt.Errorf("failed to create counter order.units_sold: %w", err)
	}
	return m, nil
}

// RecordPlacement counts one placement attempt.
func (m *OrderMetrics) RecordPlacement(ctx context.Context, outcome string, duration time.Duration) {
	m.placements.WithLabelValues(outcome).Inc()
	m.placementDuration.WithLabelValues(outcome).Observe(duration.Seconds())

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.otelPlacements.Add(ctx, 1, attrs)
	m.otelDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOrderPlaced adds quantity to the units sold.
func (m *OrderMetrics) RecordOrderPlaced(ctx context.Context, quantity int) {
	m.unitsSold.Add(float64(quantity))
	m.otelUnits.Add(ctx, int64(quantity))
}

// Handler serves the Prometheus exposition format.
func (m *OrderMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registerer lets other collectors share the /metrics registry
func (m *OrderMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *OrderMetrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}
