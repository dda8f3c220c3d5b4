// Package observability wires OpenTelemetry metrics to a Prometheus
// exporter and defines the instruments recorded by the character pipeline
// and the conversation engine.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Metrics bundles the instruments used across the application.
type Metrics struct {
	provider *sdkmetric.MeterProvider

	CharacterCreations metric.Int64Counter
	ChatTurns          metric.Int64Counter
	PortraitFallbacks  metric.Int64Counter
	ProfileLatency     metric.Float64Histogram
	TurnLatency        metric.Float64Histogram
}

// New sets up a meter provider backed by the Prometheus exporter.
func New(serviceName string) (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	meter := provider.Meter(serviceName)

	m := &Metrics{provider: provider}

	if m.CharacterCreations, err = meter.Int64Counter("character_creations_total",
		metric.WithDescription("Completed character creation pipelines")); err != nil {
		return nil, err
	}
	if m.ChatTurns, err = meter.Int64Counter("chat_turns_total",
		metric.WithDescription("Completed conversation turns")); err != nil {
		return nil, err
	}
	if m.PortraitFallbacks, err = meter.Int64Counter("portrait_fallbacks_total",
		metric.WithDescription("Portrait syntheses that degraded to the placeholder")); err != nil {
		return nil, err
	}
	if m.ProfileLatency, err = meter.Float64Histogram("profile_synthesis_seconds",
		metric.WithDescription("Profile synthesis latency")); err != nil {
		return nil, err
	}
	if m.TurnLatency, err = meter.Float64Histogram("chat_turn_seconds",
		metric.WithDescription("Conversation turn latency")); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler exposes the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSince records a duration histogram sample in seconds.
func ObserveSince(ctx context.Context, hist metric.Float64Histogram, start time.Time) {
	if hist != nil {
		hist.Record(ctx, time.Since(start).Seconds())
	}
}

// Shutdown flushes the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
