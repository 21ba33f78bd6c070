package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application's meters.
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	ChunksIngested     metric.Int64Counter
	DegradedSearches   metric.Int64Counter
	RoutingCorrections metric.Int64Counter
}

// NewMetrics creates the application meters.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("tutor-rag-platform")

	requestCounter, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, err
	}

	chunksIngested, err := meter.Int64Counter(
		"chunks_ingested_total",
		metric.WithDescription("Total document chunks written to the vector store"),
	)
	if err != nil {
		return nil, err
	}

	degradedSearches, err := meter.Int64Counter(
		"degraded_searches_total",
		metric.WithDescription("Retrievals that fell back to non-vector search"),
	)
	if err != nil {
		return nil, err
	}

	routingCorrections, err := meter.Int64Counter(
		"routing_corrections_total",
		metric.WithDescription("Chapter routing results corrected during validation"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		ChunksIngested:     chunksIngested,
		DegradedSearches:   degradedSearches,
		RoutingCorrections: routingCorrections,
	}, nil
}

// RecordRequest records an HTTP request with its outcome.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string, status int, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration, attrs)
}

// RecordChunksIngested records chunks written for a subject/class pair.
func (m *Metrics) RecordChunksIngested(ctx context.Context, subject string, classLevel, count int64) {
	m.ChunksIngested.Add(ctx, count, metric.WithAttributes(
		attribute.String("subject", subject),
		attribute.Int64("class_level", classLevel),
	))
}

// RecordDegradedSearch records a retrieval that used the fallback path.
func (m *Metrics) RecordDegradedSearch(ctx context.Context, reason string) {
	m.DegradedSearches.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordRoutingCorrection records a corrected routing decision.
func (m *Metrics) RecordRoutingCorrection(ctx context.Context, kind string) {
	m.RoutingCorrections.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
