package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"inflector/pkg/inflect"
)

// Source labels where an operation was requested from.
type Source string

const (
	SourceCLI  Source = "cli"
	SourceHTTP Source = "http"
)

const meterName = "inflector"

// InflectionMetrics records engine and request activity. It satisfies
// inflect.Observer so the engine can report cache hits and misses directly.
type InflectionMetrics struct {
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	operations      metric.Int64Counter
	requestDuration metric.Float64Histogram
	batchSize       metric.Int64Histogram
}

var _ inflect.Observer = (*InflectionMetrics)(nil)

// NewInflectionMetrics creates the instruments on the given provider.
func NewInflectionMetrics(provider metric.MeterProvider) (*InflectionMetrics, error) {
	meter := provider.Meter(meterName)

	cacheHits, err := meter.Int64Counter(
		"inflector.cache.hits",
		metric.WithDescription("Number of inflections served from the cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"inflector.cache.misses",
		metric.WithDescription("Number of inflections computed and stored"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	operations, err := meter.Int64Counter(
		"inflector.operations.total",
		metric.WithDescription("Total number of inflection operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"inflector.request.duration",
		metric.WithDescription("Duration of HTTP inflection requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	batchSize, err := meter.Int64Histogram(
		"inflector.batch.size",
		metric.WithDescription("Number of items in a batch request"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch size histogram: %w", err)
	}

	return &InflectionMetrics{
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		operations:      operations,
		requestDuration: requestDuration,
		batchSize:       batchSize,
	}, nil
}

// InitMetrics creates the instruments on the global meter provider.
func InitMetrics(logger *slog.Logger) (*InflectionMetrics, error) {
	metrics, err := NewInflectionMetrics(otel.GetMeterProvider())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inflection metrics: %w", err)
	}

	logger.Info("inflection metrics initialized")
	return metrics, nil
}

// CacheHit implements inflect.Observer.
func (m *InflectionMetrics) CacheHit(op inflect.Operation) {
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
	))
}

// CacheMiss implements inflect.Observer.
func (m *InflectionMetrics) CacheMiss(op inflect.Operation) {
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
	))
}

// RecordOperation counts one applied operation.
func (m *InflectionMetrics) RecordOperation(ctx context.Context, op inflect.Operation, source Source) {
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("source", string(source)),
	))
}

// RecordRequestDuration records an HTTP request's latency.
func (m *InflectionMetrics) RecordRequestDuration(ctx context.Context, route string, status int, duration time.Duration) {
	m.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}

// RecordBatchSize records how many items a batch request carried.
func (m *InflectionMetrics) RecordBatchSize(ctx context.Context, size int) {
	m.batchSize.Record(ctx, int64(size))
}
