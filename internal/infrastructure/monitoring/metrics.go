package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
	"github.com/alchemorsel/nutrition/internal/ports/outbound"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const namespace = "nutrition"

// MetricsCollector handles Prometheus metrics collection on its own registry
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry
	meters   *sdkmetric.MeterProvider

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Engine metrics
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	analysesTotal     *prometheus.CounterVec
	cacheOperations   *prometheus.CounterVec
	rateLimited       prometheus.Counter

	// OpenTelemetry instruments exported through the same registry
	ingredientsPerAnalysis metric.Int64Histogram
	shoppingListItems      metric.Int64Histogram
}

var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) (*MetricsCollector, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of nutrition service operations",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation"},
		),
		operationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_errors_total",
				Help:      "Total number of failed nutrition service operations",
			},
			[]string{"operation"},
		),
		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dietary_analyses_total",
				Help:      "Dietary analyses by outcome",
			},
			[]string{"low_fodmap", "fermented", "has_nuts", "cached"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Total number of analysis cache lookups",
			},
			[]string{"status"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	m.meters = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := m.meters.Meter("github.com/alchemorsel/nutrition")

	m.ingredientsPerAnalysis, err = meter.Int64Histogram(
		"nutrition.analysis.ingredients",
		metric.WithDescription("Ingredient lines per dietary analysis"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 20, 50, 100),
	)
	if err != nil {
		return nil, err
	}
	m.shoppingListItems, err = meter.Int64Histogram(
		"nutrition.shopping_list.items",
		metric.WithDescription("Merged items per generated shopping list"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordHTTPRequest records a finished HTTP request
func (m *MetricsCollector) RecordHTTPRequest(method, path string, status int, size int, duration time.Duration) {
	statusCode := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
	if size > 0 {
		m.httpResponseSize.WithLabelValues(method, path).Observe(float64(size))
	}
}

// RateLimited counts a rejected request
func (m *MetricsCollector) RateLimited() {
	m.rateLimited.Inc()
}

// RecordOperation records the duration and outcome of a service operation
func (m *MetricsCollector) RecordOperation(operation string, duration time.Duration, err error) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.operationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAnalysis counts a dietary analysis by outcome
func (m *MetricsCollector) RecordAnalysis(ctx context.Context, ingredients int, result dietary.Result, cached bool) {
	m.analysesTotal.WithLabelValues(
		strconv.FormatBool(result.IsLowFodmap),
		strconv.FormatBool(result.IsFermented),
		strconv.FormatBool(result.HasNuts),
		strconv.FormatBool(cached),
	).Inc()
	m.ingredientsPerAnalysis.Record(ctx, int64(ingredients))
}

// RecordCacheLookup counts an analysis cache hit or miss
func (m *MetricsCollector) RecordCacheLookup(hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	m.cacheOperations.WithLabelValues(status).Inc()
}

// RecordShoppingList records the size of a generated shopping list
func (m *MetricsCollector) RecordShoppingList(ctx context.Context, items int) {
	m.shoppingListItems.Record(ctx, int64(items))
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Shutdown flushes the OpenTelemetry meter provider
func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	return m.meters.Shutdown(ctx)
}
