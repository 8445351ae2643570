package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "well-data-refine"
	ServiceVersion = "v1.0.0"
	MeterName      = "well-data-refine"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0, // Sample all traces in development
	}
}

// InitializeOTel initializes OpenTelemetry tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialization complete",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))

	return nil
}

// initializeMetrics sets up OpenTelemetry metrics
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "prometheus":
		exporter, err := prometheus.New()
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		providers.PrometheusHTTP = promhttp.Handler()

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		providers.MeterProvider = mp
		providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

		otel.SetMeterProvider(mp)

	case "none":
		return nil
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	providers.Logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))

	return nil
}

// PipelineMetrics holds all application-specific metrics
type PipelineMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Ingestion metrics
	DatasetsIngestedTotal metric.Int64Counter
	RecordsIngestedTotal  metric.Int64Counter
	RowsDroppedTotal      metric.Int64Counter
	FallbackActivations   metric.Int64Counter
	IngestDuration        metric.Float64Histogram

	// Recompute metrics
	RecomputesTotal   metric.Int64Counter
	RecomputeDuration metric.Float64Histogram
	RecomputeErrors   metric.Int64Counter
	DecimationPoints  metric.Int64Counter
	CacheHitsTotal    metric.Int64Counter
	CacheMissesTotal  metric.Int64Counter

	// Export metrics
	ExportsTotal     metric.Int64Counter
	ExportBytesTotal metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreatePipelineMetrics creates application-specific metrics
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	datasetsIngestedTotal, err := meter.Int64Counter(
		"datasets_ingested_total",
		metric.WithDescription("Total number of datasets loaded"),
	)
	if err != nil {
		return nil, err
	}

	recordsIngestedTotal, err := meter.Int64Counter(
		"records_ingested_total",
		metric.WithDescription("Total number of canonical drilling records produced"),
	)
	if err != nil {
		return nil, err
	}

	rowsDroppedTotal, err := meter.Int64Counter(
		"rows_dropped_total",
		metric.WithDescription("Total number of raw rows dropped during normalization"),
	)
	if err != nil {
		return nil, err
	}

	fallbackActivations, err := meter.Int64Counter(
		"fallback_activations_total",
		metric.WithDescription("Total number of times the synthetic fallback dataset was activated"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest_duration_seconds",
		metric.WithDescription("Dataset ingestion duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recomputesTotal, err := meter.Int64Counter(
		"recomputes_total",
		metric.WithDescription("Total number of quality and decimation recomputes"),
	)
	if err != nil {
		return nil, err
	}

	recomputeDuration, err := meter.Float64Histogram(
		"recompute_duration_seconds",
		metric.WithDescription("Recompute duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recomputeErrors, err := meter.Int64Counter(
		"recompute_errors_total",
		metric.WithDescription("Total number of recompute errors"),
	)
	if err != nil {
		return nil, err
	}

	decimationPoints, err := meter.Int64Counter(
		"decimation_points_total",
		metric.WithDescription("Total number of decimated points produced"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitsTotal, err := meter.Int64Counter(
		"decimation_cache_hits_total",
		metric.WithDescription("Total number of decimation cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissesTotal, err := meter.Int64Counter(
		"decimation_cache_misses_total",
		metric.WithDescription("Total number of decimation cache misses"),
	)
	if err != nil {
		return nil, err
	}

	exportsTotal, err := meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of CSV exports"),
	)
	if err != nil {
		return nil, err
	}

	exportBytesTotal, err := meter.Int64Counter(
		"export_bytes_total",
		metric.WithDescription("Total bytes of exported CSV data"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of system errors"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,

		DatasetsIngestedTotal: datasetsIngestedTotal,
		RecordsIngestedTotal:  recordsIngestedTotal,
		RowsDroppedTotal:      rowsDroppedTotal,
		FallbackActivations:   fallbackActivations,
		IngestDuration:        ingestDuration,

		RecomputesTotal:   recomputesTotal,
		RecomputeDuration: recomputeDuration,
		RecomputeErrors:   recomputeErrors,
		DecimationPoints:  decimationPoints,
		CacheHitsTotal:    cacheHitsTotal,
		CacheMissesTotal:  cacheMissesTotal,

		ExportsTotal:     exportsTotal,
		ExportBytesTotal: exportBytesTotal,

		SystemErrors: systemErrors,
	}, nil
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// RecordIngestMetrics records metrics for a dataset load
func RecordIngestMetrics(ctx context.Context, metrics *PipelineMetrics, format string, records, dropped int, fallback bool, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("format", format),
		attribute.Bool("fallback", fallback),
	}

	metrics.DatasetsIngestedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RecordsIngestedTotal.Add(ctx, int64(records), metric.WithAttributes(attrs...))
	metrics.RowsDroppedTotal.Add(ctx, int64(dropped), metric.WithAttributes(attrs...))
	metrics.IngestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if fallback {
		metrics.FallbackActivations.Add(ctx, 1)
	}
}

// RecordRecomputeMetrics records metrics for a quality/decimation recompute
func RecordRecomputeMetrics(ctx context.Context, metrics *PipelineMetrics, strategy string, points int, cacheHit bool, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("strategy", strategy),
	}

	metrics.RecomputesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RecomputeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	metrics.DecimationPoints.Add(ctx, int64(points), metric.WithAttributes(attrs...))

	if cacheHit {
		metrics.CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		metrics.CacheMissesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	if err != nil {
		errorAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
		metrics.RecomputeErrors.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
	}
}

// RecordExportMetrics records metrics for a CSV export
func RecordExportMetrics(ctx context.Context, metrics *PipelineMetrics, bytes int) {
	if metrics == nil {
		return
	}

	metrics.ExportsTotal.Add(ctx, 1)
	metrics.ExportBytesTotal.Add(ctx, int64(bytes))
}
