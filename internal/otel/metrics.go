// Package otel provides OpenTelemetry metrics integration for the sysinfo plugin.
package otel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsConfig holds configuration for the OpenTelemetry metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active. Default: false (no-op).
	Enabled bool

	ServiceName    string
	ServiceVersion string
	ExporterType   ExporterType

	// OTLPEndpoint is the endpoint for OTLP exporters (e.g., "localhost:4317").
	OTLPEndpoint string
	OTLPInsecure bool

	// Attributes are additional attributes to add to all metrics.
	Attributes map[string]string
}

// DefaultMetricsConfig returns a default configuration with metrics disabled.
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:      false,
		ServiceName:  "sysinfo",
		ExporterType: ExporterNone,
	}
}

// Metrics wraps OpenTelemetry metrics functionality with plugin-specific helpers.
type Metrics struct {
	config        *MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	shutdown      func(context.Context) error
	mu            sync.RWMutex

	// swUptime is read by the observable gauge callback, in seconds.
	swUptime       atomic.Int64
	uptimeGauge    metric.Int64ObservableGauge
	uptimeGaugeReg metric.Registration

	statusLatency      metric.Float64Histogram
	wanLatency         metric.Float64Histogram
	reportsEmitted     metric.Int64Counter
	dispatchFailures   metric.Int64Counter
	metricsUnavailable metric.Int64Counter
}

var (
	globalMetrics   *Metrics
	globalMetricsMu sync.RWMutex
)

// NewMetrics creates a new Metrics instance with the given configuration.
func NewMetrics(ctx context.Context, cfg *MetricsConfig) (*Metrics, error) {
	if cfg == nil {
		cfg = DefaultMetricsConfig()
	}

	m := &Metrics{
		config: cfg,
	}

	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		m.meterProvider = sdkmetric.NewMeterProvider()
		m.meter = m.meterProvider.Meter(cfg.ServiceName)
		m.shutdown = func(context.Context) error { return nil }
		return m, nil
	}

	exporter, err := m.createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	m.meterProvider = mp
	m.meter = mp.Meter(cfg.ServiceName)
	m.shutdown = mp.Shutdown

	if err := m.registerInstruments(); err != nil {
		return nil, fmt.Errorf("failed to register metric instruments: %w", err)
	}

	return m, nil
}

// NewMetricsWithReader builds Metrics on a caller-supplied reader, so tests
// can collect what was recorded.
func NewMetricsWithReader(reader sdkmetric.Reader) (*Metrics, error) {
	cfg := DefaultMetricsConfig()
	cfg.Enabled = true
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := &Metrics{
		config:        cfg,
		meterProvider: mp,
		meter:         mp.Meter(cfg.ServiceName),
		shutdown:      mp.Shutdown,
	}
	if err := m.registerInstruments(); err != nil {
		return nil, fmt.Errorf("failed to register metric instruments: %w", err)
	}
	return m, nil
}

func (m *Metrics) createExporter(ctx context.Context, cfg *MetricsConfig) (sdkmetric.Exporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		return stdoutmetric.New()

	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)

	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.ExporterType)
	}
}

// newResource creates the OpenTelemetry resource shared by metrics and traces.
func newResource(serviceName, serviceVersion string, extra map[string]string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(serviceName),
	}

	if serviceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(serviceVersion))
	}

	for k, v := range extra {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", attrs...),
	)
}

func (m *Metrics) registerInstruments() error {
	var err error

	m.statusLatency, err = m.meter.Float64Histogram(
		"sysinfo.status.latency",
		metric.WithDescription("Time to sample and render a status report"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create status latency histogram: %w", err)
	}

	m.wanLatency, err = m.meter.Float64Histogram(
		"sysinfo.wan.latency",
		metric.WithDescription("Latency of WAN address lookups"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("failed to create WAN latency histogram: %w", err)
	}

	m.reportsEmitted, err = m.meter.Int64Counter(
		"sysinfo.reports.emitted",
		metric.WithDescription("Reports handed to the host by metric key"),
	)
	if err != nil {
		return fmt.Errorf("failed to create reports counter: %w", err)
	}

	m.dispatchFailures, err = m.meter.Int64Counter(
		"sysinfo.dispatch.failures",
		metric.WithDescription("Reports that could not be handed to the host"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dispatch failure counter: %w", err)
	}

	m.metricsUnavailable, err = m.meter.Int64Counter(
		"sysinfo.metrics.unavailable",
		metric.WithDescription("Metric reads that failed and were rendered as placeholders"),
	)
	if err != nil {
		return fmt.Errorf("failed to create unavailable metric counter: %w", err)
	}

	m.uptimeGauge, err = m.meter.Int64ObservableGauge(
		"sysinfo.uptime.software",
		metric.WithDescription("Seconds since the plugin was loaded"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	m.uptimeGaugeReg, err = m.meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(m.uptimeGauge, m.swUptime.Load())
			return nil
		},
		m.uptimeGauge,
	)
	if err != nil {
		return fmt.Errorf("failed to register uptime gauge callback: %w", err)
	}

	return nil
}

// RecordStatusLatency records how long a status computation took.
func (m *Metrics) RecordStatusLatency(ctx context.Context, latencyMs float64, unavailable int) {
	if m.statusLatency == nil {
		return
	}

	m.statusLatency.Record(ctx, latencyMs, metric.WithAttributes(
		attribute.Bool("complete", unavailable == 0),
	))
}

// RecordWANLatency records the latency of a WAN address lookup.
func (m *Metrics) RecordWANLatency(ctx context.Context, latencyMs float64, success bool) {
	if m.wanLatency == nil {
		return
	}

	m.wanLatency.Record(ctx, latencyMs, metric.WithAttributes(
		attribute.Bool("success", success),
	))
}

// RecordReport counts a report handed to the host.
func (m *Metrics) RecordReport(ctx context.Context, key string) {
	if m.reportsEmitted == nil {
		return
	}

	m.reportsEmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
	))
}

// RecordDispatchFailure counts a report the host never received.
func (m *Metrics) RecordDispatchFailure(ctx context.Context, key string) {
	if m.dispatchFailures == nil {
		return
	}

	m.dispatchFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key", key),
	))
}

// RecordUnavailable counts a metric read that failed.
func (m *Metrics) RecordUnavailable(ctx context.Context, metricName string) {
	if m.metricsUnavailable == nil {
		return
	}

	m.metricsUnavailable.Add(ctx, 1, metric.WithAttributes(
		attribute.String("metric", metricName),
	))
}

// SetSoftwareUptime updates the value reported by the uptime gauge.
func (m *Metrics) SetSoftwareUptime(seconds uint64) {
	m.swUptime.Store(int64(seconds))
}

// Shutdown gracefully shuts down the metrics provider, flushing any pending metrics.
func (m *Metrics) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.uptimeGaugeReg != nil {
		if err := m.uptimeGaugeReg.Unregister(); err != nil {
			return fmt.Errorf("failed to unregister uptime callback: %w", err)
		}
		m.uptimeGaugeReg = nil
	}

	if m.shutdown != nil {
		err := m.shutdown(ctx)
		m.shutdown = nil
		return err
	}
	return nil
}

// Enabled returns whether metrics collection is enabled.
func (m *Metrics) Enabled() bool {
	return m.config.Enabled && m.config.ExporterType != ExporterNone
}

// SetGlobalMetrics sets the global metrics instance.
func SetGlobalMetrics(m *Metrics) {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	globalMetrics = m

	if m != nil && m.Enabled() {
		otel.SetMeterProvider(m.meterProvider)
	}
}

// GetGlobalMetrics returns the global metrics instance.
// Returns a no-op metrics instance if none has been set.
func GetGlobalMetrics() *Metrics {
	globalMetricsMu.RLock()
	defer globalMetricsMu.RUnlock()

	if globalMetrics == nil {
		return NoopMetrics()
	}

	return globalMetrics
}

// NoopMetrics returns a metrics instance that does nothing (for testing or when disabled).
func NoopMetrics() *Metrics {
	cfg := DefaultMetricsConfig()
	mp := sdkmetric.NewMeterProvider()
	return &Metrics{
		config:        cfg,
		meterProvider: mp,
		meter:         mp.Meter(cfg.ServiceName),
		shutdown:      func(context.Context) error { return nil },
	}
}
