package otel

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDefaultMetricsConfig(t *testing.T) {
	cfg := DefaultMetricsConfig()
	if cfg.Enabled {
		t.Error("Expected metrics to be disabled by default")
	}
	if cfg.ServiceName != "sysinfo" {
		t.Errorf("Expected service name 'sysinfo', got %q", cfg.ServiceName)
	}
	if cfg.ExporterType != ExporterNone {
		t.Errorf("Expected ExporterNone, got %v", cfg.ExporterType)
	}
}

func TestNewMetrics_Disabled(t *testing.T) {
	ctx := context.Background()

	m, err := NewMetrics(ctx, DefaultMetricsConfig())
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	defer m.Shutdown(ctx)

	if m.Enabled() {
		t.Error("Expected metrics to be disabled")
	}

	// Recording on a disabled instance must be safe.
	m.RecordReport(ctx, "uptime")
	m.RecordDispatchFailure(ctx, "uptime")
	m.RecordStatusLatency(ctx, 12, 0)
}

func TestNewMetrics_StdoutExporter(t *testing.T) {
	ctx := context.Background()

	m, err := NewMetrics(ctx, &MetricsConfig{
		Enabled:      true,
		ServiceName:  "test-service",
		ExporterType: ExporterStdout,
	})
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	defer m.Shutdown(ctx)

	if !m.Enabled() {
		t.Error("Expected metrics to be enabled")
	}
}

func TestMetricsCountersAccumulate(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()

	m, err := NewMetricsWithReader(reader)
	if err != nil {
		t.Fatalf("NewMetricsWithReader failed: %v", err)
	}
	defer m.Shutdown(ctx)

	m.RecordReport(ctx, "uptime")
	m.RecordReport(ctx, "hostname")
	m.RecordReport(ctx, "status")
	m.RecordDispatchFailure(ctx, "os")
	m.RecordUnavailable(ctx, "wan_ip")
	m.RecordUnavailable(ctx, "kernel_version")
	m.RecordStatusLatency(ctx, 42.5, 2)
	m.RecordWANLatency(ctx, 120, false)

	got := collect(t, reader)

	if n := sumOf(t, got["sysinfo.reports.emitted"]); n != 3 {
		t.Errorf("expected 3 reports, got %d", n)
	}
	if n := sumOf(t, got["sysinfo.dispatch.failures"]); n != 1 {
		t.Errorf("expected 1 dispatch failure, got %d", n)
	}
	if n := sumOf(t, got["sysinfo.metrics.unavailable"]); n != 2 {
		t.Errorf("expected 2 unavailable metrics, got %d", n)
	}
	if _, ok := got["sysinfo.status.latency"]; !ok {
		t.Error("expected status latency histogram")
	}
	if _, ok := got["sysinfo.wan.latency"]; !ok {
		t.Error("expected WAN latency histogram")
	}
}

func TestSoftwareUptimeGauge(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()

	m, err := NewMetricsWithReader(reader)
	if err != nil {
		t.Fatalf("NewMetricsWithReader failed: %v", err)
	}
	defer m.Shutdown(ctx)

	m.SetSoftwareUptime(90)

	got := collect(t, reader)
	gauge, ok := got["sysinfo.uptime.software"].Data.(metricdata.Gauge[int64])
	if !ok {
		t.Fatalf("expected Gauge[int64], got %T", got["sysinfo.uptime.software"].Data)
	}
	if len(gauge.DataPoints) != 1 || gauge.DataPoints[0].Value != 90 {
		t.Errorf("expected a single data point of 90, got %+v", gauge.DataPoints)
	}
}

func TestGlobalMetrics(t *testing.T) {
	if GetGlobalMetrics() == nil {
		t.Fatal("expected non-nil default global metrics")
	}
	if GetGlobalMetrics().Enabled() {
		t.Error("expected default global metrics to be disabled")
	}

	m := NoopMetrics()
	SetGlobalMetrics(m)
	defer SetGlobalMetrics(nil)

	if GetGlobalMetrics() != m {
		t.Error("expected the metrics instance that was set")
	}
}
