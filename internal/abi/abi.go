// Package abi is the boundary between a host process and the sysinfo plugin.
// The host creates a Handle with an outbound channel, drives it through
// Name, Status and Action, and releases it with Unload.
package abi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bc-dunia/sysinfo/internal/config"
	"github.com/bc-dunia/sysinfo/internal/events"
	"github.com/bc-dunia/sysinfo/internal/otel"
	"github.com/bc-dunia/sysinfo/internal/plugin"
)

const unloadTimeout = 5 * time.Second

// Handle owns one plugin instance.
type Handle struct {
	mu     sync.Mutex
	p      *plugin.Plugin
	id     string
	logger *events.EventLogger
	global bool
}

// Option configures Create.
type Option func(*settings)

type settings struct {
	cfg        *config.Config
	configPath string
	instanceID string
	logger     *events.EventLogger
	global     bool
	pluginOpts []plugin.Option
}

// WithConfig uses cfg as is, skipping file and environment loading.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithConfigPath loads configuration from a YAML file.
func WithConfigPath(path string) Option {
	return func(s *settings) { s.configPath = path }
}

func WithInstanceID(id string) Option {
	return func(s *settings) { s.instanceID = id }
}

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(l *events.EventLogger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGlobalTelemetry installs the handle's logger, tracer and metrics as the
// process-wide defaults until Unload. Use it when one instance owns the
// process, as in a shared-object load.
func WithGlobalTelemetry() Option {
	return func(s *settings) { s.global = true }
}

// WithPluginOptions passes options through to plugin.New.
func WithPluginOptions(opts ...plugin.Option) Option {
	return func(s *settings) { s.pluginOpts = append(s.pluginOpts, opts...) }
}

// Create loads a plugin instance. It never fails: a configuration or
// telemetry setup error is logged and the defaults are used instead.
func Create(outbound chan<- string, opts ...Option) *Handle {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.instanceID == "" {
		s.instanceID = uuid.NewString()
	}

	cfg := s.cfg
	var cfgErr error
	if cfg == nil {
		cfg, cfgErr = config.Load(s.configPath)
		if cfgErr != nil {
			cfg = config.Default()
		}
	}

	logger := s.logger
	if logger == nil {
		logger = events.NewEventLoggerWithWriter(plugin.Name, s.instanceID, cfg.Logging.Writer(), cfg.Logging.SlogLevel())
	}
	if cfgErr != nil {
		logger.Logger().Warn("config_fallback", "path", s.configPath, "error", cfgErr)
	}

	ctx := context.Background()
	tracer, metrics := setupTelemetry(ctx, cfg.Telemetry, s.instanceID, logger.Logger())
	if s.global {
		events.SetGlobalEventLogger(logger)
		otel.SetGlobalTracer(tracer)
		otel.SetGlobalMetrics(metrics)
	}

	pluginOpts := []plugin.Option{
		plugin.WithLogger(logger),
		plugin.WithTracer(tracer),
		plugin.WithMetrics(metrics),
		plugin.WithShutdown(metrics.Shutdown),
		plugin.WithShutdown(tracer.Shutdown),
	}
	pluginOpts = append(pluginOpts, s.pluginOpts...)

	return &Handle{
		p:      plugin.New(ctx, cfg, outbound, pluginOpts...),
		id:     s.instanceID,
		logger: logger,
		global: s.global,
	}
}

func setupTelemetry(ctx context.Context, tc config.TelemetryConfig, instanceID string, log *slog.Logger) (*otel.Tracer, *otel.Metrics) {
	exporter := otel.ExporterType(tc.Exporter)
	enabled := exporter != otel.ExporterNone && exporter != ""
	attrs := map[string]string{"service.instance.id": instanceID}

	tracer, err := otel.NewTracer(ctx, &otel.Config{
		Enabled:      enabled,
		ServiceName:  plugin.Name,
		ExporterType: exporter,
		OTLPEndpoint: tc.Endpoint,
		OTLPInsecure: tc.Insecure,
		SampleRate:   tc.SampleRate,
		Attributes:   attrs,
	})
	if err != nil {
		log.Warn("tracing_disabled", "error", err)
		tracer = otel.NoopTracer()
	}

	metrics, err := otel.NewMetrics(ctx, &otel.MetricsConfig{
		Enabled:      enabled,
		ServiceName:  plugin.Name,
		ExporterType: exporter,
		OTLPEndpoint: tc.Endpoint,
		OTLPInsecure: tc.Insecure,
		Attributes:   attrs,
	})
	if err != nil {
		log.Warn("metrics_disabled", "error", err)
		metrics = otel.NoopMetrics()
	}

	return tracer, metrics
}

// Unload releases h. A nil handle and repeated calls are no-ops.
func Unload(h *Handle) {
	if h == nil {
		return
	}

	h.mu.Lock()
	p := h.p
	h.p = nil
	h.mu.Unlock()
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		h.logger.Logger().Warn("unload_incomplete", "error", err)
	}

	if h.global {
		events.SetGlobalEventLogger(nil)
		otel.SetGlobalTracer(nil)
		otel.SetGlobalMetrics(nil)
	}
}

// live returns the plugin instance, or nil after Unload.
func (h *Handle) live() *plugin.Plugin {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.p
}

// Name returns the plugin name.
func (h *Handle) Name() string {
	return plugin.Name
}

// InstanceID identifies this load in logs and telemetry.
func (h *Handle) InstanceID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Targets lists the report targets Action accepts, or nil once unloaded.
func (h *Handle) Targets() []string {
	p := h.live()
	if p == nil {
		return nil
	}
	return p.Targets().List()
}

// Status returns the status text, or "" once unloaded.
func (h *Handle) Status() string {
	p := h.live()
	if p == nil {
		return ""
	}
	return p.Status()
}

// Action forwards a host request. The acknowledgement is returned even
// after Unload.
func (h *Handle) Action(verb, primary, secondary string) string {
	p := h.live()
	if p == nil {
		return plugin.Ack
	}
	return p.Action(verb, primary, secondary)
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s[%s]", plugin.Name, h.InstanceID())
}
