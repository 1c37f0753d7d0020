package events

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// EventLogger provides structured logging for key events of a plugin instance.
type EventLogger struct {
	logger     *slog.Logger
	plugin     string
	instanceID string
}

// NewEventLogger creates a new EventLogger with JSON output to stderr.
// It includes base attributes: plugin and instance_id.
func NewEventLogger(plugin, instanceID string) *EventLogger {
	return NewEventLoggerWithWriter(plugin, instanceID, os.Stderr, slog.LevelInfo)
}

// NewEventLoggerWithWriter creates a new EventLogger with JSON output to a custom writer.
// Useful for testing or redirecting output.
func NewEventLoggerWithWriter(plugin, instanceID string, w io.Writer, level slog.Level) *EventLogger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler).With(
		"plugin", plugin,
		"instance_id", instanceID,
	)
	return &EventLogger{
		logger:     logger,
		plugin:     plugin,
		instanceID: instanceID,
	}
}

// Logger exposes the underlying slog.Logger for ad-hoc messages.
func (el *EventLogger) Logger() *slog.Logger {
	return el.logger
}

// LogLoaded logs plugin creation.
// event: "plugin_loaded"
// Attributes: namespace
func (el *EventLogger) LogLoaded(namespace string) {
	el.logger.Info("plugin_loaded",
		"namespace", namespace,
	)
}

// LogUnloaded logs plugin destruction.
// event: "plugin_unloaded"
// Attributes: lifetime_s
func (el *EventLogger) LogUnloaded(lifetime time.Duration) {
	el.logger.Info("plugin_unloaded",
		"lifetime_s", int64(lifetime.Seconds()),
	)
}

// LogStatusComputed logs the completion of a status computation.
// event: "status_computed"
// Attributes: duration_ms, unavailable
func (el *EventLogger) LogStatusComputed(duration time.Duration, unavailable int) {
	el.logger.Info("status_computed",
		"duration_ms", duration.Milliseconds(),
		"unavailable", unavailable,
	)
}

// LogMetricUnavailable logs a metric that could not be sampled.
// event: "metric_unavailable"
// Attributes: metric, error
func (el *EventLogger) LogMetricUnavailable(metric string, err error) {
	el.logger.Warn("metric_unavailable",
		"metric", metric,
		"error", err,
	)
}

// LogReportDispatched logs a report handed to the host.
// event: "report_dispatched"
// Attributes: topic, payload_bytes
func (el *EventLogger) LogReportDispatched(topic string, payloadBytes int) {
	el.logger.Debug("report_dispatched",
		"topic", topic,
		"payload_bytes", payloadBytes,
	)
}

// LogDispatchFailed logs a report that could not be handed to the host.
// event: "dispatch_failed"
// Attributes: topic, trace_id (when traced), error
func (el *EventLogger) LogDispatchFailed(topic, traceID string, err error) {
	attrs := []any{"topic", topic}
	if traceID != "" {
		attrs = append(attrs, "trace_id", traceID)
	}
	attrs = append(attrs, "error", err)
	el.logger.Error("dispatch_failed", attrs...)
}

// LogActionIgnored logs an action/data pair with no handler.
// event: "action_ignored"
// Attributes: action, data
func (el *EventLogger) LogActionIgnored(action, data string) {
	el.logger.Debug("action_ignored",
		"action", action,
		"data", data,
	)
}

// LogWANRetry logs a retried WAN address lookup.
// event: "wan_lookup_retry"
// Attributes: attempt, error, backoff_ms
func (el *EventLogger) LogWANRetry(attempt int, err error, backoff time.Duration) {
	el.logger.Warn("wan_lookup_retry",
		"attempt", attempt,
		"error", err,
		"backoff_ms", backoff.Milliseconds(),
	)
}

// Global logger management
var (
	globalLogger *EventLogger
	globalMu     sync.RWMutex
	noopLogger   = newNoopEventLogger()
)

// SetGlobalEventLogger sets the global event logger instance.
func SetGlobalEventLogger(l *EventLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalEventLogger returns the global event logger instance.
// If no logger is set, returns a no-op logger.
func GetGlobalEventLogger() *EventLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return noopLogger
}

// NoopEventLogger returns an event logger that discards all events.
func NoopEventLogger() *EventLogger {
	return noopLogger
}

func newNoopEventLogger() *EventLogger {
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	})
	return &EventLogger{
		logger: slog.New(handler),
	}
}
