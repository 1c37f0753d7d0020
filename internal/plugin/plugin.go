package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/bc-dunia/sysinfo/internal/config"
	"github.com/bc-dunia/sysinfo/internal/events"
	"github.com/bc-dunia/sysinfo/internal/otel"
	"github.com/bc-dunia/sysinfo/internal/report"
	"github.com/bc-dunia/sysinfo/internal/sampler"
	"github.com/bc-dunia/sysinfo/internal/status"
)

// Name is the plugin name reported to the host.
const Name = "sysinfo"

// Plugin is one loaded instance. Status and Action are serialized by an
// internal mutex; the host is still expected to call them from one goroutine.
type Plugin struct {
	mu sync.Mutex

	start       time.Time
	sampler     *sampler.Sampler
	outbox      chan<- string
	sendTimeout time.Duration
	encoder     *report.Encoder
	targets     *Registry
	out         io.Writer

	logger  *events.EventLogger
	metrics *otel.Metrics
	tracer  *otel.Tracer

	shutdown []func(context.Context) error
	closed   bool
}

// Option configures a Plugin.
type Option func(*options)

type options struct {
	source   sampler.Source
	resolver sampler.AddressResolver
	noWAN    bool
	targets  *Registry
	out      io.Writer
	now      func() time.Time
	logger   *events.EventLogger
	metrics  *otel.Metrics
	tracer   *otel.Tracer
	shutdown []func(context.Context) error
}

// WithSource replaces the gopsutil-backed OS source.
func WithSource(src sampler.Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithResolver replaces the HTTP WAN lookup. A nil resolver disables it.
func WithResolver(r sampler.AddressResolver) Option {
	return func(o *options) {
		o.resolver = r
		o.noWAN = r == nil
	}
}

// WithTargets replaces the built-in report targets.
func WithTargets(r *Registry) Option {
	return func(o *options) { o.targets = r }
}

// WithOutput sets where the loading banner and status echo are written.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(l *events.EventLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *otel.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func WithTracer(t *otel.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithShutdown registers a function run once by Close, e.g. a telemetry
// provider flush.
func WithShutdown(fn func(context.Context) error) Option {
	return func(o *options) {
		if fn != nil {
			o.shutdown = append(o.shutdown, fn)
		}
	}
}

// New loads a plugin instance that sends its reports on outbox.
func New(ctx context.Context, cfg *config.Config, outbox chan<- string, opts ...Option) *Plugin {
	if cfg == nil {
		cfg = config.Default()
	}

	o := &options{
		source:  sampler.GopsutilSource{},
		out:     os.Stdout,
		now:     time.Now,
		logger:  events.GetGlobalEventLogger(),
		metrics: otel.GetGlobalMetrics(),
		tracer:  otel.GetGlobalTracer(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.targets == nil {
		o.targets = DefaultRegistry()
	}

	fmt.Fprintf(o.out, "[%s] Loading...\n", Name)

	var resolver sampler.AddressResolver
	switch {
	case o.resolver != nil:
		resolver = o.resolver
	case !o.noWAN:
		resolver = sampler.NewWANLookup(cfg.WAN, sampler.WithWANTelemetry(o.logger, o.metrics, o.tracer))
	}

	sendTimeout := cfg.Dispatch.SendTimeout()
	if sendTimeout <= 0 {
		sendTimeout = config.DefaultSendTimeoutMs * time.Millisecond
	}

	p := &Plugin{
		start:       o.now(),
		sampler:     sampler.New(sampler.NewSystem(ctx, o.source), resolver, sampler.WithLogger(o.logger), sampler.WithClock(o.now)),
		outbox:      outbox,
		sendTimeout: sendTimeout,
		encoder:     report.NewEncoder(cfg.Name),
		targets:     o.targets,
		out:         o.out,
		logger:      o.logger,
		metrics:     o.metrics,
		tracer:      o.tracer,
		shutdown:    o.shutdown,
	}

	p.logger.LogLoaded(cfg.Name)
	return p
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return Name
}

// Namespace returns the configured topic namespace.
func (p *Plugin) Namespace() string {
	return p.encoder.Namespace
}

// Targets returns the report target registry.
func (p *Plugin) Targets() *Registry {
	return p.targets
}

// SoftwareUptime returns whole seconds since the plugin was loaded.
func (p *Plugin) SoftwareUptime() uint64 {
	return sampler.SoftwareUptime(p.start, p.sampler.Now())
}

// Status samples every metric and returns the status text, which is also
// echoed to the plugin's output. After Close it returns "".
func (p *Plugin) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ""
	}
	return p.status(context.Background())
}

// status runs one full sampling pass. Callers hold p.mu.
func (p *Plugin) status(ctx context.Context) string {
	ctx, span := p.tracer.StartStatusSpan(ctx, p.encoder.Namespace)
	defer span.End()

	started := time.Now()
	snap := p.sampler.Collect(ctx, p.start)

	missing := snap.Unavailable()
	for _, ue := range missing {
		p.unavailable(ctx, ue)
	}

	text := status.Format(snap)
	fmt.Fprintf(p.out, "[%s]\n%s\n", Name, text)

	elapsed := time.Since(started)
	p.metrics.SetSoftwareUptime(snap.SoftwareUptime)
	p.metrics.RecordStatusLatency(ctx, float64(elapsed.Microseconds())/1000.0, len(missing))
	p.logger.LogStatusComputed(elapsed, len(missing))

	return text
}

func (p *Plugin) unavailable(ctx context.Context, err error) {
	var ue *sampler.UnavailableMetricError
	if !errors.As(err, &ue) {
		return
	}
	p.logger.LogMetricUnavailable(string(ue.Metric), ue.Err)
	p.metrics.RecordUnavailable(ctx, string(ue.Metric))
}

// Close releases the instance. It is safe to call more than once; only the
// first call runs the shutdown hooks.
func (p *Plugin) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.logger.LogUnloaded(p.sampler.Now().Sub(p.start))

	var errs []error
	for _, fn := range p.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.shutdown = nil
	return errors.Join(errs...)
}

// Closed reports whether Close has been called.
func (p *Plugin) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
