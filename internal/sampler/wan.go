package sampler

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/bc-dunia/sysinfo/internal/config"
	"github.com/bc-dunia/sysinfo/internal/events"
	"github.com/bc-dunia/sysinfo/internal/otel"
)

// HTTPStatusError is returned when the IP-echo service answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// WANLookup resolves the public address through an IP-echo HTTP service.
type WANLookup struct {
	url          string
	client       *http.Client
	timeout      time.Duration
	maxRetries   int
	initialDelay time.Duration

	logger  *events.EventLogger
	metrics *otel.Metrics
	tracer  *otel.Tracer
}

// WANOption configures a WANLookup.
type WANOption func(*WANLookup)

func WithHTTPClient(c *http.Client) WANOption {
	return func(w *WANLookup) {
		if c != nil {
			w.client = c
		}
	}
}

func WithRetryDelay(d time.Duration) WANOption {
	return func(w *WANLookup) {
		if d > 0 {
			w.initialDelay = d
		}
	}
}

func WithWANTelemetry(logger *events.EventLogger, metrics *otel.Metrics, tracer *otel.Tracer) WANOption {
	return func(w *WANLookup) {
		if logger != nil {
			w.logger = logger
		}
		if metrics != nil {
			w.metrics = metrics
		}
		if tracer != nil {
			w.tracer = tracer
		}
	}
}

// NewWANLookup creates a resolver from configuration.
func NewWANLookup(cfg config.WANConfig, opts ...WANOption) *WANLookup {
	w := &WANLookup{
		url:          cfg.URL,
		client:       http.DefaultClient,
		timeout:      cfg.Timeout(),
		maxRetries:   cfg.MaxRetries,
		initialDelay: 200 * time.Millisecond,
		logger:       events.GetGlobalEventLogger(),
		metrics:      otel.GetGlobalMetrics(),
		tracer:       otel.GetGlobalTracer(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Resolve returns the address reported by the service. The whole call,
// retries included, is bounded by the configured timeout.
func (w *WANLookup) Resolve(ctx context.Context) (string, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	ctx, span := w.tracer.StartWANSpan(ctx, w.url)
	defer span.End()

	started := time.Now()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = w.initialDelay
	eb.MaxElapsedTime = 0
	var b backoff.BackOff = backoff.WithMaxRetries(eb, uint64(w.maxRetries))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		otel.RecordRetry(span, attempt, err.Error())
		w.logger.LogWANRetry(attempt, err, next)
	}

	ip, err := backoff.RetryNotifyWithData(func() (string, error) {
		return w.fetch(ctx)
	}, b, notify)

	w.metrics.RecordWANLatency(ctx, float64(time.Since(started).Microseconds())/1000.0, err == nil)
	if err != nil {
		otel.RecordError(span, err, "wan_lookup", false)
		return "", err
	}
	return ip, nil
}

func (w *WANLookup) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Accept", "text/plain")
	w.tracer.InjectHeaders(ctx, req.Header)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxWANBodyBytes))
	if err != nil {
		return "", err
	}

	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", backoff.Permanent(fmt.Errorf("response %q is not an IP address", ip))
	}
	return ip, nil
}
