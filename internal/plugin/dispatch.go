package plugin

import (
	"context"
	"time"

	"github.com/bc-dunia/sysinfo/internal/otel"
	"github.com/bc-dunia/sysinfo/internal/report"
)

const (
	// ActionReport is the only action verb the plugin handles.
	ActionReport = "report"
	// Ack is returned by Action for every request.
	Ack = "send"
)

// Action handles a host request and always returns Ack. Failures are logged
// and counted; see Dispatch for the error-returning form. secondary is unused.
func (p *Plugin) Action(action, primary, secondary string) string {
	_, _ = p.Dispatch(context.Background(), action, primary)
	return Ack
}

// Dispatch routes action/target to a registered target and sends its reports
// one command line each. It returns how many were sent. The first send
// failure stops the remaining reports and is returned as a
// *DispatchFailedError. Unknown combinations and calls after Close send
// nothing and return no error.
func (p *Plugin) Dispatch(ctx context.Context, action, target string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, nil
	}

	if action != ActionReport {
		p.logger.LogActionIgnored(action, target)
		return 0, nil
	}
	t, ok := p.targets.Get(target)
	if !ok {
		p.logger.LogActionIgnored(action, target)
		return 0, nil
	}

	ctx, span := p.tracer.StartActionSpan(ctx, p.encoder.Namespace, action, target)
	defer span.End()

	sent := 0
	for _, r := range t.Reports(ctx, p) {
		if err := p.send(ctx, r); err != nil {
			otel.RecordError(span, err, "dispatch", false)
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (p *Plugin) send(ctx context.Context, r report.Report) error {
	line, err := report.Command(r)
	if err == nil {
		err = p.push(line)
	}
	if err != nil {
		traceID, _ := otel.GetTraceInfo(ctx)
		p.logger.LogDispatchFailed(r.Topic, traceID, err)
		p.metrics.RecordDispatchFailure(ctx, r.Key())
		return &DispatchFailedError{Topic: r.Topic, Err: err}
	}

	p.logger.LogReportDispatched(r.Topic, len(line))
	p.metrics.RecordReport(ctx, r.Key())
	return nil
}

// push hands line to the host. The send timeout only applies once the
// channel is full. A closed channel panics on send; that is converted to
// ErrOutboxClosed.
func (p *Plugin) push(line string) (err error) {
	if p.outbox == nil {
		return ErrOutboxClosed
	}
	defer func() {
		if recover() != nil {
			err = ErrOutboxClosed
		}
	}()

	select {
	case p.outbox <- line:
		return nil
	default:
	}

	timer := time.NewTimer(p.sendTimeout)
	defer timer.Stop()

	select {
	case p.outbox <- line:
		return nil
	case <-timer.C:
		return ErrSendTimeout
	}
}
