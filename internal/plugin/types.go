// Package plugin implements the sysinfo plugin: its lifetime state, the
// status computation and the report dispatcher.
package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/bc-dunia/sysinfo/internal/report"
)

// Target produces the reports for one "report <target>" action.
type Target interface {
	// Name returns the target name as sent by the host (e.g., "myself", "status").
	Name() string

	// Reports samples and encodes the target's metrics. Reports are
	// dispatched in the returned order.
	Reports(ctx context.Context, p *Plugin) []report.Report
}

// TargetFunc is a helper type that allows creating targets from functions.
type TargetFunc struct {
	name    string
	reports func(ctx context.Context, p *Plugin) []report.Report
}

// NewTargetFunc creates a new function-based target.
func NewTargetFunc(name string, reports func(ctx context.Context, p *Plugin) []report.Report) *TargetFunc {
	return &TargetFunc{
		name:    name,
		reports: reports,
	}
}

// Name returns the target name.
func (f *TargetFunc) Name() string {
	return f.name
}

// Reports calls the wrapped function.
func (f *TargetFunc) Reports(ctx context.Context, p *Plugin) []report.Report {
	if f.reports == nil {
		return nil
	}
	return f.reports(ctx, p)
}

var (
	// ErrOutboxClosed is wrapped when the host closed the outbound channel.
	ErrOutboxClosed = errors.New("outbound channel closed")
	// ErrSendTimeout is wrapped when the host stopped draining the outbound channel.
	ErrSendTimeout = errors.New("outbound channel send timed out")
)

// DispatchFailedError reports a report that never reached the host.
type DispatchFailedError struct {
	Topic string
	Err   error
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch of %s failed: %v", e.Topic, e.Err)
}

func (e *DispatchFailedError) Unwrap() error {
	return e.Err
}

// RegistrationError represents an error during target registration.
type RegistrationError struct {
	Target  string
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed for target %q: %s", e.Target, e.Message)
}

// NewRegistrationError creates a new registration error.
func NewRegistrationError(target, message string) *RegistrationError {
	return &RegistrationError{
		Target:  target,
		Message: message,
	}
}
