// Package sampler reads instantaneous machine telemetry for status reports.
package sampler

import (
	"context"
	"errors"
	"time"

	"github.com/bc-dunia/sysinfo/internal/events"
)

// ErrNoResolver is recorded for the WAN address when no resolver is configured.
var ErrNoResolver = errors.New("no WAN address resolver configured")

// AddressResolver looks up the machine's public address.
type AddressResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Sampler builds Snapshots from a sampling handle and a WAN resolver.
type Sampler struct {
	system *System
	wan    AddressResolver
	logger *events.EventLogger
	now    func() time.Time
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the event logger used for skipped volumes.
func WithLogger(l *events.EventLogger) Option {
	return func(s *Sampler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Sampler. wan may be nil, in which case the WAN address is
// always reported unavailable.
func New(system *System, wan AddressResolver, opts ...Option) *Sampler {
	s := &Sampler{
		system: system,
		wan:    wan,
		logger: events.GetGlobalEventLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// System returns the underlying sampling handle.
func (s *Sampler) System() *System {
	return s.system
}

// Now returns the sampler's current time.
func (s *Sampler) Now() time.Time {
	return s.now()
}

// Collect performs a full sampling pass. The WAN lookup runs alongside the
// local reads so a slow lookup does not delay them; its own timeout bounds
// the total. Every field fails independently.
func (s *Sampler) Collect(ctx context.Context, start time.Time) *Snapshot {
	snap := &Snapshot{}

	type wanResult struct {
		ip  string
		err error
	}
	wanCh := make(chan wanResult, 1)
	go func() {
		if s.wan == nil {
			wanCh <- wanResult{err: ErrNoResolver}
			return
		}
		ip, err := s.wan.Resolve(ctx)
		wanCh <- wanResult{ip: ip, err: err}
	}()

	sys := s.system
	sys.Refresh(ctx)

	var err error
	if snap.OSName, err = sys.OSName(ctx); err != nil {
		snap.fail(err)
	}
	if snap.KernelVersion, err = sys.KernelVersion(ctx); err != nil {
		snap.fail(err)
	}
	if snap.OSVersion, err = sys.OSVersion(ctx); err != nil {
		snap.fail(err)
	}
	if snap.Hostname, err = sys.Hostname(ctx); err != nil {
		snap.fail(err)
	}
	if snap.Arch, err = sys.Arch(ctx); err != nil {
		snap.fail(err)
	}
	if snap.CPUCount, err = sys.CPUCount(); err != nil {
		snap.fail(err)
	}
	if snap.SystemUptime, err = sys.Uptime(ctx); err != nil {
		snap.fail(err)
	}
	if snap.BootTime, err = sys.BootTime(ctx); err != nil {
		snap.fail(err)
	}

	snap.Temperature = sys.CPUTemperature(ctx)

	if snap.Load, err = sys.LoadAverage(); err != nil {
		snap.fail(err)
	}
	if snap.MemoryAvailable, snap.MemoryTotal, err = sys.Memory(); err != nil {
		snap.fail(err)
	}

	disks, skipped, err := sys.Disks(ctx)
	if err != nil {
		snap.fail(err)
	}
	snap.Disks = disks
	for _, e := range skipped {
		s.logger.Logger().Warn("disk_skipped", "error", e)
	}

	res := <-wanCh
	if res.err != nil {
		snap.fail(unavailable(MetricWANIP, res.err))
	} else {
		snap.WANIP = res.ip
	}

	// Taken last so the value covers the whole pass, like a fresh read would.
	snap.SoftwareUptime = SoftwareUptime(start, s.now())

	return snap
}
