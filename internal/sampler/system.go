package sampler

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// System is the long-lived sampling handle. Refresh re-reads the CPU, load
// and memory figures in place so every reader in one status pass sees the
// same values. It is not safe for concurrent use.
type System struct {
	src Source

	cpuCount int
	cpuErr   error
	load     LoadAverage
	loadErr  error
	memAvail uint64
	memTotal uint64
	memErr   error
}

// NewSystem creates a handle over src and performs an initial refresh.
func NewSystem(ctx context.Context, src Source) *System {
	s := &System{src: src}
	s.Refresh(ctx)
	return s
}

// Refresh re-reads every cached figure.
func (s *System) Refresh(ctx context.Context) {
	s.cpuCount, s.cpuErr = s.src.CPUCount(ctx)
	if s.cpuErr == nil && s.cpuCount <= 0 {
		s.cpuErr = ErrEmptyValue
	}

	s.load, s.loadErr = LoadAverage{}, nil
	if avg, err := s.src.LoadAverage(ctx); err != nil {
		s.loadErr = err
	} else if avg == nil {
		s.loadErr = ErrEmptyValue
	} else {
		s.load = LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}
	}

	s.memAvail, s.memTotal, s.memErr = 0, 0, nil
	if vm, err := s.src.VirtualMemory(ctx); err != nil {
		s.memErr = err
	} else if vm == nil {
		s.memErr = ErrEmptyValue
	} else {
		s.memAvail, s.memTotal = vm.Available, vm.Total
	}

}

func (s *System) CPUCount() (int, error) {
	if s.cpuErr != nil {
		return 0, unavailable(MetricCPUCount, s.cpuErr)
	}
	return s.cpuCount, nil
}

func (s *System) LoadAverage() (LoadAverage, error) {
	if s.loadErr != nil {
		return LoadAverage{}, unavailable(MetricLoadAverage, s.loadErr)
	}
	return s.load, nil
}

// Memory returns available and total bytes.
func (s *System) Memory() (available, total uint64, err error) {
	if s.memErr != nil {
		return 0, 0, unavailable(MetricMemory, s.memErr)
	}
	return s.memAvail, s.memTotal, nil
}

// The reads below go to the OS on every call.

func (s *System) Hostname(ctx context.Context) (string, error) {
	return nonEmpty(MetricHostname)(s.src.Hostname(ctx))
}

func (s *System) OSName(ctx context.Context) (string, error) {
	platform, _, _, err := s.src.Platform(ctx)
	return nonEmpty(MetricOSName)(platform, err)
}

// OSVersion is the platform name followed by its version, e.g. "ubuntu 22.04".
func (s *System) OSVersion(ctx context.Context) (string, error) {
	platform, _, version, err := s.src.Platform(ctx)
	if err != nil {
		return "", unavailable(MetricOSVersion, err)
	}
	if version == "" {
		return "", unavailable(MetricOSVersion, ErrEmptyValue)
	}
	return strings.TrimSpace(platform + " " + version), nil
}

func (s *System) KernelVersion(ctx context.Context) (string, error) {
	return nonEmpty(MetricKernelVersion)(s.src.KernelVersion(ctx))
}

func (s *System) Arch(ctx context.Context) (string, error) {
	return nonEmpty(MetricArch)(s.src.KernelArch(ctx))
}

// Uptime returns the system uptime in seconds.
func (s *System) Uptime(ctx context.Context) (uint64, error) {
	up, err := s.src.Uptime(ctx)
	if err != nil {
		return 0, unavailable(MetricSystemUptime, err)
	}
	return up, nil
}

func (s *System) BootTime(ctx context.Context) (time.Time, error) {
	bt, err := s.src.BootTime(ctx)
	if err != nil {
		return time.Time{}, unavailable(MetricBootTime, err)
	}
	if bt == 0 {
		return time.Time{}, unavailable(MetricBootTime, ErrEmptyValue)
	}
	return time.Unix(int64(bt), 0), nil
}

// CPUTemperature never fails; see cpuTemperature.
func (s *System) CPUTemperature(ctx context.Context) string {
	sensors, err := s.src.Temperatures(ctx)
	if err != nil {
		return NoTemperature
	}
	return cpuTemperature(sensors)
}

// Disks enumerates mounted volumes in OS order. A volume whose usage cannot
// be read is skipped and reported through skipped.
func (s *System) Disks(ctx context.Context) (disks []Disk, skipped []error, err error) {
	parts, err := s.src.Partitions(ctx)
	if err != nil {
		return nil, nil, unavailable(MetricDisks, err)
	}

	disks = make([]Disk, 0, len(parts))
	for _, p := range parts {
		usage, err := s.src.DiskUsage(ctx, p.Mountpoint)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("disk %s at %s: %w", p.Device, p.Mountpoint, err))
			continue
		}
		disks = append(disks, Disk{
			Name:       p.Device,
			Kind:       s.src.DiskKind(p.Device),
			FileSystem: p.Fstype,
			MountPoint: p.Mountpoint,
			Available:  usage.Free,
			Total:      usage.Total,
		})
	}
	return disks, skipped, nil
}

func nonEmpty(m Metric) func(string, error) (string, error) {
	return func(v string, err error) (string, error) {
		if err != nil {
			return "", unavailable(m, err)
		}
		if strings.TrimSpace(v) == "" {
			return "", unavailable(m, ErrEmptyValue)
		}
		return v, nil
	}
}

// SoftwareUptime returns whole seconds elapsed since start, never negative.
func SoftwareUptime(start, now time.Time) uint64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return uint64(d / time.Second)
}
