// Package samplertest provides in-memory stand-ins for the sampler's OS and
// network dependencies.
package samplertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/bc-dunia/sysinfo/internal/sampler"
)

// Source is a sampler.Source backed by fixed values. Set an *Err field to
// make the matching read fail.
type Source struct {
	mu sync.Mutex

	HostnameValue string
	HostnameErr   error

	PlatformValue string
	FamilyValue   string
	VersionValue  string
	PlatformErr   error

	KernelValue string
	KernelErr   error

	ArchValue string
	ArchErr   error

	UptimeValue uint64
	UptimeErr   error

	BootTimeValue uint64
	BootTimeErr   error

	CPUs   int
	CPUErr error

	Load    *load.AvgStat
	LoadErr error

	Memory    *mem.VirtualMemoryStat
	MemoryErr error

	Parts    []disk.PartitionStat
	PartsErr error
	// Usage is keyed by mountpoint; a missing entry makes DiskUsage fail.
	Usage map[string]*disk.UsageStat
	Kinds map[string]sampler.DiskKind

	Sensors    []host.TemperatureStat
	SensorsErr error

	memoryReads int
}

// NewSource returns a Source describing a small, healthy Linux box.
func NewSource() *Source {
	return &Source{
		HostnameValue: "box1",
		PlatformValue: "ubuntu",
		FamilyValue:   "debian",
		VersionValue:  "22.04",
		KernelValue:   "6.5.0-generic",
		ArchValue:     "x86_64",
		UptimeValue:   93784,
		BootTimeValue: 1700000000,
		CPUs:          8,
		Load:          &load.AvgStat{Load1: 0.5, Load5: 0.25, Load15: 0.125},
		Memory: &mem.VirtualMemoryStat{
			Total:     16 << 30,
			Available: 4 << 30,
		},
		Parts: []disk.PartitionStat{
			{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"},
			{Device: "/dev/sda1", Mountpoint: "/data", Fstype: "xfs"},
		},
		Usage: map[string]*disk.UsageStat{
			"/":     {Path: "/", Total: 500 << 30, Free: 125 << 30},
			"/data": {Path: "/data", Total: 2 << 40, Free: 1 << 40},
		},
		Kinds: map[string]sampler.DiskKind{
			"/dev/nvme0n1p2": sampler.DiskKindSSD,
			"/dev/sda1":      sampler.DiskKindHDD,
		},
		Sensors: []host.TemperatureStat{
			{SensorKey: "acpitz", Temperature: 27.8},
			{SensorKey: "coretemp_cpu_package", Temperature: 45},
		},
	}
}

// MemoryReads counts VirtualMemory calls, i.e. handle refreshes.
func (s *Source) MemoryReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoryReads
}

func (s *Source) Hostname(ctx context.Context) (string, error) {
	return s.HostnameValue, s.HostnameErr
}

func (s *Source) Platform(ctx context.Context) (string, string, string, error) {
	if s.PlatformErr != nil {
		return "", "", "", s.PlatformErr
	}
	return s.PlatformValue, s.FamilyValue, s.VersionValue, nil
}

func (s *Source) KernelVersion(ctx context.Context) (string, error) {
	return s.KernelValue, s.KernelErr
}

func (s *Source) KernelArch(ctx context.Context) (string, error) {
	return s.ArchValue, s.ArchErr
}

func (s *Source) Uptime(ctx context.Context) (uint64, error) {
	return s.UptimeValue, s.UptimeErr
}

func (s *Source) BootTime(ctx context.Context) (uint64, error) {
	return s.BootTimeValue, s.BootTimeErr
}

func (s *Source) CPUCount(ctx context.Context) (int, error) {
	return s.CPUs, s.CPUErr
}

func (s *Source) LoadAverage(ctx context.Context) (*load.AvgStat, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.Load, nil
}

func (s *Source) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	s.mu.Lock()
	s.memoryReads++
	s.mu.Unlock()
	if s.MemoryErr != nil {
		return nil, s.MemoryErr
	}
	return s.Memory, nil
}

func (s *Source) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	if s.PartsErr != nil {
		return nil, s.PartsErr
	}
	return s.Parts, nil
}

func (s *Source) DiskUsage(ctx context.Context, mountpoint string) (*disk.UsageStat, error) {
	u, ok := s.Usage[mountpoint]
	if !ok {
		return nil, fmt.Errorf("statfs %s: permission denied", mountpoint)
	}
	return u, nil
}

func (s *Source) DiskKind(device string) sampler.DiskKind {
	if k, ok := s.Kinds[device]; ok {
		return k
	}
	return sampler.DiskKindUnknown
}

func (s *Source) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	if s.SensorsErr != nil {
		return nil, s.SensorsErr
	}
	return s.Sensors, nil
}

// Resolver is a sampler.AddressResolver returning a fixed answer.
type Resolver struct {
	mu    sync.Mutex
	IP    string
	Err   error
	calls int
}

func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	return r.IP, nil
}

// Calls returns how many times Resolve ran.
func (r *Resolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
