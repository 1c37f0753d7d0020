package sampler

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Source is the OS introspection surface the sampler reads from.
type Source interface {
	Hostname(ctx context.Context) (string, error)
	Platform(ctx context.Context) (platform, family, version string, err error)
	KernelVersion(ctx context.Context) (string, error)
	KernelArch(ctx context.Context) (string, error)
	Uptime(ctx context.Context) (uint64, error)
	BootTime(ctx context.Context) (uint64, error)
	CPUCount(ctx context.Context) (int, error)
	LoadAverage(ctx context.Context) (*load.AvgStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage(ctx context.Context, mountpoint string) (*disk.UsageStat, error)
	DiskKind(device string) DiskKind
	Temperatures(ctx context.Context) ([]host.TemperatureStat, error)
}

// GopsutilSource reads the local machine through gopsutil.
type GopsutilSource struct{}

func (GopsutilSource) Hostname(ctx context.Context) (string, error) {
	return os.Hostname()
}

func (GopsutilSource) Platform(ctx context.Context) (string, string, string, error) {
	return host.PlatformInformationWithContext(ctx)
}

func (GopsutilSource) KernelVersion(ctx context.Context) (string, error) {
	return host.KernelVersionWithContext(ctx)
}

func (GopsutilSource) KernelArch(ctx context.Context) (string, error) {
	return host.KernelArch()
}

func (GopsutilSource) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

func (GopsutilSource) BootTime(ctx context.Context) (uint64, error) {
	return host.BootTimeWithContext(ctx)
}

func (GopsutilSource) CPUCount(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}

func (GopsutilSource) LoadAverage(ctx context.Context) (*load.AvgStat, error) {
	return load.AvgWithContext(ctx)
}

func (GopsutilSource) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (GopsutilSource) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

func (GopsutilSource) DiskUsage(ctx context.Context, mountpoint string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, mountpoint)
}

func (GopsutilSource) DiskKind(device string) DiskKind {
	return detectDiskKind(device)
}

// Temperatures returns whatever sensors could be read; gopsutil reports
// unreadable sensors as warnings alongside the readable ones.
func (GopsutilSource) Temperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if len(temps) > 0 {
		return temps, nil
	}
	return nil, err
}
