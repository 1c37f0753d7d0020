package sampler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/bc-dunia/sysinfo/internal/sampler"
	"github.com/bc-dunia/sysinfo/internal/sampler/samplertest"
)

func TestSystem_Reads(t *testing.T) {
	ctx := context.Background()
	sys := sampler.NewSystem(ctx, samplertest.NewSource())

	if got, err := sys.OSName(ctx); err != nil || got != "ubuntu" {
		t.Errorf("OSName() = %q, %v", got, err)
	}
	if got, err := sys.OSVersion(ctx); err != nil || got != "ubuntu 22.04" {
		t.Errorf("OSVersion() = %q, %v", got, err)
	}
	if got, err := sys.CPUCount(); err != nil || got != 8 {
		t.Errorf("CPUCount() = %d, %v", got, err)
	}
	avail, total, err := sys.Memory()
	if err != nil || avail != 4<<30 || total != 16<<30 {
		t.Errorf("Memory() = %d, %d, %v", avail, total, err)
	}
	bt, err := sys.BootTime(ctx)
	if err != nil || bt.Unix() != 1700000000 {
		t.Errorf("BootTime() = %v, %v", bt, err)
	}
	if got := sys.CPUTemperature(ctx); got != "45" {
		t.Errorf("CPUTemperature() = %q, want 45", got)
	}
}

func TestSystem_RefreshPicksUpNewValues(t *testing.T) {
	ctx := context.Background()
	src := samplertest.NewSource()
	sys := sampler.NewSystem(ctx, src)

	src.Memory = &mem.VirtualMemoryStat{Total: 8 << 30, Available: 1 << 30}
	if avail, _, _ := sys.Memory(); avail != 4<<30 {
		t.Fatalf("cached memory changed before refresh: %d", avail)
	}

	sys.Refresh(ctx)
	avail, total, err := sys.Memory()
	if err != nil || avail != 1<<30 || total != 8<<30 {
		t.Errorf("after refresh Memory() = %d, %d, %v", avail, total, err)
	}
	if src.MemoryReads() != 2 {
		t.Errorf("MemoryReads() = %d, want 2", src.MemoryReads())
	}
}

func TestSystem_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	src := samplertest.NewSource()
	src.HostnameValue = "   "
	src.KernelErr = boom
	src.CPUs = 0
	src.LoadErr = boom
	src.BootTimeValue = 0
	src.SensorsErr = boom
	sys := sampler.NewSystem(ctx, src)

	var ue *sampler.UnavailableMetricError

	_, err := sys.Hostname(ctx)
	if !errors.As(err, &ue) || ue.Metric != sampler.MetricHostname || !errors.Is(err, sampler.ErrEmptyValue) {
		t.Errorf("Hostname() error = %v", err)
	}
	_, err = sys.KernelVersion(ctx)
	if !errors.As(err, &ue) || ue.Metric != sampler.MetricKernelVersion || !errors.Is(err, boom) {
		t.Errorf("KernelVersion() error = %v", err)
	}
	if _, err = sys.CPUCount(); !errors.Is(err, sampler.ErrEmptyValue) {
		t.Errorf("CPUCount() error = %v, want empty value", err)
	}
	if _, err = sys.LoadAverage(); !errors.Is(err, boom) {
		t.Errorf("LoadAverage() error = %v", err)
	}
	if _, err = sys.BootTime(ctx); !errors.Is(err, sampler.ErrEmptyValue) {
		t.Errorf("BootTime() error = %v", err)
	}
	if got := sys.CPUTemperature(ctx); got != sampler.NoTemperature {
		t.Errorf("CPUTemperature() = %q, want %q", got, sampler.NoTemperature)
	}
}

func TestSystem_DisksSkipsUnreadableVolumes(t *testing.T) {
	ctx := context.Background()
	src := samplertest.NewSource()
	delete(src.Usage, "/data")
	sys := sampler.NewSystem(ctx, src)

	disks, skipped, err := sys.Disks(ctx)
	if err != nil {
		t.Fatalf("Disks() error = %v", err)
	}
	if len(disks) != 1 || len(skipped) != 1 {
		t.Fatalf("Disks() = %d disks, %d skipped, want 1 and 1", len(disks), len(skipped))
	}
	d := disks[0]
	if d.Name != "/dev/nvme0n1p2" || d.Kind != sampler.DiskKindSSD || d.FileSystem != "ext4" {
		t.Errorf("unexpected disk %+v", d)
	}
	if d.Available != 125<<30 || d.Total != 500<<30 {
		t.Errorf("disk space = %d/%d", d.Available, d.Total)
	}
}

func TestSoftwareUptime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := sampler.SoftwareUptime(start, start.Add(-time.Minute)); got != 0 {
		t.Errorf("clock skew: got %d, want 0", got)
	}
	if got := sampler.SoftwareUptime(start, start.Add(90*time.Second+400*time.Millisecond)); got != 90 {
		t.Errorf("got %d, want 90", got)
	}

	var prev uint64
	for i := 0; i < 5; i++ {
		got := sampler.SoftwareUptime(start, start.Add(time.Duration(i)*700*time.Millisecond))
		if got < prev {
			t.Fatalf("uptime decreased: %d after %d", got, prev)
		}
		prev = got
	}
}
