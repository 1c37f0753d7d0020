package status

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bc-dunia/sysinfo/internal/sampler"
)

func fullSnapshot() *sampler.Snapshot {
	return &sampler.Snapshot{
		SoftwareUptime:  125,
		WANIP:           "203.0.113.7",
		OSName:          "ubuntu",
		OSVersion:       "ubuntu 22.04",
		KernelVersion:   "6.5.0-generic",
		Hostname:        "box1",
		Arch:            "x86_64",
		CPUCount:        8,
		SystemUptime:    93784,
		BootTime:        time.Unix(1700000000, 0),
		Temperature:     "45.5",
		Load:            sampler.LoadAverage{One: 0.5, Five: 1.25, Fifteen: 2},
		MemoryAvailable: 4 << 30,
		MemoryTotal:     16 << 30,
		Disks: []sampler.Disk{
			{Name: "/dev/nvme0n1p2", Kind: sampler.DiskKindSSD, FileSystem: "ext4", Available: 125 << 30, Total: 500 << 30},
			{Name: "/dev/sda1", Kind: sampler.DiskKindHDD, FileSystem: "xfs", Available: 1 << 40, Total: 3 << 40},
		},
	}
}

func TestFormat_SectionStructure(t *testing.T) {
	out := Format(fullSnapshot())
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	var headers []string
	for i, l := range lines {
		if strings.HasPrefix(l, "\t") {
			continue
		}
		headers = append(headers, strings.TrimSuffix(l, ":"))
		if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "\t") {
			t.Errorf("section %q has no indented line", l)
		}
	}

	if len(headers) != len(Sections) {
		t.Fatalf("got %d sections %v, want %d", len(headers), headers, len(Sections))
	}
	for i := range Sections {
		if headers[i] != Sections[i] {
			t.Errorf("section %d = %q, want %q", i, headers[i], Sections[i])
		}
	}
}

func TestFormat_Lines(t *testing.T) {
	out := Format(fullSnapshot())
	booted := time.Unix(1700000000, 0).Local().Format(BootTimeLayout)

	want := []string{
		"\tUptime: 2m, 5s\n",
		"\tWAN IP: 203.0.113.7\n",
		"\tOS: ubuntu\n",
		"\tKernel Version: 6.5.0-generic\n",
		"\tOS Version: ubuntu 22.04\n",
		"\tHost Name: box1\n",
		"\tCPU Architecture: x86_64\n",
		"\tNB CPUs: 8\n",
		"\tUptime: 1d, 2h, 3m, 4s\n",
		"\tBooted: " + booted + "\n",
		"\tTemperature: 45.5°C\n",
		"\tone minute: 0.5%, five minutes: 1.25%, fifteen minutes: 2%\n",
		"\t4.0 GiB/16 GiB (25.00%)\n",
		"\t/dev/nvme0n1p2: SSD, ext4, 125 GiB/500 GiB (25.00%)\n",
		"\t/dev/sda1: HDD, xfs, 1.0 TiB/3.0 TiB (33.33%)\n",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestFormat_Placeholders(t *testing.T) {
	snap := fullSnapshot()
	snap.WANIP = ""
	snap.Hostname = ""
	snap.MemoryAvailable, snap.MemoryTotal = 0, 0
	snap.Disks = nil
	boom := errors.New("boom")
	snap.Errors = map[sampler.Metric]error{
		sampler.MetricWANIP:    boom,
		sampler.MetricHostname: boom,
		sampler.MetricMemory:   boom,
		sampler.MetricDisks:    boom,
	}

	out := Format(snap)
	for _, w := range []string{
		"IP Info:\n\tWAN IP: unavailable\n",
		"\tHost Name: unavailable\n",
		"Memory Info:\n\tunavailable\n",
		"Disk Info:\n\tunavailable\n",
		"\tOS: ubuntu\n",
	} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestFormat_NoDisks(t *testing.T) {
	snap := fullSnapshot()
	snap.Disks = nil

	if out := Format(snap); !strings.HasSuffix(out, "Disk Info:\n\tno disks found\n") {
		t.Errorf("unexpected disk section:\n%s", out)
	}
}

func TestFormat_Deterministic(t *testing.T) {
	snap := fullSnapshot()
	if Format(snap) != Format(snap) {
		t.Error("Format is not deterministic")
	}
}

func TestMemoryPercent(t *testing.T) {
	tests := []struct {
		avail, total uint64
		want         string
	}{
		{0, 0, "0.00%"},
		{1, 3, "33.00%"},
		{2, 3, "66.00%"},
		{4 << 30, 16 << 30, "25.00%"},
		{10, 10, "100.00%"},
	}
	for _, tt := range tests {
		if got := MemoryPercent(tt.avail, tt.total); got != tt.want {
			t.Errorf("MemoryPercent(%d, %d) = %q, want %q", tt.avail, tt.total, got, tt.want)
		}
	}
}

func TestDiskPercent(t *testing.T) {
	if got := DiskPercent(1, 3); got != "33.33%" {
		t.Errorf("DiskPercent(1, 3) = %q", got)
	}
	if got := DiskPercent(5, 0); got != "0.00%" {
		t.Errorf("DiskPercent(5, 0) = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m, 0s"},
		{3600, "1h, 0m, 0s"},
		{86400, "1d, 0h, 0m, 0s"},
		{93784, "1d, 2h, 3m, 4s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
