//go:build linux

package sampler

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRotational(t *testing.T, dir, value string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "queue"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "queue", "rotational"), []byte(value+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiskKindFromSysfs(t *testing.T) {
	root := t.TempDir()
	devices := filepath.Join(root, "devices")

	// Whole devices carry the flag directly.
	writeRotational(t, filepath.Join(devices, "nvme0n1"), "0")
	writeRotational(t, filepath.Join(devices, "sda"), "1")
	// Partitions live under their parent and have no queue directory.
	if err := os.MkdirAll(filepath.Join(devices, "nvme0n1", "nvme0n1p2"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(devices, "sda", "sda1"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeRotational(t, filepath.Join(devices, "odd"), "2")

	links := map[string]string{
		"nvme0n1":   filepath.Join(devices, "nvme0n1"),
		"nvme0n1p2": filepath.Join(devices, "nvme0n1", "nvme0n1p2"),
		"sda1":      filepath.Join(devices, "sda", "sda1"),
		"odd":       filepath.Join(devices, "odd"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		device string
		want   DiskKind
	}{
		{"/dev/nvme0n1", DiskKindSSD},
		{"/dev/nvme0n1p2", DiskKindSSD},
		{"/dev/sda1", DiskKindHDD},
		{"/dev/odd", DiskKindUnknown},
		{"/dev/missing", DiskKindUnknown},
		{"", DiskKindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.device, func(t *testing.T) {
			if got := diskKindFromSysfs(root, tt.device); got != tt.want {
				t.Errorf("diskKindFromSysfs(%q) = %s, want %s", tt.device, got, tt.want)
			}
		})
	}
}
