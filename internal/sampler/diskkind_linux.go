//go:build linux

package sampler

import (
	"os"
	"path/filepath"
	"strings"
)

const sysBlock = "/sys/class/block"

// detectDiskKind reads the rotational flag of the block device backing a
// partition. Partitions inherit the flag of their parent device.
func detectDiskKind(device string) DiskKind {
	return diskKindFromSysfs(sysBlock, device)
}

func diskKindFromSysfs(root, device string) DiskKind {
	name := filepath.Base(device)
	if name == "" || name == "." || name == "/" {
		return DiskKindUnknown
	}

	dir, err := filepath.EvalSymlinks(filepath.Join(root, name))
	if err != nil {
		return DiskKindUnknown
	}

	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		data, err := os.ReadFile(filepath.Join(candidate, "queue", "rotational"))
		if err != nil {
			continue
		}
		switch strings.TrimSpace(string(data)) {
		case "0":
			return DiskKindSSD
		case "1":
			return DiskKindHDD
		}
	}
	return DiskKindUnknown
}
