//go:build !linux

package sampler

func detectDiskKind(device string) DiskKind {
	return DiskKindUnknown
}
