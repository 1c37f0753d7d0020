package sampler

// DiskKind classifies the storage medium behind a volume.
type DiskKind string

const (
	DiskKindSSD     DiskKind = "SSD"
	DiskKindHDD     DiskKind = "HDD"
	DiskKindUnknown DiskKind = "Unknown"
)
