package sampler

import (
	"sort"
	"time"
)

// LoadAverage holds the OS-reported 1, 5 and 15 minute load averages.
type LoadAverage struct {
	One     float64
	Five    float64
	Fifteen float64
}

// Disk describes one mounted volume.
type Disk struct {
	Name       string
	Kind       DiskKind
	FileSystem string
	MountPoint string
	Available  uint64
	Total      uint64
}

// Snapshot is the result of one status sampling pass. Fields whose read
// failed keep their zero value and have an entry in Errors.
type Snapshot struct {
	SoftwareUptime uint64
	WANIP          string

	OSName        string
	OSVersion     string
	KernelVersion string
	Hostname      string
	Arch          string
	CPUCount      int
	SystemUptime  uint64
	BootTime      time.Time

	Temperature string
	Load        LoadAverage

	MemoryAvailable uint64
	MemoryTotal     uint64

	Disks []Disk

	Errors map[Metric]error
}

// Available reports whether m was read successfully.
func (s *Snapshot) Available(m Metric) bool {
	_, failed := s.Errors[m]
	return !failed
}

// Unavailable lists the failed metrics ordered by name.
func (s *Snapshot) Unavailable() []*UnavailableMetricError {
	out := make([]*UnavailableMetricError, 0, len(s.Errors))
	for m, err := range s.Errors {
		out = append(out, unavailable(m, err))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metric < out[j].Metric })
	return out
}

func (s *Snapshot) fail(err error) {
	if err == nil {
		return
	}
	if s.Errors == nil {
		s.Errors = make(map[Metric]error)
	}
	if ue, ok := err.(*UnavailableMetricError); ok {
		s.Errors[ue.Metric] = ue.Err
	}
}
