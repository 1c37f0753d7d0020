package sampler

import (
	"errors"
	"fmt"
)

// Metric names a single sampled field.
type Metric string

const (
	MetricWANIP         Metric = "wan_ip"
	MetricOSName        Metric = "os_name"
	MetricOSVersion     Metric = "os_version"
	MetricKernelVersion Metric = "kernel_version"
	MetricHostname      Metric = "hostname"
	MetricArch          Metric = "cpu_arch"
	MetricCPUCount      Metric = "cpu_count"
	MetricSystemUptime  Metric = "system_uptime"
	MetricBootTime      Metric = "boot_time"
	MetricLoadAverage   Metric = "load_average"
	MetricMemory        Metric = "memory"
	MetricDisks         Metric = "disks"
)

// Placeholder is rendered and reported in place of a metric that could not be read.
const Placeholder = "unavailable"

// ErrEmptyValue is wrapped when the OS answered but returned nothing usable.
var ErrEmptyValue = errors.New("empty value")

// UnavailableMetricError reports a metric that could not be sampled.
type UnavailableMetricError struct {
	Metric Metric
	Err    error
}

func (e *UnavailableMetricError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metric %s unavailable: %v", e.Metric, e.Err)
	}
	return fmt.Sprintf("metric %s unavailable", e.Metric)
}

func (e *UnavailableMetricError) Unwrap() error {
	return e.Err
}

func unavailable(m Metric, err error) *UnavailableMetricError {
	return &UnavailableMetricError{Metric: m, Err: err}
}
