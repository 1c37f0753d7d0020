// Package status renders a sampler.Snapshot as the plugin's human-readable
// status block.
package status

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bc-dunia/sysinfo/internal/sampler"
)

// BootTimeLayout is used for the "Booted" line, rendered in local time.
const BootTimeLayout = "2006-01-02 15:04:05 -07:00"

// Section headers, in output order.
const (
	SectionSoftware    = "Software Info"
	SectionIP          = "IP Info"
	SectionSystem      = "System Info"
	SectionTemperature = "Temperature Info"
	SectionCPU         = "CPU Usage"
	SectionMemory      = "Memory Info"
	SectionDisk        = "Disk Info"
)

// Sections lists every header in the order Format emits them.
var Sections = []string{
	SectionSoftware,
	SectionIP,
	SectionSystem,
	SectionTemperature,
	SectionCPU,
	SectionMemory,
	SectionDisk,
}

// Format renders snap. It never fails: fields recorded as unavailable in the
// snapshot are replaced by sampler.Placeholder.
func Format(snap *sampler.Snapshot) string {
	w := &writer{}

	w.header(SectionSoftware)
	w.line("Uptime: %s", FormatDuration(snap.SoftwareUptime))

	w.header(SectionIP)
	w.line("WAN IP: %s", orPlaceholder(snap, sampler.MetricWANIP, snap.WANIP))

	w.header(SectionSystem)
	w.line("OS: %s", orPlaceholder(snap, sampler.MetricOSName, snap.OSName))
	w.line("Kernel Version: %s", orPlaceholder(snap, sampler.MetricKernelVersion, snap.KernelVersion))
	w.line("OS Version: %s", orPlaceholder(snap, sampler.MetricOSVersion, snap.OSVersion))
	w.line("Host Name: %s", orPlaceholder(snap, sampler.MetricHostname, snap.Hostname))
	w.line("CPU Architecture: %s", orPlaceholder(snap, sampler.MetricArch, snap.Arch))
	w.line("NB CPUs: %s", orPlaceholder(snap, sampler.MetricCPUCount, strconv.Itoa(snap.CPUCount)))
	w.line("Uptime: %s", orPlaceholder(snap, sampler.MetricSystemUptime, FormatDuration(snap.SystemUptime)))
	w.line("Booted: %s", orPlaceholder(snap, sampler.MetricBootTime, snap.BootTime.Local().Format(BootTimeLayout)))

	w.header(SectionTemperature)
	w.line("Temperature: %s°C", snap.Temperature)

	w.header(SectionCPU)
	if snap.Available(sampler.MetricLoadAverage) {
		w.line("one minute: %s%%, five minutes: %s%%, fifteen minutes: %s%%",
			formatFloat(snap.Load.One), formatFloat(snap.Load.Five), formatFloat(snap.Load.Fifteen))
	} else {
		w.line("%s", sampler.Placeholder)
	}

	w.header(SectionMemory)
	if snap.Available(sampler.MetricMemory) {
		w.line("%s/%s (%s)",
			humanize.IBytes(snap.MemoryAvailable),
			humanize.IBytes(snap.MemoryTotal),
			MemoryPercent(snap.MemoryAvailable, snap.MemoryTotal))
	} else {
		w.line("%s", sampler.Placeholder)
	}

	w.header(SectionDisk)
	switch {
	case !snap.Available(sampler.MetricDisks):
		w.line("%s", sampler.Placeholder)
	case len(snap.Disks) == 0:
		w.line("no disks found")
	default:
		for _, d := range snap.Disks {
			w.line("%s: %s, %s, %s/%s (%s)",
				d.Name, d.Kind, d.FileSystem,
				humanize.IBytes(d.Available),
				humanize.IBytes(d.Total),
				DiskPercent(d.Available, d.Total))
		}
	}

	return w.String()
}

// MemoryPercent is available*100/total in integer arithmetic.
func MemoryPercent(available, total uint64) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(available*100/total))
}

// DiskPercent is available*100/total in floating point.
func DiskPercent(available, total uint64) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(available)*100/float64(total))
}

func orPlaceholder(snap *sampler.Snapshot, m sampler.Metric, v string) string {
	if !snap.Available(m) {
		return sampler.Placeholder
	}
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type writer struct {
	strings.Builder
}

func (w *writer) header(name string) {
	w.WriteString(name)
	w.WriteString(":\n")
}

func (w *writer) line(format string, args ...any) {
	w.WriteByte('\t')
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}
