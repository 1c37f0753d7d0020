package plugin

import (
	"context"
	"strconv"

	"github.com/bc-dunia/sysinfo/internal/report"
	"github.com/bc-dunia/sysinfo/internal/sampler"
)

const (
	TargetMyself = "myself"
	TargetStatus = "status"
)

// MyselfTarget reports raw identity and uptime values, one record per key:
// uptime, sw_uptime, hostname, os, temperature.
type MyselfTarget struct{}

func (MyselfTarget) Name() string {
	return TargetMyself
}

func (MyselfTarget) Reports(ctx context.Context, p *Plugin) []report.Report {
	sys := p.sampler.System()
	enc := p.encoder

	uptime := sampler.Placeholder
	if up, err := sys.Uptime(ctx); err != nil {
		p.unavailable(ctx, err)
	} else {
		uptime = strconv.FormatUint(up, 10)
	}

	hostname, err := sys.Hostname(ctx)
	if err != nil {
		p.unavailable(ctx, err)
		hostname = sampler.Placeholder
	}

	osName, err := sys.OSName(ctx)
	if err != nil {
		p.unavailable(ctx, err)
		osName = sampler.Placeholder
	}

	return []report.Report{
		enc.Encode(report.KeyUptime, uptime),
		enc.Encode(report.KeySWUptime, strconv.FormatUint(p.SoftwareUptime(), 10)),
		enc.Encode(report.KeyHostname, hostname),
		enc.Encode(report.KeyOS, osName),
		enc.Encode(report.KeyTemperature, sys.CPUTemperature(ctx)),
	}
}

// StatusTarget reports the full status text as a single record.
type StatusTarget struct{}

func (StatusTarget) Name() string {
	return TargetStatus
}

func (StatusTarget) Reports(ctx context.Context, p *Plugin) []report.Report {
	return []report.Report{p.encoder.Encode(report.KeyStatus, p.status(ctx))}
}
