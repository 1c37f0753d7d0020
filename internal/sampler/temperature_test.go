package sampler

import (
	"testing"

	"github.com/shirou/gopsutil/v3/host"
)

func TestCPUTemperature(t *testing.T) {
	tests := []struct {
		name    string
		sensors []host.TemperatureStat
		want    string
	}{
		{
			name: "no sensors",
			want: NoTemperature,
		},
		{
			name: "no cpu sensor",
			sensors: []host.TemperatureStat{
				{SensorKey: "acpitz", Temperature: 30},
				{SensorKey: "nvme_composite", Temperature: 41.5},
			},
			want: NoTemperature,
		},
		{
			name: "first cpu sensor wins",
			sensors: []host.TemperatureStat{
				{SensorKey: "acpitz", Temperature: 30},
				{SensorKey: "coretemp_cpu_package", Temperature: 45},
				{SensorKey: "cpu_thermal", Temperature: 99},
			},
			want: "45",
		},
		{
			name: "case insensitive",
			sensors: []host.TemperatureStat{
				{SensorKey: "CPU Die", Temperature: 52.25},
			},
			want: "52.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cpuTemperature(tt.sensors); got != tt.want {
				t.Errorf("cpuTemperature() = %q, want %q", got, tt.want)
			}
		})
	}
}
