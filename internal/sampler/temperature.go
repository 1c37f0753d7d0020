package sampler

import (
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// NoTemperature is reported when no CPU sensor is present.
const NoTemperature = "0"

// cpuTemperature returns the reading of the first sensor whose key contains
// "cpu" in any case. Later CPU sensors are ignored.
func cpuTemperature(sensors []host.TemperatureStat) string {
	for _, s := range sensors {
		if strings.Contains(strings.ToLower(s.SensorKey), "cpu") {
			return strconv.FormatFloat(s.Temperature, 'f', -1, 64)
		}
	}
	return NoTemperature
}
