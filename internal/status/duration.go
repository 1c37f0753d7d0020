package status

import (
	"strconv"
	"strings"
)

// FormatDuration renders seconds as "1d, 2h, 3m, 4s". Leading zero units are
// dropped; zero renders as "0s".
func FormatDuration(seconds uint64) string {
	units := []struct {
		suffix string
		size   uint64
	}{
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}

	parts := make([]string, 0, len(units))
	rest := seconds
	for _, u := range units {
		n := rest / u.size
		rest %= u.size
		if n == 0 && len(parts) == 0 && u.size > 1 {
			continue
		}
		parts = append(parts, strconv.FormatUint(n, 10)+u.suffix)
	}
	return strings.Join(parts, ", ")
}
