// Package format provides shared value and time formatting for chart
// labels, legends, and the status line.
package format

import (
	"fmt"
	"math"
)

// Value renders a rate compactly for axis labels and legends: "0", "0.4",
// "12", "87.5", "1.2k", "3.4M". Values at or above 10 drop the fraction.
func Value(v float64) string {
	if v < 0 {
		v = 0
	}
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1fM", v/1e6))
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1fk", v/1e3))
	case v >= 10 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return trimZero(fmt.Sprintf("%.1f", v))
	}
}

// Bytes renders a byte-per-second rate with a binary-free unit ladder:
// "512 B/s", "1.2 kB/s", "34 MB/s".
func Bytes(bps float64) string {
	if bps < 0 {
		bps = 0
	}
	switch {
	case bps >= 1e9:
		return fmt.Sprintf("%.1f GB/s", bps/1e9)
	case bps >= 1e6:
		return fmt.Sprintf("%.1f MB/s", bps/1e6)
	case bps >= 1e3:
		return fmt.Sprintf("%.1f kB/s", bps/1e3)
	default:
		return fmt.Sprintf("%.0f B/s", bps)
	}
}

// trimZero drops a trailing ".0" before the unit suffix.
func trimZero(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' && i+2 < len(s) && s[i+1] == '0' {
			return s[:i] + s[i+2:]
		}
	}
	return s
}
