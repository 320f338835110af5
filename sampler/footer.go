package sampler

import (
	"bufio"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// collectFooter refreshes the slow gauges: root filesystem usage and load
// averages. These are point-in-time readings, not counters, so they bypass
// the rate calculator. Failures here are soft; the footer simply keeps its
// previous values.
func (s *Sampler) collectFooter() {
	stats := s.Footer()

	if pct, ok := s.readRootUsage(); ok {
		stats.RootUsedPct = pct
	}
	if l1, l5, l15, ok := s.readLoadAvg(); ok {
		stats.Load1, stats.Load5, stats.Load15 = l1, l5, l15
	}

	s.mu.Lock()
	s.footer = stats
	s.mu.Unlock()
}

// readRootUsage computes root filesystem usage via statfs, counting the
// reserved blocks the way df does (used / (used + available)).
func (s *Sampler) readRootUsage() (float64, bool) {
	var stat unix.Statfs_t
	if err := s.statfsFunc("/", &stat); err != nil {
		s.warnOnce("statfs", err)
		return 0, false
	}
	s.clearWarn("statfs")

	used := stat.Blocks - stat.Bfree
	total := used + stat.Bavail
	if total == 0 {
		return 0, false
	}
	return float64(used) / float64(total) * 100.0, true
}

// readLoadAvg parses the three load averages from /proc/loadavg.
func (s *Sampler) readLoadAvg() (float64, float64, float64, bool) {
	f, err := s.openProcLoadavg()
	if err != nil {
		s.warnOnce("loadavg", err)
		return 0, 0, 0, false
	}
	defer f.Close()
	s.clearWarn("loadavg")

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, 0, 0, false
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		return 0, 0, 0, false
	}

	l1, err1 := strconv.ParseFloat(fields[0], 64)
	l5, err2 := strconv.ParseFloat(fields[1], 64)
	l15, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return l1, l5, l15, true
}
