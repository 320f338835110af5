package sampler

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

// collectCPU reads per-core tick counters from /proc/stat and appends a
// usage percentage per core. Usage is the busy share of the elapsed window:
// busy-tick rate divided by total-tick rate, so it is independent of the
// kernel's USER_HZ and of the sampling period.
func (s *Sampler) collectCPU(ts time.Time) error {
	f, err := s.openProcStat()
	if err != nil {
		return fmt.Errorf("sampler: open /proc/stat: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// Per-core lines only; the aggregate "cpu " line is skipped.
		if !strings.HasPrefix(line, "cpu") || strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		core := fields[0]

		var total, idle uint64
		ok := true
		for i := 1; i < len(fields); i++ {
			v, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				ok = false
				break
			}
			total += v
			if i == 4 { // idle column
				idle = v
			}
		}
		if !ok {
			continue
		}
		busy := total - idle

		s.registry.Ensure(core, metrics.ClassCPU)

		busyRate, busyOK := s.rates.Compute(core, chanBusyTicks, ts, float64(busy))
		totalRate, totalOK := s.rates.Compute(core, chanTotalTicks, ts, float64(total))
		if !busyOK || !totalOK || totalRate.Value <= 0 {
			continue
		}

		usage := busyRate.Value / totalRate.Value * 100.0
		if usage < 0 {
			usage = 0
		}
		if usage > 100 {
			usage = 100
		}

		if err := s.registry.Append(core, metrics.ChannelUsage, metrics.RatePoint{Time: ts, Value: usage}); err != nil {
			s.logger.Error("cpu append rejected", "core", core, "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sampler: scan /proc/stat: %w", err)
	}
	return nil
}
