package sampler

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

// collectNet reads /proc/net/dev and appends in/out rates in Mbps per
// interface. The loopback interface is not tracked.
func (s *Sampler) collectNet(ts time.Time) error {
	f, err := s.openProcNetDev()
	if err != nil {
		return fmt.Errorf("sampler: open /proc/net/dev: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= 2 { // two header lines
			continue
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}

		iface := strings.TrimSuffix(fields[0], ":")
		if iface == "lo" {
			continue
		}

		rxBytes, err1 := strconv.ParseUint(fields[1], 10, 64)
		txBytes, err2 := strconv.ParseUint(fields[9], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}

		s.registry.Ensure(iface, metrics.ClassNet)

		if p, ok := s.rates.Compute(iface, metrics.ChannelIn, ts, float64(rxBytes)); ok {
			if err := s.registry.Append(iface, metrics.ChannelIn, p); err != nil {
				s.logger.Error("net append rejected", "interface", iface, "error", err)
			}
		}
		if p, ok := s.rates.Compute(iface, metrics.ChannelOut, ts, float64(txBytes)); ok {
			if err := s.registry.Append(iface, metrics.ChannelOut, p); err != nil {
				s.logger.Error("net append rejected", "interface", iface, "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sampler: scan /proc/net/dev: %w", err)
	}
	return nil
}
