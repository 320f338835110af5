// Package sampler reads raw OS counters from /proc on a fixed period and
// drives the metrics pipeline: new entities are registered on first
// observation, counters run through the rate calculator, and produced rate
// points land in the registry's rolling series.
//
// The sampling loop is the single writer of the registry. It never raises
// out of a tick: a failed read degrades to "that entity stops advancing".
package sampler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

// DefaultPeriod is the sampling tick used when the config does not set one.
const DefaultPeriod = 500 * time.Millisecond

// Internal rate-calculator channels for CPU tick counters. These never
// reach the registry; only the derived usage percentage does.
const (
	chanBusyTicks  = "busy_ticks"
	chanTotalTicks = "total_ticks"
	chanReadBytes  = "read_bytes"
	chanWriteBytes = "write_bytes"
)

// FooterStats carries the slow-moving gauges shown under the charts.
type FooterStats struct {
	// RootUsedPct is the root filesystem usage percentage (0-100).
	RootUsedPct float64
	// Load1, Load5, Load15 are the load averages from /proc/loadavg.
	Load1  float64
	Load5  float64
	Load15 float64
}

// DiskByteRates holds byte-per-second rates for one disk, shown as legend
// text next to the ops/sec chart.
type DiskByteRates struct {
	ReadBps  float64
	WriteBps float64
}

// Sampler periodically reads CPU, disk, and network counters and appends
// derived rates into the registry.
type Sampler struct {
	logger   *slog.Logger
	registry *metrics.Registry
	rates    *metrics.RateCalculator
	period   time.Duration
	now      func() time.Time

	// warned tracks failure types already logged, so a persistent failure
	// warns once at onset instead of flooding the log every tick.
	warned map[string]bool

	mu        sync.RWMutex
	footer    FooterStats
	diskBytes map[string]DiskByteRates

	// Overridable file openers for testing.
	openProcStat      func() (io.ReadCloser, error)
	openProcDiskstats func() (io.ReadCloser, error)
	openProcNetDev    func() (io.ReadCloser, error)
	openProcLoadavg   func() (io.ReadCloser, error)
	statfsFunc        func(path string, buf *unix.Statfs_t) error
}

// New creates a Sampler writing into registry. A non-positive period falls
// back to DefaultPeriod; a nil logger discards output.
func New(registry *metrics.Registry, policy metrics.ResetPolicy, period time.Duration, logger *slog.Logger) *Sampler {
	if period <= 0 {
		period = DefaultPeriod
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	rates := metrics.NewRateCalculator(policy)
	// Network channels are plotted in megabits per second.
	rates.SetScale(metrics.ChannelIn, 8.0/1e6)
	rates.SetScale(metrics.ChannelOut, 8.0/1e6)

	return &Sampler{
		logger:    logger,
		registry:  registry,
		rates:     rates,
		period:    period,
		now:       time.Now,
		warned:    make(map[string]bool),
		diskBytes: make(map[string]DiskByteRates),
		openProcStat: func() (io.ReadCloser, error) {
			return os.Open("/proc/stat")
		},
		openProcDiskstats: func() (io.ReadCloser, error) {
			return os.Open("/proc/diskstats")
		},
		openProcNetDev: func() (io.ReadCloser, error) {
			return os.Open("/proc/net/dev")
		},
		openProcLoadavg: func() (io.ReadCloser, error) {
			return os.Open("/proc/loadavg")
		},
		statfsFunc: unix.Statfs,
	}
}

// Period returns the sampling tick length.
func (s *Sampler) Period() time.Duration { return s.period }

// Run ticks CollectOnce at the sampling period until the context is
// cancelled. The first pass runs immediately so charts seed their baselines
// without waiting a full period.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.CollectOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sampler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.CollectOnce(ctx)
		}
	}
}

// CollectOnce performs a single sampling pass over all resource classes.
// Each class is read independently; one failing class never aborts the
// others.
func (s *Sampler) CollectOnce(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	start := s.now()

	if err := s.collectCPU(start); err != nil {
		s.warnOnce("cpu", err)
	} else {
		s.clearWarn("cpu")
	}

	if err := s.collectDisk(start); err != nil {
		s.warnOnce("disk", err)
	} else {
		s.clearWarn("disk")
	}

	if err := s.collectNet(start); err != nil {
		s.warnOnce("net", err)
	} else {
		s.clearWarn("net")
	}

	s.collectFooter()

	s.logger.Debug("sampling pass complete",
		"duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds()),
	)
}

// Footer returns the latest slow gauges (root fs usage, load averages).
func (s *Sampler) Footer() FooterStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.footer
}

// DiskBytes returns the latest byte-per-second rates per disk.
func (s *Sampler) DiskBytes() map[string]DiskByteRates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]DiskByteRates, len(s.diskBytes))
	for k, v := range s.diskBytes {
		out[k] = v
	}
	return out
}

// warnOnce logs a warning the first tick a failure type appears. Subsequent
// identical failures stay silent until the read succeeds again.
func (s *Sampler) warnOnce(kind string, err error) {
	if s.warned[kind] {
		return
	}
	s.warned[kind] = true
	s.logger.Warn("counter read failed, entities of this class stop advancing",
		"class", kind,
		"error", err,
	)
}

// clearWarn re-arms the onset warning for a failure type after a successful
// read.
func (s *Sampler) clearWarn(kind string) {
	if s.warned[kind] {
		s.logger.Info("counter read recovered", "class", kind)
		delete(s.warned, kind)
	}
}
