package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/cache"
	"gitlab.com/tinyland/lab/pulseboard/config"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
	"gitlab.com/tinyland/lab/pulseboard/sampler"
)

// snapshotKey is the cache entry the daemon publishes and the status
// command reads.
const snapshotKey = "snapshot"

// snapshotEntry is one entity channel's latest rate.
type snapshotEntry struct {
	Entity  string  `json:"entity"`
	Class   string  `json:"class"`
	Channel string  `json:"channel"`
	Rate    float64 `json:"rate"`
}

// snapshot is the daemon's published view: latest rates only, never
// history. The TUI keeps its own in-process history.
type snapshot struct {
	Taken       time.Time       `json:"taken"`
	Entries     []snapshotEntry `json:"entries"`
	RootUsedPct float64         `json:"root_used_pct"`
	Load1       float64         `json:"load1"`
	Load5       float64         `json:"load5"`
	Load15      float64         `json:"load15"`
}

// daemon manages the background sampling loop that periodically collects
// system metrics and publishes the latest readings to the shared cache.
type daemon struct {
	config   *config.Config
	logger   *slog.Logger
	store    *cache.Store
	registry *metrics.Registry
	sampler  *sampler.Sampler
	pidFile  string
}

// newDaemon creates a daemon with the registry and sampler wired from the
// configuration. It initialises the cache store the snapshot is published to.
func newDaemon(cfg *config.Config, logger *slog.Logger) (*daemon, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := cache.NewStore(cfg.Daemon.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("daemon: create cache store: %w", err)
	}

	registry := metrics.NewRegistry(cfg.Charts.Palette, cfg.SeriesCaps(), logger)
	smp := sampler.New(registry, cfg.ResetPolicy(), cfg.SamplingPeriod(), logger)

	pidFile := filepath.Join(cfg.Daemon.CacheDir, "pulseboard.pid")

	return &daemon{
		config:   cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		sampler:  smp,
		pidFile:  pidFile,
	}, nil
}

// writePIDFile writes the current process PID to the PID file.
// The PID file path is {CacheDir}/pulseboard.pid.
func (d *daemon) writePIDFile() error {
	// Ensure the directory exists.
	dir := filepath.Dir(d.pidFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create PID file directory: %w", err)
	}
	pid := os.Getpid()
	data := []byte(strconv.Itoa(pid))
	if err := os.WriteFile(d.pidFile, data, 0o644); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	d.logger.Info("wrote PID file", "path", d.pidFile, "pid", pid)
	return nil
}

// removePIDFile removes the PID file on shutdown.
func (d *daemon) removePIDFile() {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		d.logger.Error("failed to remove PID file", "path", d.pidFile, "error", err)
		return
	}
	d.logger.Info("removed PID file", "path", d.pidFile)
}

// isRunning checks if another daemon instance is already running by reading
// the PID file and checking if the process exists. If the PID file contains
// a stale PID (process no longer exists), the file is cleaned up.
func (d *daemon) isRunning() (bool, int) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		// Corrupt PID file -- remove it.
		d.logger.Warn("corrupt PID file, removing", "path", d.pidFile, "content", string(data))
		os.Remove(d.pidFile)
		return false, 0
	}

	// Check if the process exists by sending signal 0.
	process, err := os.FindProcess(pid)
	if err != nil {
		// On Unix, FindProcess never returns an error, but handle it anyway.
		os.Remove(d.pidFile)
		return false, 0
	}

	err = process.Signal(syscall.Signal(0))
	if err != nil {
		// Process does not exist -- stale PID file.
		d.logger.Warn("stale PID file, removing", "path", d.pidFile, "pid", pid)
		os.Remove(d.pidFile)
		return false, 0
	}

	return true, pid
}

// run starts the daemon sampling loop. It checks for an existing instance,
// writes a PID file, runs an immediate sampling pass, then ticks at the
// configured period until the context is cancelled.
func (d *daemon) run(ctx context.Context) error {
	// Check if another instance is running.
	if running, pid := d.isRunning(); running {
		return fmt.Errorf("daemon already running (PID %d)", pid)
	}

	// Write PID file.
	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	defer d.removePIDFile()

	ticker := time.NewTicker(d.config.SamplingPeriod())
	defer ticker.Stop()

	// Run immediately on start.
	d.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon shutting down gracefully")
			return ctx.Err()
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

// runOnce performs a single sampling pass and publishes the result.
func (d *daemon) runOnce(ctx context.Context) {
	start := time.Now()
	d.logger.Debug("starting sampling pass")

	d.sampler.CollectOnce(ctx)

	if err := d.publishSnapshot(); err != nil {
		d.logger.Error("snapshot publish failed", "error", err)
	}

	elapsed := time.Since(start)
	d.logger.Debug("sampling pass complete",
		"duration", fmt.Sprintf("%dms", elapsed.Milliseconds()),
	)
}

// publishSnapshot writes the latest rate of every entity channel to the
// cache, atomically replacing the previous snapshot.
func (d *daemon) publishSnapshot() error {
	snap := snapshot{Taken: time.Now()}

	for _, class := range []metrics.Class{metrics.ClassCPU, metrics.ClassDisk, metrics.ClassNet} {
		for _, key := range d.registry.Entities(class) {
			for _, channel := range class.Channels() {
				p, ok := d.registry.Latest(key, channel)
				if !ok {
					continue
				}
				snap.Entries = append(snap.Entries, snapshotEntry{
					Entity:  key,
					Class:   class.String(),
					Channel: channel,
					Rate:    p.Value,
				})
			}
		}
	}

	footer := d.sampler.Footer()
	snap.RootUsedPct = footer.RootUsedPct
	snap.Load1 = footer.Load1
	snap.Load5 = footer.Load5
	snap.Load15 = footer.Load15

	return d.store.Set(snapshotKey, snap)
}
