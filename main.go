// pulseboard is a live system-health dashboard for the terminal.
//
// It samples cumulative kernel counters (per-core CPU ticks, disk I/O,
// per-interface network bytes), converts them into rates, and renders
// rolling charts in an interactive TUI.
//
// Usage:
//
//	pulseboard [flags]
//
// Flags:
//
//	-tui              Launch the interactive dashboard (default mode)
//	-daemon           Run the headless sampling daemon
//	-status           Print the daemon's latest readings
//	-once             Sample briefly and print one chart per metric class
//	-config string    Path to configuration file (default: ~/.config/pulseboard/config.yaml)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/pulseboard/cache"
	"gitlab.com/tinyland/lab/pulseboard/chart"
	"gitlab.com/tinyland/lab/pulseboard/config"
	"gitlab.com/tinyland/lab/pulseboard/display/tui"
	"gitlab.com/tinyland/lab/pulseboard/internal/format"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
	"gitlab.com/tinyland/lab/pulseboard/sampler"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/pulseboard/config.yaml)")
		runTUI      = flag.Bool("tui", false, "Launch the interactive dashboard (default mode)")
		runDaemon   = flag.Bool("daemon", false, "Run the headless sampling daemon")
		runStatus   = flag.Bool("status", false, "Print the daemon's latest readings")
		runOnce     = flag.Bool("once", false, "Sample briefly and print one chart per metric class")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulseboard %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Load configuration
	// ---------------------------------------------------------------

	path := *configPath
	if path == "" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, ".config", "pulseboard", "config.yaml")
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// ---------------------------------------------------------------
	// Mode dispatch
	// ---------------------------------------------------------------

	switch {
	case *runDaemon:
		logger := newLogger(cfg, *verbose, true)
		d, err := newDaemon(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daemon init failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "starting pulseboard daemon v%s\n", version)
		if err := d.run(ctx); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "daemon error: %v\n", err)
			os.Exit(1)
		}

	case *runStatus:
		if err := printStatus(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	case *runOnce:
		logger := newLogger(cfg, *verbose, false)
		if err := renderOnce(ctx, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

	default:
		_ = *runTUI // TUI is also the default when no mode flag is given.
		logger := newLogger(cfg, *verbose, true)
		if err := launchTUI(ctx, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
	}
}

// newLogger builds the process logger. Interactive modes log to the
// configured file so output never corrupts the alternate screen; quiet
// failure to open the file falls back to a no-op logger.
func newLogger(cfg *config.Config, verbose, toFile bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if !toFile {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Daemon.LogFile), 0o755); err == nil {
		if f, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			return slog.New(slog.NewTextHandler(f, opts))
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// launchTUI runs the sampler in the background and the Bubbletea program
// in the foreground until quit or signal.
func launchTUI(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before printing error.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			fmt.Fprintf(os.Stderr, "pulseboard: TUI panic: %v\n", r)
			os.Exit(1)
		}
	}()

	registry := metrics.NewRegistry(cfg.Charts.Palette, cfg.SeriesCaps(), logger)
	smp := sampler.New(registry, cfg.ResetPolicy(), cfg.SamplingPeriod(), logger)
	renderer := chart.NewRenderer(cfg.RedrawInterval(), logger)

	model := tui.NewModel(registry, smp, renderer)
	defer model.Close()

	go func() {
		if err := smp.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("sampler stopped", "error", err)
		}
	}()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Quit the program when the context is cancelled by a signal.
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	return err
}

// printStatus reads the daemon's published snapshot from the cache and
// prints it grouped by class.
func printStatus(cfg *config.Config) error {
	store, err := cache.NewStore(cfg.Daemon.CacheDir, nil)
	if err != nil {
		return err
	}

	// A snapshot older than a few periods means the daemon is gone.
	ttl := 5 * cfg.SamplingPeriod()
	if ttl < 5*time.Second {
		ttl = 5 * time.Second
	}

	snap, fresh, err := cache.GetTyped[snapshot](store, snapshotKey, ttl)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("no snapshot found; is the daemon running? (pulseboard -daemon)")
	}

	staleness := ""
	if !fresh {
		staleness = "  (stale)"
	}
	fmt.Printf("snapshot from %s%s\n", format.FormatTimeSince(snap.Taken), staleness)
	fmt.Printf("load %.2f %.2f %.2f  root %.0f%% used\n\n", snap.Load1, snap.Load5, snap.Load15, snap.RootUsedPct)

	byClass := map[string][]snapshotEntry{}
	for _, e := range snap.Entries {
		byClass[e.Class] = append(byClass[e.Class], e)
	}

	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	for _, c := range classes {
		fmt.Printf("%s:\n", c)
		for _, e := range byClass[c] {
			fmt.Printf("  %-12s %-6s %s%s\n", e.Entity, e.Channel, format.Value(e.Rate), classUnit(c))
		}
	}
	return nil
}

// classUnit maps a snapshot class name to its display unit.
func classUnit(class string) string {
	switch class {
	case metrics.ClassCPU.String():
		return "%"
	case metrics.ClassDisk.String():
		return " op/s"
	case metrics.ClassNet.String():
		return " Mbps"
	default:
		return ""
	}
}

// renderOnce samples for a couple of periods and prints one chart per
// class to stdout, sized to the terminal.
func renderOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	registry := metrics.NewRegistry(cfg.Charts.Palette, cfg.SeriesCaps(), logger)
	smp := sampler.New(registry, cfg.ResetPolicy(), cfg.SamplingPeriod(), logger)

	// Rates need a baseline, so take a handful of passes.
	for i := 0; i < 4; i++ {
		smp.CollectOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.SamplingPeriod()):
		}
	}

	width, height := tui.DetectTerminalSize()
	chartHeight := (height - 6) / 3
	if chartHeight < 6 {
		chartHeight = 6
	}

	renderer := chart.NewRenderer(cfg.RedrawInterval(), logger)
	charts := []metrics.ChartConfig{
		{Title: "CPU", Class: metrics.ClassCPU, Unit: "%"},
		{Title: "Disk", Class: metrics.ClassDisk, Unit: " op/s"},
		{Title: "Network", Class: metrics.ClassNet, Unit: " Mbps"},
	}

	for _, cc := range charts {
		frame := metrics.BuildFrame(cc.Title, cc.Unit, registry.Snapshot(cc))
		canvas := chart.NewBraille(width, chartHeight)
		renderer.Draw(frame, canvas)
		fmt.Printf("%s\n%s\n\n", cc.Title, canvas.Render())
	}
	return nil
}
