// Package tui implements the interactive dashboard: one tab per metric
// class, each rendering its live chart onto a braille canvas.
package tui

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/pulseboard/chart"
	"gitlab.com/tinyland/lab/pulseboard/display/widgets"
	"gitlab.com/tinyland/lab/pulseboard/internal/format"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
	"gitlab.com/tinyland/lab/pulseboard/sampler"
)

// Tab identifies which tab is currently active.
type Tab int

const (
	TabCPU Tab = iota
	TabDisk
	TabNet
	tabCount // sentinel for wrapping
)

// tabNames maps each Tab value to its display label.
var tabNames = map[Tab]string{
	TabCPU:  "CPU",
	TabDisk: "Disk",
	TabNet:  "Network",
}

// tabCharts maps each tab to its chart configuration. History capacity is
// set by the registry, so Capacity stays zero here.
var tabCharts = map[Tab]metrics.ChartConfig{
	TabCPU:  {Title: "CPU", Class: metrics.ClassCPU, Unit: "%"},
	TabDisk: {Title: "Disk", Class: metrics.ClassDisk, Unit: " op/s"},
	TabNet:  {Title: "Network", Class: metrics.ClassNet, Unit: " Mbps"},
}

// compactHeight is the content height, in rows, below which the braille
// chart gives way to one sparkline per series.
const compactHeight = 8

// tickMsg drives the redraw poll.
type tickMsg time.Time

// Model is the top-level Bubbletea model for the pulseboard TUI.
type Model struct {
	activeTab Tab
	width     int
	height    int
	ready     bool
	paused    bool
	showHelp  bool

	registry *metrics.Registry
	sampler  *sampler.Sampler
	renderer *chart.Renderer
	zones    *zone.Manager
	help     help.Model

	// chartView is the last rasterized chart, kept between redraws so a
	// throttled tick still has something to show.
	chartView string
	lastDraw  time.Time
}

// NewModel wires the dashboard to a registry being filled by the sampler.
func NewModel(registry *metrics.Registry, smp *sampler.Sampler, renderer *chart.Renderer) Model {
	return Model{
		activeTab: TabCPU,
		registry:  registry,
		sampler:   smp,
		renderer:  renderer,
		zones:     zone.New(),
		help:      help.New(),
	}
}

// Close releases the mouse zone manager. Call after the program exits.
func (m Model) Close() {
	m.zones.Close()
}

// pollInterval is the UI tick: half the redraw window, so a coalesced
// redraw is released promptly once the window elapses.
func (m Model) pollInterval() time.Duration {
	p := m.renderer.Throttle().Interval() / 2
	if p < 50*time.Millisecond {
		p = 50 * time.Millisecond
	}
	return p
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.pollInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model. It handles key presses, mouse clicks on the
// tab bar, window resizes, and the redraw tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.activeTab = (m.activeTab + 1) % tabCount
			m.redrawNow()
		case key.Matches(msg, keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			m.redrawNow()
		case key.Matches(msg, keys.Tab1):
			m.activeTab = TabCPU
			m.redrawNow()
		case key.Matches(msg, keys.Tab2):
			m.activeTab = TabDisk
			m.redrawNow()
		case key.Matches(msg, keys.Tab3):
			m.activeTab = TabNet
			m.redrawNow()
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			break
		}
		for i := Tab(0); i < tabCount; i++ {
			if m.zones.Get(tabZoneID(i)).InBounds(msg) {
				m.activeTab = i
				m.redrawNow()
				break
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.redrawNow()

	case tickMsg:
		if m.ready && !m.paused {
			th := m.renderer.Throttle()
			if th.Request() || th.Ready() {
				m.redraw()
			}
		}
		return m, m.tick()
	}

	return m, nil
}

// redrawNow bypasses the throttle for user-initiated changes: a tab switch
// or resize must not show the previous tab's chart for a window.
func (m *Model) redrawNow() {
	if m.ready {
		m.redraw()
	}
}

// redraw rasterizes the active tab's chart into chartView.
func (m *Model) redraw() {
	w, h := m.contentSize()
	if w < 1 || h < 1 {
		m.chartView = ""
		return
	}

	cfg := tabCharts[m.activeTab]
	views := m.registry.Snapshot(cfg)
	frame := metrics.BuildFrame(cfg.Title, cfg.Unit, views)

	if h < compactHeight {
		m.chartView = renderCompact(frame, w, h)
	} else {
		canvas := chart.NewBraille(w, h)
		m.renderer.Draw(frame, canvas)
		m.chartView = canvas.Render()
	}
	m.lastDraw = time.Now()
}

// contentSize is the cell area available to the chart between the header
// and the footer.
func (m Model) contentSize() (int, int) {
	return m.width, m.height - 5
}

// View implements tea.Model. It renders the header, active chart, and
// footer, and registers the mouse zones marked during rendering.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	content := styleContent.Width(m.width).Render(m.chartView)
	footer := m.renderFooter()

	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

// renderHeader renders the tab bar with the active tab highlighted. Each
// tab is marked as a mouse zone so clicks can switch tabs.
func (m Model) renderHeader() string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		name := tabNames[i]
		var rendered string
		if i == m.activeTab {
			rendered = styleActiveTab.Render(name)
		} else {
			rendered = styleInactiveTab.Render(name)
		}
		tabs = append(tabs, m.zones.Mark(tabZoneID(i), rendered))
	}

	pause := ""
	if m.paused {
		pause = styleErr.Render("  [paused]")
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + pause
	return styleHeader.Width(m.width).Render(tabBar)
}

// renderFooter renders the system summary line and the help line.
func (m Model) renderFooter() string {
	stats := m.sampler.Footer()

	parts := []string{
		fmt.Sprintf("load %.2f %.2f %.2f", stats.Load1, stats.Load5, stats.Load15),
		"root " + widgets.RenderMiniGauge(stats.RootUsedPct, 10) + fmt.Sprintf(" %.0f%%", stats.RootUsedPct),
	}

	if m.activeTab == TabDisk {
		if line := diskBytesSummary(m.sampler.DiskBytes()); line != "" {
			parts = append(parts, line)
		}
	}
	if !m.lastDraw.IsZero() {
		parts = append(parts, "drawn "+m.lastDraw.Format("15:04:05"))
	}

	summary := styleFooter.Width(m.width).Render(strings.Join(parts, "  |  "))

	var helpView string
	if m.showHelp {
		helpView = m.help.FullHelpView(keys.FullHelp())
	} else {
		helpView = m.help.ShortHelpView(keys.ShortHelp())
	}

	return lipgloss.JoinVertical(lipgloss.Left, summary, helpView)
}

// renderCompact draws one sparkline per series when the window is too
// short for the braille chart.
func renderCompact(f metrics.Frame, w, h int) string {
	if f.Empty() {
		return "collecting samples..."
	}

	rows := make([]string, 0, h)
	for _, view := range f.Series {
		if len(rows) >= h {
			break
		}
		label := fmt.Sprintf("%-12s", view.EntityKey+" "+view.Channel)
		width := w - len(label) - 10
		if width < 5 {
			width = 5
		}
		spark := widgets.RenderSparkline(widgets.SparklineConfig{
			Data:  seriesValues(view),
			Width: width,
			Max:   f.YMax,
			Color: lipgloss.Color(view.Color),
		})
		rows = append(rows, label+spark+" "+format.Value(view.Current)+f.Unit)
	}
	return strings.Join(rows, "\n")
}

func seriesValues(view metrics.SeriesView) []float64 {
	vals := make([]float64, len(view.Points))
	for i, p := range view.Points {
		vals[i] = p.Value
	}
	return vals
}

// diskBytesSummary flattens per-device byte rates into one footer segment,
// devices in stable order.
func diskBytesSummary(rates map[string]sampler.DiskByteRates) string {
	if len(rates) == 0 {
		return ""
	}
	devices := make([]string, 0, len(rates))
	for dev := range rates {
		devices = append(devices, dev)
	}
	sort.Strings(devices)

	parts := make([]string, 0, len(devices))
	for _, dev := range devices {
		r := rates[dev]
		parts = append(parts, fmt.Sprintf("%s r:%s w:%s", dev, format.Bytes(r.ReadBps), format.Bytes(r.WriteBps)))
	}
	return strings.Join(parts, " ")
}

func tabZoneID(t Tab) string {
	return "tab-" + strconv.Itoa(int(t))
}

// DetectTerminalSize returns the current terminal dimensions for non-TUI
// rendering. It attempts TTY detection first via the term package, then
// falls back to COLUMNS/LINES environment variables, and finally to 80x24.
func DetectTerminalSize() (width, height int) {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err == nil && w > 0 && h > 0 {
		return w, h
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if w, err := strconv.Atoi(cols); err == nil && w > 0 {
			width = w
		}
	}
	if lines := os.Getenv("LINES"); lines != "" {
		if h, err := strconv.Atoi(lines); err == nil && h > 0 {
			height = h
		}
	}

	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}
	return width, height
}
