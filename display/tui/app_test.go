package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/pulseboard/chart"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
	"gitlab.com/tinyland/lab/pulseboard/sampler"
)

// isQuitCmd executes a tea.Cmd and returns true if it produces a tea.QuitMsg.
func isQuitCmd(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	msg := cmd()
	_, ok := msg.(tea.QuitMsg)
	return ok
}

// newTestModel builds a model over a registry pre-filled with a little CPU
// and network data.
func newTestModel(t *testing.T) Model {
	t.Helper()

	registry := metrics.NewRegistry(nil, nil, nil)
	for _, key := range []string{"cpu0", "cpu1"} {
		registry.Ensure(key, metrics.ClassCPU)
		for i := 0; i < 5; i++ {
			p := metrics.RatePoint{Time: time.Now(), Value: float64(10 * (i + 1))}
			if err := registry.Append(key, metrics.ChannelUsage, p); err != nil {
				t.Fatalf("Append: %v", err)
			}
		}
	}
	registry.Ensure("eth0", metrics.ClassNet)
	if err := registry.Append("eth0", metrics.ChannelIn, metrics.RatePoint{Time: time.Now(), Value: 1.5}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	smp := sampler.New(registry, metrics.ResetRebaseline, time.Second, nil)
	renderer := chart.NewRenderer(time.Millisecond, nil)
	return NewModel(registry, smp, renderer)
}

// resize delivers a window size and returns the updated model.
func resize(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return updated.(Model)
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)

	if m.activeTab != TabCPU {
		t.Errorf("expected activeTab to be TabCPU, got %d", m.activeTab)
	}
	if m.ready {
		t.Error("expected ready to be false before the first resize")
	}
	if m.paused {
		t.Error("expected paused to be false")
	}
}

func TestModel_Init(t *testing.T) {
	m := newTestModel(t)
	if cmd := m.Init(); cmd == nil {
		t.Error("expected Init() to schedule the redraw tick")
	}
}

func TestModel_Update_Quit(t *testing.T) {
	m := newTestModel(t)
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	_, cmd := m.Update(msg)

	if !isQuitCmd(cmd) {
		t.Error("expected 'q' key to produce tea.Quit command")
	}
}

func TestModel_Update_CtrlC(t *testing.T) {
	m := newTestModel(t)
	msg := tea.KeyMsg{Type: tea.KeyCtrlC}
	_, cmd := m.Update(msg)

	if !isQuitCmd(cmd) {
		t.Error("expected ctrl+c to produce tea.Quit command")
	}
}

func TestModel_Update_NextTab(t *testing.T) {
	m := newTestModel(t)

	// CPU -> Disk
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.activeTab != TabDisk {
		t.Errorf("expected TabDisk after first tab, got %d", m.activeTab)
	}

	// Disk -> Network
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.activeTab != TabNet {
		t.Errorf("expected TabNet after second tab, got %d", m.activeTab)
	}

	// Network -> CPU (wraps)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	if m.activeTab != TabCPU {
		t.Errorf("expected TabCPU after third tab (wrap), got %d", m.activeTab)
	}
}

func TestModel_Update_PrevTab(t *testing.T) {
	m := newTestModel(t)

	// CPU -> Network (wraps backwards)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.activeTab != TabNet {
		t.Errorf("expected TabNet after shift+tab from TabCPU, got %d", m.activeTab)
	}
}

func TestModel_Update_NumberKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want Tab
	}{
		{'1', TabCPU},
		{'2', TabDisk},
		{'3', TabNet},
	}

	for _, tt := range tests {
		m := newTestModel(t)
		m.activeTab = TabNet // start somewhere else for '1'
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{tt.key}})
		m = updated.(Model)
		if m.activeTab != tt.want {
			t.Errorf("key %c: expected tab %d, got %d", tt.key, tt.want, m.activeTab)
		}
	}
}

func TestModel_Update_PauseToggles(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(Model)
	if !m.paused {
		t.Error("expected paused after 'p'")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(Model)
	if m.paused {
		t.Error("expected unpaused after second 'p'")
	}
}

func TestModel_Update_HelpToggles(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = updated.(Model)
	if !m.showHelp {
		t.Error("expected showHelp after '?'")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m := resize(t, newTestModel(t), 100, 30)

	if !m.ready {
		t.Error("expected ready after window size message")
	}
	if m.width != 100 || m.height != 30 {
		t.Errorf("expected 100x30, got %dx%d", m.width, m.height)
	}
	if m.chartView == "" {
		t.Error("expected resize to rasterize the chart")
	}
}

func TestModel_Update_TickRedraws(t *testing.T) {
	m := resize(t, newTestModel(t), 100, 30)
	m.chartView = ""

	// The renderer throttle is 1ms in tests; let it open.
	time.Sleep(5 * time.Millisecond)

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)

	if m.chartView == "" {
		t.Error("expected tick to redraw the chart")
	}
	if cmd == nil {
		t.Error("expected tick to reschedule itself")
	}
}

func TestModel_Update_PausedTickSkipsRedraw(t *testing.T) {
	m := resize(t, newTestModel(t), 100, 30)
	m.paused = true
	m.chartView = ""

	time.Sleep(5 * time.Millisecond)

	updated, _ := m.Update(tickMsg(time.Now()))
	m = updated.(Model)

	if m.chartView != "" {
		t.Error("expected paused tick to leave the chart untouched")
	}
}

func TestView_NotReady(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected initializing placeholder, got %q", got)
	}
}

func TestView_RendersTabsAndFooter(t *testing.T) {
	m := resize(t, newTestModel(t), 100, 30)

	view := m.View()
	for _, label := range []string{"CPU", "Disk", "Network"} {
		if !strings.Contains(view, label) {
			t.Errorf("expected view to contain tab label %q", label)
		}
	}
	if !strings.Contains(view, "load") {
		t.Error("expected view to contain the load average segment")
	}
}

func TestView_PausedIndicator(t *testing.T) {
	m := resize(t, newTestModel(t), 100, 30)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = updated.(Model)

	if !strings.Contains(m.View(), "[paused]") {
		t.Error("expected paused indicator in the header")
	}
}

func TestRenderCompact(t *testing.T) {
	views := []metrics.SeriesView{
		{
			EntityKey: "cpu0",
			Channel:   metrics.ChannelUsage,
			Color:     "#3399FF",
			Points:    []metrics.RatePoint{{Value: 10}, {Value: 50}, {Value: 90}},
			Current:   90,
		},
	}
	f := metrics.BuildFrame("CPU", "%", views)

	out := renderCompact(f, 60, 4)
	if !strings.Contains(out, "cpu0") {
		t.Errorf("expected compact view to name the entity, got %q", out)
	}
	if !strings.Contains(out, "90%") {
		t.Errorf("expected compact view to show the current value, got %q", out)
	}
}

func TestRenderCompactEmpty(t *testing.T) {
	f := metrics.BuildFrame("CPU", "%", nil)
	if out := renderCompact(f, 60, 4); !strings.Contains(out, "collecting") {
		t.Errorf("expected placeholder for empty frame, got %q", out)
	}
}

func TestCompactFallbackOnShortWindow(t *testing.T) {
	m := resize(t, newTestModel(t), 80, compactHeight+4)

	// Content height is below the braille threshold; the chart view must
	// be sparkline rows, which never contain braille runes.
	for _, r := range m.chartView {
		if r >= 0x2800 && r <= 0x28FF {
			t.Fatalf("expected sparkline fallback, found braille rune %U", r)
		}
	}
}

func TestDiskBytesSummary(t *testing.T) {
	rates := map[string]sampler.DiskByteRates{
		"sdb":     {ReadBps: 1000, WriteBps: 0},
		"nvme0n1": {ReadBps: 2_000_000, WriteBps: 500_000},
	}

	out := diskBytesSummary(rates)
	if !strings.Contains(out, "nvme0n1 r:2.0 MB/s") {
		t.Errorf("unexpected summary: %q", out)
	}
	// Devices are listed in sorted order.
	if strings.Index(out, "nvme0n1") > strings.Index(out, "sdb") {
		t.Errorf("expected sorted device order, got %q", out)
	}
}

func TestDiskBytesSummaryEmpty(t *testing.T) {
	if out := diskBytesSummary(nil); out != "" {
		t.Errorf("expected empty summary, got %q", out)
	}
}

func TestTabZoneIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := Tab(0); i < tabCount; i++ {
		id := tabZoneID(i)
		if seen[id] {
			t.Errorf("duplicate zone id %q", id)
		}
		seen[id] = true
	}
}
