package chart

import (
	"reflect"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

func netFrame() metrics.Frame {
	views := []metrics.SeriesView{
		{
			EntityKey: "eth0",
			Channel:   metrics.ChannelIn,
			Color:     "#3399FF",
			Points:    []metrics.RatePoint{{Value: 0.5}, {Value: 1.0}, {Value: 0.75}},
			Current:   0.75,
		},
		{
			EntityKey: "eth0",
			Channel:   metrics.ChannelOut,
			Color:     "#3399FF",
			Dashed:    true,
			Points:    []metrics.RatePoint{{Value: 2.0}, {Value: 4.0}, {Value: 3.0}},
			Current:   3.0,
		},
	}
	return metrics.BuildFrame("Network", "Mbps", views)
}

// TestDrawSequence verifies the deterministic op ordering: clear, grid,
// labels, fill+stroke per series, markers, legend.
func TestDrawSequence(t *testing.T) {
	r := NewRenderer(0, nil)
	rec := NewRecord(120, 40)

	r.Draw(netFrame(), rec)

	want := []string{
		"clear",
		// 5 horizontal + 5 vertical guide lines.
		"line", "line", "line", "line", "line",
		"line", "line", "line", "line", "line",
		// 3 axis labels.
		"text", "text", "text",
		// series 1 and 2: fill then stroke.
		"fill", "stroke",
		"fill", "stroke",
		// one marker per series.
		"circle", "circle",
		// legend entries.
		"text", "text",
	}
	if !reflect.DeepEqual(rec.Kinds(), want) {
		t.Errorf("op sequence = %v\nwant %v", rec.Kinds(), want)
	}
}

// TestDrawSharedScale verifies all series share one Y scale: the in-series
// peak (1.0 Mbps) must sit well below the out-series peak (4.0 Mbps).
func TestDrawSharedScale(t *testing.T) {
	r := NewRenderer(0, nil)
	rec := NewRecord(120, 40)
	r.Draw(netFrame(), rec)

	var strokes []Op
	for _, op := range rec.Ops {
		if op.Kind == "stroke" {
			strokes = append(strokes, op)
		}
	}
	if len(strokes) != 2 {
		t.Fatalf("strokes = %d, want 2", len(strokes))
	}

	minY := func(pts []Point) float64 {
		m := pts[0].Y
		for _, p := range pts {
			if p.Y < m {
				m = p.Y
			}
		}
		return m
	}

	inPeak := minY(strokes[0].Pts)   // smaller Y = higher on chart
	outPeak := minY(strokes[1].Pts)
	if outPeak >= inPeak {
		t.Errorf("out peak y=%v not above in peak y=%v under shared scale", outPeak, inPeak)
	}

	// out peaks at YMax, so its highest point touches the plot top.
	if outPeak > 2 {
		t.Errorf("out peak y=%v, want near top", outPeak)
	}
}

// TestDrawDashStyles verifies outgoing channels stroke dashed and incoming
// solid.
func TestDrawDashStyles(t *testing.T) {
	r := NewRenderer(0, nil)
	rec := NewRecord(120, 40)
	r.Draw(netFrame(), rec)

	var strokes []Op
	for _, op := range rec.Ops {
		if op.Kind == "stroke" {
			strokes = append(strokes, op)
		}
	}
	if strokes[0].Dashed {
		t.Error("in channel stroked dashed")
	}
	if !strokes[1].Dashed {
		t.Error("out channel stroked solid")
	}
}

// TestDrawFillClosesToFloor verifies the area polygon drops to the chart
// floor at both ends.
func TestDrawFillClosesToFloor(t *testing.T) {
	r := NewRenderer(0, nil)
	rec := NewRecord(120, 40)
	r.Draw(netFrame(), rec)

	var fill *Op
	for i, op := range rec.Ops {
		if op.Kind == "fill" {
			fill = &rec.Ops[i]
			break
		}
	}
	if fill == nil {
		t.Fatal("no fill op recorded")
	}

	n := len(fill.Pts)
	floor := fill.Pts[n-1].Y
	if fill.Pts[n-2].Y != floor {
		t.Errorf("fill corners y = %v, %v, want equal floor", fill.Pts[n-2].Y, floor)
	}
	for _, p := range fill.Pts[:n-2] {
		if p.Y > floor {
			t.Errorf("series point y=%v below floor %v", p.Y, floor)
		}
	}
}

// TestDrawEmptyFrame verifies an empty frame renders a placeholder only.
func TestDrawEmptyFrame(t *testing.T) {
	r := NewRenderer(0, nil)
	rec := NewRecord(120, 40)

	f := metrics.BuildFrame("CPU", "%", []metrics.SeriesView{{EntityKey: "cpu0", Channel: metrics.ChannelUsage}})
	r.Draw(f, rec)

	want := []string{"clear", "text"}
	if !reflect.DeepEqual(rec.Kinds(), want) {
		t.Errorf("op sequence = %v, want %v", rec.Kinds(), want)
	}
}

// TestDrawNilSurface verifies a missing surface is skipped, not fatal.
func TestDrawNilSurface(t *testing.T) {
	r := NewRenderer(0, nil)
	r.Draw(netFrame(), nil) // must not panic
}

// TestDrawDeterministic verifies identical frames yield identical op logs.
func TestDrawDeterministic(t *testing.T) {
	r := NewRenderer(0, nil)

	a := NewRecord(120, 40)
	b := NewRecord(120, 40)
	r.Draw(netFrame(), a)
	r.Draw(netFrame(), b)

	if !reflect.DeepEqual(a.Ops, b.Ops) {
		t.Error("two draws of the same frame produced different op logs")
	}
}

// TestDrawLegendOverflow verifies the legend collapses beyond the cap.
func TestDrawLegendOverflow(t *testing.T) {
	var views []metrics.SeriesView
	for i := 0; i < 12; i++ {
		views = append(views, metrics.SeriesView{
			EntityKey: "cpu" + string(rune('0'+i)),
			Channel:   metrics.ChannelUsage,
			Color:     "#3399FF",
			Points:    []metrics.RatePoint{{Value: 1}, {Value: 2}},
		})
	}
	f := metrics.BuildFrame("CPU", "%", views)

	r := NewRenderer(0, nil)
	rec := NewRecord(200, 60)
	r.Draw(f, rec)

	var legend []Op
	for _, op := range rec.Ops {
		if op.Kind == "text" && op.Pts[0].X > 0 {
			legend = append(legend, op)
		}
	}
	// 7 entries plus the "+5 more" line.
	if len(legend) != maxLegendEntries {
		t.Errorf("legend rows = %d, want %d", len(legend), maxLegendEntries)
	}
	last := legend[len(legend)-1]
	if last.Text != "+5 more" {
		t.Errorf("overflow row = %q, want \"+5 more\"", last.Text)
	}
}

func TestThrottleCoalesces(t *testing.T) {
	th := NewThrottle(200 * time.Millisecond)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }

	if !th.Request() {
		t.Fatal("first request not granted")
	}

	// A burst inside the window coalesces.
	for i := 0; i < 5; i++ {
		now = now.Add(10 * time.Millisecond)
		if th.Request() {
			t.Fatal("request inside throttle window granted")
		}
	}
	if th.Ready() {
		t.Fatal("Ready released before the window elapsed")
	}

	// Window elapses: exactly one coalesced redraw is released.
	now = now.Add(200 * time.Millisecond)
	if !th.Ready() {
		t.Fatal("coalesced redraw not released after window")
	}
	if th.Ready() {
		t.Fatal("coalesced redraw released twice")
	}
}

func TestThrottleNoPendingNoReady(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)
	if th.Ready() {
		t.Error("Ready with no prior request")
	}
}
