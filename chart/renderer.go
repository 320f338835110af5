package chart

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulseboard/internal/format"
	"gitlab.com/tinyland/lab/pulseboard/metrics"
)

// Chrome colors shared by every chart; series colors come from the
// registry's palette.
const (
	gridColor  = "#3A3A3A"
	labelColor = "#C8C8C8"
	emptyColor = "#6B7280"
)

// gridDivisions splits the plot into a 4x4 guide grid (5 lines each way).
const gridDivisions = 4

// labelGutterDots is the left gutter reserved for Y-axis labels, in surface
// units. Surfaces narrower than minLabeledWidth drop the gutter entirely.
const (
	labelGutterDots  = 14
	minLabeledWidth  = 40
	maxLegendEntries = 8
)

// Renderer produces the deterministic draw sequence for one frame: grid,
// axis labels, per-series filled area and stroke, latest-value markers,
// legend. It holds no state between draws except the redraw throttle.
type Renderer struct {
	logger   *slog.Logger
	throttle *Throttle
}

// NewRenderer creates a renderer whose redraws are gated to minInterval.
func NewRenderer(minInterval time.Duration, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Renderer{
		logger:   logger,
		throttle: NewThrottle(minInterval),
	}
}

// Throttle exposes the redraw gate for the render loop.
func (r *Renderer) Throttle() *Throttle { return r.throttle }

// Draw renders the frame onto the surface. The sequence is fixed so
// identical frames always produce identical surfaces. Draw never mutates
// the frame; a nil surface is a skipped redraw (the surface owner is
// tearing down), reported at debug level and retried on the next tick.
func (r *Renderer) Draw(f metrics.Frame, s Surface) {
	if s == nil {
		r.logger.Debug("render surface unavailable, skipping redraw", "chart", f.Title)
		return
	}

	s.Clear()
	w, h := s.Size()

	if f.Empty() {
		s.Text(Point{X: w/2 - 12, Y: h / 2}, "collecting samples...", emptyColor)
		return
	}

	left := float64(labelGutterDots)
	if w < minLabeledWidth {
		left = 0
	}
	right := w - 2
	top := 1.0
	bottom := h - 2

	if right <= left || bottom <= top {
		return
	}

	yMax := f.YMax
	if yMax <= 0 {
		// All-zero data still needs a scale so flat series sit on the floor.
		yMax = 1
	}

	r.drawGrid(s, left, top, right, bottom)
	if left > 0 {
		r.drawAxisLabels(s, f, yMax, left, top, bottom)
	}

	for _, view := range f.Series {
		pts := seriesPoints(view, yMax, left, top, right, bottom)
		if len(pts) < 2 {
			continue
		}

		area := make([]Point, 0, len(pts)+2)
		area = append(area, pts...)
		area = append(area,
			Point{X: pts[len(pts)-1].X, Y: bottom},
			Point{X: pts[0].X, Y: bottom},
		)
		s.FillPath(area, view.Color)
		s.StrokePath(pts, view.Color, view.Dashed)
	}

	for _, view := range f.Series {
		pts := seriesPoints(view, yMax, left, top, right, bottom)
		if len(pts) == 0 {
			continue
		}
		s.FillCircle(pts[len(pts)-1], 1.5, view.Color)
	}

	r.drawLegend(s, f, w)
}

// drawGrid paints the background guide lines.
func (r *Renderer) drawGrid(s Surface, left, top, right, bottom float64) {
	for i := 0; i <= gridDivisions; i++ {
		y := top + float64(i)*(bottom-top)/gridDivisions
		s.Line(Point{X: left, Y: y}, Point{X: right, Y: y}, gridColor, false)
	}
	for i := 0; i <= gridDivisions; i++ {
		x := left + float64(i)*(right-left)/gridDivisions
		s.Line(Point{X: x, Y: top}, Point{X: x, Y: bottom}, gridColor, false)
	}
}

// drawAxisLabels writes the top, middle, and bottom Y values into the left
// gutter. Three labels keep coarse cell rows from colliding.
func (r *Renderer) drawAxisLabels(s Surface, f metrics.Frame, yMax, left, top, bottom float64) {
	for _, frac := range []float64{1, 0.5, 0} {
		y := bottom - frac*(bottom-top)
		label := format.Value(yMax*frac) + f.Unit
		s.Text(Point{X: 0, Y: y}, label, labelColor)
	}
}

// drawLegend writes one entry per series in the top-right corner: a swatch
// glyph plus "entity channel current", colored like the series. Beyond
// maxLegendEntries the tail collapses into a count.
func (r *Renderer) drawLegend(s Surface, f metrics.Frame, w float64) {
	entries := f.Series
	overflow := 0
	if len(entries) > maxLegendEntries {
		overflow = len(entries) - (maxLegendEntries - 1)
		entries = entries[:maxLegendEntries-1]
	}

	row := 0
	for _, view := range entries {
		swatch := "●"
		if view.Dashed {
			swatch = "◌"
		}
		text := fmt.Sprintf("%s %s %s %s%s", swatch, view.EntityKey, view.Channel, format.Value(view.Current), f.Unit)
		s.Text(legendPos(w, text, row), text, view.Color)
		row++
	}
	if overflow > 0 {
		text := fmt.Sprintf("+%d more", overflow)
		s.Text(legendPos(w, text, row), text, labelColor)
	}
}

// legendPos right-aligns a legend row. Rows advance one cell (4 dots) at a
// time; one cell is 2 dots wide.
func legendPos(w float64, text string, row int) Point {
	x := w - float64(len([]rune(text))*dotsPerCellX) - 2
	if x < 0 {
		x = 0
	}
	return Point{X: x, Y: float64(row * dotsPerCellY)}
}

// seriesPoints maps a series' rate points into surface coordinates. The
// window stretches across the full plot width as it fills, oldest left.
func seriesPoints(view metrics.SeriesView, yMax, left, top, right, bottom float64) []Point {
	n := len(view.Points)
	if n == 0 {
		return nil
	}

	pts := make([]Point, n)
	for i, p := range view.Points {
		x := right
		if n > 1 {
			x = left + float64(i)*(right-left)/float64(n-1)
		}
		frac := p.Value / yMax
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		pts[i] = Point{X: x, Y: bottom - frac*(bottom-top)}
	}
	return pts
}
