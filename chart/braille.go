package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cell geometry: every terminal cell carries a 2x4 dot matrix.
const (
	dotsPerCellX = 2
	dotsPerCellY = 4
)

// brailleBase is the empty braille pattern; dot bits are ORed onto it.
const brailleBase = 0x2800

// brailleBits maps an in-cell dot position (dx, dy) to its Unicode bit.
var brailleBits = [dotsPerCellX][dotsPerCellY]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Dash pattern in dots along a stroked segment.
const (
	dashOn  = 4
	dashOff = 3
)

// Braille is a terminal Surface: a grid of braille cells colored with
// lipgloss. Coordinates are dots, so a W x H cell canvas exposes a
// (2W) x (4H) drawable area. Strokes paint bright dots, fills paint faint
// dots; bright wins when both land in one cell. Text replaces whole cells.
type Braille struct {
	cellsW int
	cellsH int

	bright []rune   // braille bits per cell, stroke layer
	faint  []rune   // braille bits per cell, fill layer
	bcolor []string // stroke color per cell
	fcolor []string // fill color per cell
	text   []rune   // text rune per cell, 0 = none
	tcolor []string
}

// NewBraille creates a canvas of w x h terminal cells. Minimum size is one
// cell.
func NewBraille(w, h int) *Braille {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b := &Braille{cellsW: w, cellsH: h}
	b.Clear()
	return b
}

// Size implements Surface; the unit is braille dots.
func (b *Braille) Size() (float64, float64) {
	return float64(b.cellsW * dotsPerCellX), float64(b.cellsH * dotsPerCellY)
}

// Clear implements Surface.
func (b *Braille) Clear() {
	n := b.cellsW * b.cellsH
	b.bright = make([]rune, n)
	b.faint = make([]rune, n)
	b.bcolor = make([]string, n)
	b.fcolor = make([]string, n)
	b.text = make([]rune, n)
	b.tcolor = make([]string, n)
}

// setDot plants one dot at dot coordinates (x, y).
func (b *Braille) setDot(x, y int, color string, faint bool) {
	if x < 0 || y < 0 {
		return
	}
	cx, cy := x/dotsPerCellX, y/dotsPerCellY
	if cx >= b.cellsW || cy >= b.cellsH {
		return
	}
	idx := cy*b.cellsW + cx
	bit := brailleBits[x%dotsPerCellX][y%dotsPerCellY]
	if faint {
		b.faint[idx] |= bit
		b.fcolor[idx] = color
		return
	}
	b.bright[idx] |= bit
	b.bcolor[idx] = color
}

// Line implements Surface with Bresenham over the dot grid.
func (b *Braille) Line(a, p Point, color string, dashed bool) {
	b.line(a, p, color, dashed, 0, false)
}

// line walks the segment dot by dot. dashPos carries the dash phase across
// polyline segments; the updated phase is returned.
func (b *Braille) line(a, p Point, color string, dashed bool, dashPos int, faint bool) int {
	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(p.X)), int(math.Round(p.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		on := true
		if dashed {
			on = dashPos%(dashOn+dashOff) < dashOn
		}
		if on {
			b.setDot(x0, y0, color, faint)
		}
		dashPos++

		if x0 == x1 && y0 == y1 {
			return dashPos
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// StrokePath implements Surface, keeping the dash phase continuous across
// the polyline's segments.
func (b *Braille) StrokePath(pts []Point, color string, dashed bool) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		b.setDot(int(math.Round(pts[0].X)), int(math.Round(pts[0].Y)), color, false)
		return
	}
	dashPos := 0
	for i := 1; i < len(pts); i++ {
		dashPos = b.line(pts[i-1], pts[i], color, dashed, dashPos, false)
	}
}

// FillPath implements Surface with an even-odd scanline fill over the dot
// grid, painted on the faint layer.
func (b *Braille) FillPath(pts []Point, color string) {
	if len(pts) < 3 {
		return
	}

	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))

	for y := y0; y <= y1; y++ {
		scan := float64(y) + 0.5

		var xs []float64
		for i := range pts {
			a := pts[i]
			c := pts[(i+1)%len(pts)]
			if (a.Y <= scan) == (c.Y <= scan) {
				continue
			}
			t := (scan - a.Y) / (c.Y - a.Y)
			xs = append(xs, a.X+t*(c.X-a.X))
		}
		if len(xs) < 2 {
			continue
		}
		sortFloats(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			from := int(math.Ceil(xs[i]))
			to := int(math.Floor(xs[i+1]))
			for x := from; x <= to; x++ {
				b.setDot(x, y, color, true)
			}
		}
	}
}

// FillCircle implements Surface on the bright layer.
func (b *Braille) FillCircle(c Point, r float64, color string) {
	if r <= 0 {
		return
	}
	x0 := int(math.Floor(c.X - r))
	x1 := int(math.Ceil(c.X + r))
	y0 := int(math.Floor(c.Y - r))
	y1 := int(math.Ceil(c.Y + r))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ddx := float64(x) - c.X
			ddy := float64(y) - c.Y
			if ddx*ddx+ddy*ddy <= r*r {
				b.setDot(x, y, color, false)
			}
		}
	}
}

// Text implements Surface. The string occupies whole cells starting at the
// cell containing p; it clips at the right edge.
func (b *Braille) Text(p Point, s string, color string) {
	cx := int(math.Round(p.X)) / dotsPerCellX
	cy := int(math.Round(p.Y)) / dotsPerCellY
	if cy < 0 || cy >= b.cellsH {
		return
	}
	for _, r := range s {
		if cx < 0 {
			cx++
			continue
		}
		if cx >= b.cellsW {
			return
		}
		idx := cy*b.cellsW + cx
		b.text[idx] = r
		b.tcolor[idx] = color
		cx++
	}
}

// Render flattens the canvas into a lipgloss-styled string, one line per
// cell row. Text wins over strokes, strokes win over fills.
func (b *Braille) Render() string {
	var sb strings.Builder

	for cy := 0; cy < b.cellsH; cy++ {
		if cy > 0 {
			sb.WriteByte('\n')
		}
		for cx := 0; cx < b.cellsW; cx++ {
			idx := cy*b.cellsW + cx

			switch {
			case b.text[idx] != 0:
				sb.WriteString(styled(string(b.text[idx]), b.tcolor[idx], false))
			case b.bright[idx] != 0:
				// Faint dots in the same cell merge into the glyph so the
				// area fill does not punch holes around the stroke.
				bits := b.bright[idx] | b.faint[idx]
				sb.WriteString(styled(string(brailleBase+bits), b.bcolor[idx], false))
			case b.faint[idx] != 0:
				sb.WriteString(styled(string(brailleBase+b.faint[idx]), b.fcolor[idx], true))
			default:
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// CellAt reports the rune the cell would render, without styling. Intended
// for tests.
func (b *Braille) CellAt(cx, cy int) rune {
	if cx < 0 || cy < 0 || cx >= b.cellsW || cy >= b.cellsH {
		return 0
	}
	idx := cy*b.cellsW + cx
	switch {
	case b.text[idx] != 0:
		return b.text[idx]
	case b.bright[idx] != 0:
		return brailleBase + (b.bright[idx] | b.faint[idx])
	case b.faint[idx] != 0:
		return brailleBase + b.faint[idx]
	default:
		return ' '
	}
}

func styled(s, color string, faint bool) string {
	if color == "" {
		return s
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	if faint {
		st = st.Faint(true)
	}
	return st.Render(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sortFloats is a small insertion sort; scanline crossing lists stay tiny.
func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
