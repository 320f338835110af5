package chart

import (
	"strings"
	"testing"
)

func TestBrailleSize(t *testing.T) {
	b := NewBraille(10, 5)
	w, h := b.Size()
	if w != 20 || h != 20 {
		t.Errorf("Size() = %v x %v, want 20 x 20", w, h)
	}
}

func TestBrailleSingleDot(t *testing.T) {
	b := NewBraille(2, 2)

	// Dot (1, 2) lands in cell (0, 0), right column third row: bit 0x20.
	b.StrokePath([]Point{{X: 1, Y: 2}}, "#3399FF", false)

	if got := b.CellAt(0, 0); got != brailleBase+0x20 {
		t.Errorf("CellAt(0,0) = %U, want %U", got, brailleBase+0x20)
	}
	if got := b.CellAt(1, 1); got != ' ' {
		t.Errorf("untouched cell = %q, want blank", got)
	}
}

func TestBrailleHorizontalLine(t *testing.T) {
	b := NewBraille(4, 1)

	b.Line(Point{X: 0, Y: 0}, Point{X: 7, Y: 0}, "#FF6633", false)

	// Every cell in the row gets its two top dots: 0x01 | 0x08.
	for cx := 0; cx < 4; cx++ {
		if got := b.CellAt(cx, 0); got != brailleBase+0x09 {
			t.Errorf("CellAt(%d,0) = %U, want %U", cx, got, brailleBase+0x09)
		}
	}
}

func TestBrailleDashedLineHasGaps(t *testing.T) {
	b := NewBraille(20, 1)

	b.Line(Point{X: 0, Y: 0}, Point{X: 39, Y: 0}, "#FF6633", true)

	lit, blank := 0, 0
	for cx := 0; cx < 20; cx++ {
		if b.CellAt(cx, 0) == ' ' {
			blank++
		} else {
			lit++
		}
	}
	if lit == 0 || blank == 0 {
		t.Errorf("dashed line lit %d / blank %d cells, want both nonzero", lit, blank)
	}
}

func TestBrailleDashPhaseContinuous(t *testing.T) {
	// Two canvases: one polyline stroked as a path, the same dots as two
	// independent lines. Independent lines restart the dash phase, so the
	// results must differ at the joint.
	path := NewBraille(20, 2)
	path.StrokePath([]Point{{X: 0, Y: 0}, {X: 19, Y: 0}, {X: 39, Y: 0}}, "#33CC66", true)

	segs := NewBraille(20, 2)
	segs.Line(Point{X: 0, Y: 0}, Point{X: 19, Y: 0}, "#33CC66", true)
	segs.Line(Point{X: 19, Y: 0}, Point{X: 39, Y: 0}, "#33CC66", true)

	same := true
	for cx := 0; cx < 20; cx++ {
		if path.CellAt(cx, 0) != segs.CellAt(cx, 0) {
			same = false
			break
		}
	}
	if same {
		t.Error("dash phase restarted at segment joint")
	}
}

func TestBrailleFillInterior(t *testing.T) {
	b := NewBraille(10, 10)

	// A 20x20 dot square.
	b.FillPath([]Point{{X: 2, Y: 2}, {X: 18, Y: 2}, {X: 18, Y: 18}, {X: 2, Y: 18}}, "#3399FF")

	if got := b.CellAt(4, 2); got == ' ' {
		t.Error("interior cell empty after fill")
	}
	if got := b.CellAt(0, 0); got != ' ' {
		t.Errorf("exterior cell = %q, want blank", got)
	}
}

func TestBrailleStrokeOverFillMerges(t *testing.T) {
	b := NewBraille(4, 1)

	b.FillPath([]Point{{X: 0, Y: 0}, {X: 7, Y: 0}, {X: 7, Y: 3}, {X: 0, Y: 3}}, "#3399FF")
	fillOnly := b.CellAt(1, 0)

	b.StrokePath([]Point{{X: 0, Y: 0}, {X: 7, Y: 0}}, "#3399FF", false)
	merged := b.CellAt(1, 0)

	// The stroked cell keeps the fill's dots rather than dropping them.
	if merged&(fillOnly-brailleBase) != fillOnly&(fillOnly-brailleBase) {
		t.Errorf("stroke dropped fill dots: fill %U, merged %U", fillOnly, merged)
	}
}

func TestBrailleText(t *testing.T) {
	b := NewBraille(10, 2)

	b.Text(Point{X: 4, Y: 4}, "ok", "#C8C8C8")

	if got := b.CellAt(2, 1); got != 'o' {
		t.Errorf("CellAt(2,1) = %q, want 'o'", got)
	}
	if got := b.CellAt(3, 1); got != 'k' {
		t.Errorf("CellAt(3,1) = %q, want 'k'", got)
	}
}

func TestBrailleTextClips(t *testing.T) {
	b := NewBraille(3, 1)

	b.Text(Point{X: 0, Y: 0}, "overflow", "#C8C8C8")

	if got := b.CellAt(2, 0); got != 'e' {
		t.Errorf("CellAt(2,0) = %q, want 'e'", got)
	}
}

func TestBrailleTextWinsOverDots(t *testing.T) {
	b := NewBraille(2, 1)

	b.Line(Point{X: 0, Y: 0}, Point{X: 3, Y: 3}, "#3399FF", false)
	b.Text(Point{X: 0, Y: 0}, "X", "#C8C8C8")

	if got := b.CellAt(0, 0); got != 'X' {
		t.Errorf("CellAt(0,0) = %q, want 'X'", got)
	}
}

func TestBrailleRenderShape(t *testing.T) {
	b := NewBraille(5, 3)

	out := b.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("Render() produced %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		if line != "     " {
			t.Errorf("blank canvas line %d = %q", i, line)
		}
	}
}

func TestBrailleClearResets(t *testing.T) {
	b := NewBraille(2, 2)
	b.Line(Point{X: 0, Y: 0}, Point{X: 3, Y: 7}, "#3399FF", false)
	b.Text(Point{X: 0, Y: 4}, "x", "#C8C8C8")

	b.Clear()

	for cy := 0; cy < 2; cy++ {
		for cx := 0; cx < 2; cx++ {
			if got := b.CellAt(cx, cy); got != ' ' {
				t.Errorf("CellAt(%d,%d) = %q after Clear, want blank", cx, cy, got)
			}
		}
	}
}

func TestBrailleOutOfBoundsIgnored(t *testing.T) {
	b := NewBraille(2, 2)

	b.Line(Point{X: -10, Y: -10}, Point{X: 50, Y: 50}, "#3399FF", false)
	b.FillCircle(Point{X: 100, Y: 100}, 3, "#3399FF")

	// Must not panic; in-bounds portion of the line still lands.
	if got := b.CellAt(0, 0); got == ' ' {
		t.Error("in-bounds portion of clipped line missing")
	}
}
