// Package chart turns metrics frames into draw calls against an abstract
// drawing surface, and provides a braille-cell terminal surface plus the
// redraw throttle that keeps rendering decoupled from sampling.
package chart

// Point is a position in surface coordinates: X grows right, Y grows down,
// origin at the top-left of the drawable area.
type Point struct {
	X float64
	Y float64
}

// Surface is the drawing collaborator the renderer targets. Implementations
// decide what a coordinate unit is (braille dots for the terminal surface).
// Colors are hex strings ("#3399FF").
type Surface interface {
	// Size returns the drawable area extent. Coordinates run
	// [0, width) x [0, height).
	Size() (width, height float64)

	// Clear resets the surface to its background.
	Clear()

	// Line strokes a single straight segment.
	Line(a, b Point, color string, dashed bool)

	// StrokePath strokes an open polyline through pts in order.
	StrokePath(pts []Point, color string, dashed bool)

	// FillPath fills the closed polygon through pts with a muted shade of
	// color, the terminal stand-in for a semi-transparent area fill.
	FillPath(pts []Point, color string)

	// FillCircle fills a disc of radius r centered at c.
	FillCircle(c Point, r float64, color string)

	// Text draws s with its left edge at p, in color.
	Text(p Point, s string, color string)
}
