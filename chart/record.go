package chart

// Op is one recorded draw call. Kind is the Surface method name.
type Op struct {
	Kind   string // "clear", "line", "stroke", "fill", "circle", "text"
	Pts    []Point
	Color  string
	Dashed bool
	Radius float64
	Text   string
}

// Record is a Surface that captures draw calls instead of rasterizing
// them. Tests assert on the recorded sequence.
type Record struct {
	W, H float64
	Ops  []Op
}

// NewRecord creates a recording surface with the given extent.
func NewRecord(w, h float64) *Record {
	return &Record{W: w, H: h}
}

func (r *Record) Size() (float64, float64) { return r.W, r.H }

func (r *Record) Clear() {
	r.Ops = append(r.Ops, Op{Kind: "clear"})
}

func (r *Record) Line(a, b Point, color string, dashed bool) {
	r.Ops = append(r.Ops, Op{Kind: "line", Pts: []Point{a, b}, Color: color, Dashed: dashed})
}

func (r *Record) StrokePath(pts []Point, color string, dashed bool) {
	r.Ops = append(r.Ops, Op{Kind: "stroke", Pts: append([]Point(nil), pts...), Color: color, Dashed: dashed})
}

func (r *Record) FillPath(pts []Point, color string) {
	r.Ops = append(r.Ops, Op{Kind: "fill", Pts: append([]Point(nil), pts...), Color: color})
}

func (r *Record) FillCircle(c Point, radius float64, color string) {
	r.Ops = append(r.Ops, Op{Kind: "circle", Pts: []Point{c}, Radius: radius, Color: color})
}

func (r *Record) Text(p Point, s string, color string) {
	r.Ops = append(r.Ops, Op{Kind: "text", Pts: []Point{p}, Text: s, Color: color})
}

// Kinds returns the op kinds in order, a compact shape assertion helper.
func (r *Record) Kinds() []string {
	out := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Kind
	}
	return out
}
