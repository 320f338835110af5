package metrics

// Frame is the chart-ready snapshot handed to the rendering layer: every
// subscribed series plus the shared Y scale. All series in one frame share
// [0, YMax] so cores and interfaces stay visually comparable; per-series
// normalization would make a busy and an idle interface look identical.
type Frame struct {
	Title  string
	Unit   string
	Series []SeriesView
	YMax   float64
}

// BuildFrame assembles a Frame from series views, computing the shared
// maximum across every point of every series. An all-empty or all-zero
// frame reports YMax 0; renderers supply their own floor for that case.
func BuildFrame(title, unit string, views []SeriesView) Frame {
	var yMax float64
	for _, v := range views {
		for _, p := range v.Points {
			if p.Value > yMax {
				yMax = p.Value
			}
		}
	}
	return Frame{Title: title, Unit: unit, Series: views, YMax: yMax}
}

// Empty reports whether no series in the frame holds any points.
func (f Frame) Empty() bool {
	for _, s := range f.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}
