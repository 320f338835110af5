package metrics

// Series is a fixed-capacity rolling window of RatePoints for one
// (entity, channel). Appends are amortized O(1); when the window is full the
// oldest point is evicted. Capacity never changes after construction.
type Series struct {
	capacity int
	points   []RatePoint
}

// DefaultCapacity is the window length used when a chart does not set one.
const DefaultCapacity = 60

// NewSeries creates an empty series with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		capacity: capacity,
		points:   make([]RatePoint, 0, capacity),
	}
}

// Append adds a point, evicting the oldest when the window is full.
func (s *Series) Append(p RatePoint) {
	s.points = append(s.points, p)
	if len(s.points) > s.capacity {
		s.points = s.points[len(s.points)-s.capacity:]
	}
}

// Len returns the number of retained points.
func (s *Series) Len() int { return len(s.points) }

// Capacity returns the fixed window length.
func (s *Series) Capacity() int { return s.capacity }

// Points returns a copy of the retained points, oldest first.
func (s *Series) Points() []RatePoint {
	out := make([]RatePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Values returns a copy of the retained rate values, oldest first.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Latest returns the most recent point. ok is false when the series is empty.
func (s *Series) Latest() (RatePoint, bool) {
	if len(s.points) == 0 {
		return RatePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Normalized maps the retained values into [0,1] against the window's own
// min and max. When all values are equal the whole window maps to 0.5, so
// a flat series renders as a mid-level line instead of dividing by zero.
func (s *Series) Normalized() []float64 {
	if len(s.points) == 0 {
		return nil
	}

	minVal := s.points[0].Value
	maxVal := s.points[0].Value
	for _, p := range s.points {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}

	out := make([]float64, len(s.points))
	if minVal == maxVal {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	span := maxVal - minVal
	for i, p := range s.points {
		out[i] = (p.Value - minVal) / span
	}
	return out
}
