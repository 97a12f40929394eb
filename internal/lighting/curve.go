package lighting

import "sort"

// Point maps a temperature threshold in °C to a color.
type Point struct {
	Threshold int
	Color     Color
}

// Curve is a step function over temperature, sorted ascending by threshold.
type Curve struct {
	points []Point
}

// NewCurve copies and sorts points. Duplicate thresholds keep the last one given.
func NewCurve(points []Point) Curve {
	byThreshold := make(map[int]Color, len(points))
	for _, p := range points {
		byThreshold[p.Threshold] = p.Color
	}

	sorted := make([]Point, 0, len(byThreshold))
	for t, c := range byThreshold {
		sorted = append(sorted, Point{Threshold: t, Color: c})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	return Curve{points: sorted}
}

// Points returns the sorted points.
func (c Curve) Points() []Point {
	return append([]Point(nil), c.points...)
}

func (c Curve) Len() int { return len(c.points) }

// Resolve picks the highest threshold at or below celsius. Temperatures below
// the lowest threshold use the lowest threshold's color. The boolean is false
// only for an empty curve.
func (c Curve) Resolve(celsius int) (Point, bool) {
	if len(c.points) == 0 {
		return Point{}, false
	}

	// first index with Threshold > celsius
	i := sort.Search(len(c.points), func(i int) bool { return c.points[i].Threshold > celsius })
	if i == 0 {
		return c.points[0], true
	}
	return c.points[i-1], true
}
