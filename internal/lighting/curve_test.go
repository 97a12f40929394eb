package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scenarioCurve() Curve {
	return NewCurve([]Point{
		{Threshold: 90, Color: "#ff0000"},
		{Threshold: 30, Color: "#00ff00"},
		{Threshold: 60, Color: "#ffff00"},
	})
}

func TestCurveResolve(t *testing.T) {
	c := scenarioCurve()

	tests := []struct {
		celsius int
		want    Color
	}{
		{celsius: 75, want: "#ffff00"},
		{celsius: 25, want: "#00ff00"},
		{celsius: -10, want: "#00ff00"},
		{celsius: 30, want: "#00ff00"},
		{celsius: 59, want: "#00ff00"},
		{celsius: 60, want: "#ffff00"},
		{celsius: 90, want: "#ff0000"},
		{celsius: 130, want: "#ff0000"},
	}

	for _, tt := range tests {
		p, ok := c.Resolve(tt.celsius)
		assert.True(t, ok)
		assert.Equal(t, tt.want, p.Color, "Resolve(%d)", tt.celsius)
	}
}

func TestCurveResolveIsMonotonic(t *testing.T) {
	c := scenarioCurve()

	prev, _ := c.Resolve(-50)
	for celsius := -49; celsius <= 150; celsius++ {
		p, _ := c.Resolve(celsius)
		assert.GreaterOrEqual(t, p.Threshold, prev.Threshold, "Resolve(%d) went down", celsius)
		prev = p
	}
}

func TestCurveEmpty(t *testing.T) {
	_, ok := NewCurve(nil).Resolve(50)
	assert.False(t, ok)
}

func TestNewCurveSortsAndDeduplicates(t *testing.T) {
	c := NewCurve([]Point{
		{Threshold: 50, Color: "#111111"},
		{Threshold: 40, Color: "#222222"},
		{Threshold: 50, Color: "#333333"},
	})

	assert.Equal(t, []Point{
		{Threshold: 40, Color: "#222222"},
		{Threshold: 50, Color: "#333333"},
	}, c.Points())
}
