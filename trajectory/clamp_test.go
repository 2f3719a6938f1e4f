package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func track(classID, firstFrame int, xs ...float64) []ResolvedPoint {
	points := make([]ResolvedPoint, len(xs))
	for i, x := range xs {
		points[i] = ResolvedPoint{Frame: firstFrame + i, ClassID: classID, X: x, Y: 0}
	}
	return points
}

func xsOf(points []ResolvedPoint) []float64 {
	xs := make([]float64, len(points))
	for i, pt := range points {
		xs[i] = pt.X
	}
	return xs
}

func TestClampSingleSpike(t *testing.T) {
	clamped, freezes := Clamp(track(0, 0, 0, 0, 100, 0, 0), 10, clampFromStart)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, xsOf(clamped))
	require.Len(t, freezes, 1)
	assert.Equal(t, FreezeEvent{Frame: 2, ClassID: 0, Previous: Point{0, 0}, Rejected: Point{100, 0}}, freezes[0])
}

func TestClampHoldsUntilWithinThreshold(t *testing.T) {
	clamped, freezes := Clamp(track(2, 0, 0, 0, 100, 100, 5, 20), 10, clampFromStart)
	assert.Equal(t, []float64{0, 0, 0, 0, 5, 5}, xsOf(clamped))
	assert.Len(t, freezes, 3)
}

func TestClampComparesAgainstFrozenValue(t *testing.T) {
	clamped, freezes := Clamp(track(0, 0, 10, 15, 20), 3, clampFromStart)
	assert.Equal(t, []float64{10, 10, 10}, xsOf(clamped))
	assert.Len(t, freezes, 2)
}

func TestClampYAxis(t *testing.T) {
	points := []ResolvedPoint{
		{Frame: 0, ClassID: 1, X: 0, Y: 0},
		{Frame: 1, ClassID: 1, X: 0, Y: -50},
	}
	clamped, freezes := Clamp(points, 10, clampFromStart)
	assert.Equal(t, 0.0, clamped[1].Y)
	assert.Len(t, freezes, 1)
}

func TestClampGraceWindow(t *testing.T) {
	points := track(3, 10, 0, 100, 200, 205)

	clamped, freezes := Clamp(points, 10, 12)
	assert.Equal(t, []float64{0, 100, 100, 100}, xsOf(clamped))
	assert.Len(t, freezes, 2)

	clamped, freezes = Clamp(points, 10, 13)
	assert.Equal(t, []float64{0, 100, 200, 205}, xsOf(clamped))
	assert.Empty(t, freezes)

	// Input is left intact
	assert.Equal(t, []float64{0, 100, 200, 205}, xsOf(points))
}

func TestClampEmpty(t *testing.T) {
	clamped, freezes := Clamp(nil, 10, clampFromStart)
	assert.Empty(t, clamped)
	assert.Empty(t, freezes)
}
