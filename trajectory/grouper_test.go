package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupDetections(t *testing.T) {
	detections := []Detection{
		{Frame: 5, ClassID: 0, X: 1, Y: 1},
		{Frame: 2, ClassID: 1, X: 2, Y: 2},
		{Frame: 5, ClassID: 0, X: 3, Y: 3},
		{Frame: 2, ClassID: 0, X: 4, Y: 4},
		{Frame: 5, ClassID: 0, X: 0, Y: 0},
	}

	t.Run("keeps input order inside a group", func(t *testing.T) {
		groups := GroupDetections(detections, nil)
		require.Equal(t, 2, groups.Len())
		assert.Equal(t, []int{2, 5}, groups.Frames())
		assert.Equal(t, []Point{{1, 1}, {3, 3}, {0, 0}}, groups.Points(5, 0))
		assert.Equal(t, []Point{{2, 2}}, groups.Points(2, 1))
		assert.Empty(t, groups.Points(5, 1))
		assert.Empty(t, groups.Points(7, 0))
		assert.Zero(t, groups.Skipped())
	})

	t.Run("scope filter", func(t *testing.T) {
		groups := GroupDetections(detections, func(d Detection) bool {
			return d.Frame >= 5
		})
		assert.Equal(t, []int{5}, groups.Frames())
		assert.Equal(t, 2, groups.Skipped())
	})

	t.Run("empty input", func(t *testing.T) {
		groups := GroupDetections(nil, nil)
		assert.Zero(t, groups.Len())
		assert.Empty(t, groups.Frames())
	})
}
