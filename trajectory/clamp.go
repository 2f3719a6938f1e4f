package trajectory

import (
	"math"
)

// clampFromStart makes every point after the first one subject to clamping
const clampFromStart = math.MinInt

// Clamp suppresses implausible jumps in a dense, frame-sorted trajectory.
// The first point is accepted as is. Each following point whose displacement from the previously accepted point
// exceeds threshold on either axis is replaced by that previous point, so a frozen run holds position until
// a point comes back within threshold of it.
// Points with a frame before activeFrom are accepted unconditionally (grace window), but still become the reference.
// The input slice is not modified.
func Clamp(points []ResolvedPoint, threshold float64, activeFrom int) ([]ResolvedPoint, []FreezeEvent) {
	if len(points) == 0 {
		return nil, nil
	}
	clamped := make([]ResolvedPoint, len(points))
	var freezes []FreezeEvent

	clamped[0] = points[0]
	prev := points[0].Point()
	for i := 1; i < len(points); i++ {
		current := points[i]
		if current.Frame >= activeFrom && exceedsJump(prev, current.Point(), threshold) {
			freezes = append(freezes, FreezeEvent{
				Frame:    current.Frame,
				ClassID:  current.ClassID,
				Previous: prev,
				Rejected: current.Point(),
			})
			current.X = prev.X
			current.Y = prev.Y
		}
		clamped[i] = current
		prev = current.Point()
	}
	return clamped, freezes
}
