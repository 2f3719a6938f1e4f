package trajectory

import (
	"math"
)

// Point is a 2D position in detector pixel space (top-left origin)
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// exceedsJump reports whether either axis moved by more than threshold.
func exceedsJump(prev, next Point, threshold float64) bool {
	return math.Abs(next.X-prev.X) > threshold || math.Abs(next.Y-prev.Y) > threshold
}
