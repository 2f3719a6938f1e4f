package trajectory

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"
)

// groupByClass splits resolved points into per-class slices sorted by frame.
// Classes are returned in ascending order.
func groupByClass(points []ResolvedPoint) ([]int, map[int][]ResolvedPoint) {
	byClass := make(map[int][]ResolvedPoint)
	for _, pt := range points {
		byClass[pt.ClassID] = append(byClass[pt.ClassID], pt)
	}
	classes := make([]int, 0, len(byClass))
	for classID, classPoints := range byClass {
		sort.SliceStable(classPoints, func(i, j int) bool {
			return classPoints[i].Frame < classPoints[j].Frame
		})
		classes = append(classes, classID)
	}
	sort.Ints(classes)
	return classes, byClass
}

// Interpolate fills every integer frame between the first and the last sample of a class.
// Samples must belong to classID, be sorted by frame and have distinct frames.
// Frames matching a sample reproduce it exactly. Nothing is produced outside of the sampled range.
func Interpolate(classID int, samples []ResolvedPoint) ([]ResolvedPoint, error) {
	if len(samples) == 0 {
		return nil, &EmptyClassError{ClassID: classID}
	}
	if len(samples) == 1 {
		return []ResolvedPoint{samples[0]}, nil
	}

	minFrame, maxFrame := samples[0].Frame, samples[0].Frame
	frames := make([]float64, len(samples))
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, sample := range samples {
		if i > 0 && sample.Frame <= samples[i-1].Frame {
			return nil, errors.Errorf("samples of class %d are not strictly ordered by frame at frame %d", classID, sample.Frame)
		}
		minFrame = minInt(minFrame, sample.Frame)
		maxFrame = maxInt(maxFrame, sample.Frame)
		frames[i] = float64(sample.Frame)
		xs[i] = sample.X
		ys[i] = sample.Y
	}

	var xFit, yFit interp.PiecewiseLinear
	if err := xFit.Fit(frames, xs); err != nil {
		return nil, errors.Wrapf(err, "Can't fit X of class %d", classID)
	}
	if err := yFit.Fit(frames, ys); err != nil {
		return nil, errors.Wrapf(err, "Can't fit Y of class %d", classID)
	}

	dense := make([]ResolvedPoint, 0, maxFrame-minFrame+1)
	for frame := minFrame; frame <= maxFrame; frame++ {
		f := float64(frame)
		dense = append(dense, ResolvedPoint{
			Frame:   frame,
			ClassID: classID,
			X:       xFit.Predict(f),
			Y:       yFit.Predict(f),
		})
	}
	return dense, nil
}
