package trajectory

import (
	"sort"
)

// FrameGroups indexes detections by frame, then by class.
// Points of one (frame, class) keep the input order: disambiguation depends on it.
type FrameGroups struct {
	frames  []int
	byFrame map[int]map[int][]Point
	// Number of detections rejected by the scope filter
	skipped int
	sorted  bool
}

// GroupDetections builds FrameGroups from detections. When keep is not nil only detections it accepts are indexed.
func GroupDetections(detections []Detection, keep func(Detection) bool) *FrameGroups {
	groups := &FrameGroups{
		frames:  make([]int, 0),
		byFrame: make(map[int]map[int][]Point),
		sorted:  true,
	}
	for _, detection := range detections {
		if keep != nil && !keep(detection) {
			groups.skipped++
			continue
		}
		groups.add(detection)
	}
	return groups
}

func (groups *FrameGroups) add(detection Detection) {
	classes, ok := groups.byFrame[detection.Frame]
	if !ok {
		classes = make(map[int][]Point)
		groups.byFrame[detection.Frame] = classes
		if n := len(groups.frames); n > 0 && groups.frames[n-1] > detection.Frame {
			groups.sorted = false
		}
		groups.frames = append(groups.frames, detection.Frame)
	}
	classes[detection.ClassID] = append(classes[detection.ClassID], detection.Point())
}

// Frames returns the indexed frames in ascending order
func (groups *FrameGroups) Frames() []int {
	if !groups.sorted {
		sort.Ints(groups.frames)
		groups.sorted = true
	}
	return groups.frames
}

// Points returns the points of the class at the frame in input order. Be careful: this is not a copy.
func (groups *FrameGroups) Points(frame, classID int) []Point {
	return groups.byFrame[frame][classID]
}

// Len returns number of indexed frames
func (groups *FrameGroups) Len() int {
	return len(groups.frames)
}

// Skipped returns number of detections rejected by the scope filter
func (groups *FrameGroups) Skipped() int {
	return groups.skipped
}
