package trajectory

// selectPoint picks a single point out of candidates for one (frame, class).
// With more than one candidate the point nearest to the first partner point wins, ties going to input order.
// Without partner points the first candidate is taken.
// Each part is resolved against a fixed reference, so duplicates of both parts are not assigned jointly.
func selectPoint(candidates, partners []Point) (Point, bool) {
	switch len(candidates) {
	case 0:
		return Point{}, false
	case 1:
		return candidates[0], true
	}
	if len(partners) == 0 {
		return candidates[0], true
	}
	reference := partners[0]
	best := candidates[0]
	bestDistance := euclideanDistance(best, reference)
	for _, candidate := range candidates[1:] {
		if d := euclideanDistance(candidate, reference); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best, true
}

// discarded returns number of duplicates dropped when resolving candidates to a single point
func discarded(candidates []Point) int {
	if len(candidates) == 0 {
		return 0
	}
	return len(candidates) - 1
}

// disambiguateSubjects resolves body and head of every subject on every frame.
// Returned points are ordered by frame, then by class.
func disambiguateSubjects(groups *FrameGroups, subjects int) ([]ResolvedPoint, int) {
	resolved := make([]ResolvedPoint, 0, groups.Len()*subjects)
	duplicates := 0
	for _, frame := range groups.Frames() {
		for subject := 0; subject < subjects; subject++ {
			bodyClass := BodyClass(subject)
			headClass := HeadClass(subject)
			bodyPts := groups.Points(frame, bodyClass)
			headPts := groups.Points(frame, headClass)
			duplicates += discarded(bodyPts) + discarded(headPts)

			if pt, ok := selectPoint(bodyPts, headPts); ok {
				resolved = append(resolved, ResolvedPoint{Frame: frame, ClassID: bodyClass, X: pt.X, Y: pt.Y})
			}
			if pt, ok := selectPoint(headPts, bodyPts); ok {
				resolved = append(resolved, ResolvedPoint{Frame: frame, ClassID: headClass, X: pt.X, Y: pt.Y})
			}
		}
	}
	return resolved, duplicates
}

// disambiguateClass resolves a single class on every frame, always referencing the paired class.
func disambiguateClass(groups *FrameGroups, classID int) ([]ResolvedPoint, int) {
	paired := PairedClass(classID)
	resolved := make([]ResolvedPoint, 0, groups.Len())
	duplicates := 0
	for _, frame := range groups.Frames() {
		selected := groups.Points(frame, classID)
		duplicates += discarded(selected)
		if pt, ok := selectPoint(selected, groups.Points(frame, paired)); ok {
			resolved = append(resolved, ResolvedPoint{Frame: frame, ClassID: classID, X: pt.X, Y: pt.Y})
		}
	}
	return resolved, duplicates
}
