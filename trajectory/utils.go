package trajectory

import (
	"fmt"
	"math"
)

const classLabelPrefix = "Class_"

// BodyClass returns the class id of the body part of the given subject.
func BodyClass(subject int) int {
	return subject * 2
}

// HeadClass returns the class id of the head part of the given subject.
func HeadClass(subject int) int {
	return subject*2 + 1
}

// PairedClass returns the sibling part of classID: head for a body class and body for a head class.
func PairedClass(classID int) int {
	if classID%2 != 0 {
		return classID - 1
	}
	return classID + 1
}

// ClassLabel returns the external track label of classID, e.g. "Class_3"
func ClassLabel(classID int) string {
	return fmt.Sprintf("%s%d", classLabelPrefix, classID)
}

// GraceFrames converts a grace window given in seconds into whole frames at the given frame rate.
// Partial frames round up so that the window never ends early.
func GraceFrames(fps, seconds float64) int {
	if fps <= 0 || seconds <= 0 {
		return 0
	}
	return int(math.Ceil(fps*seconds - graceRoundingSlack))
}

// graceRoundingSlack absorbs float noise such as 25*0.2 = 5.000000000000001
const graceRoundingSlack = 1e-9

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
