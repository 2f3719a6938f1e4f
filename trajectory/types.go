package trajectory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Detection is a single raw point produced by the upstream detector for one frame.
// Several detections may share the same (Frame, ClassID).
type Detection struct {
	Frame   int
	ClassID int
	X       float64
	Y       float64
}

// Point returns detection's position
func (d Detection) Point() Point {
	return Point{X: d.X, Y: d.Y}
}

// ResolvedPoint is the single position kept for a (Frame, ClassID) pair.
type ResolvedPoint struct {
	Frame   int
	ClassID int
	X       float64
	Y       float64
}

// Point returns resolved position
func (rp ResolvedPoint) Point() Point {
	return Point{X: rp.X, Y: rp.Y}
}

// OutputRecord is the externally visible unit of a processed trajectory.
type OutputRecord struct {
	Frame   int
	ID      string
	ClassID int
	X       float64
	Y       float64
}

func newOutputRecord(rp ResolvedPoint) OutputRecord {
	return OutputRecord{
		Frame:   rp.Frame,
		ID:      ClassLabel(rp.ClassID),
		ClassID: rp.ClassID,
		X:       rp.X,
		Y:       rp.Y,
	}
}

// recordLess orders records by (Frame, ClassID)
func recordLess(a, b OutputRecord) bool {
	if a.Frame != b.Frame {
		return a.Frame < b.Frame
	}
	return a.ClassID < b.ClassID
}

// FreezeEvent describes a single rejected jump.
type FreezeEvent struct {
	Frame    int
	ClassID  int
	Previous Point
	Rejected Point
}

// Report carries advisory diagnostics of a run. Nothing in it affects the produced records.
type Report struct {
	RunID               uuid.UUID
	InputDetections     int
	IgnoredDetections   int
	DuplicatesDiscarded int
	ResolvedPoints      int
	OutputRecords       int
	Freezes             []FreezeEvent
}

// RunKind tells a full run apart from a scoped rerun
type RunKind string

const (
	RunKindFull      RunKind = "full"
	RunKindReprocess RunKind = "reprocess"
)

// Run is the metadata persisted alongside records by a RecordStore.
type Run struct {
	ID          uuid.UUID
	Kind        RunKind
	ClassID     int
	StartFrame  int
	GraceFrames int
	Threshold   float64
	CreatedAt   time.Time
}

// RecordStore persists the sorted output of the latest run.
// Save must replace the stored records as a whole or not at all.
type RecordStore interface {
	Load(ctx context.Context) ([]OutputRecord, error)
	Save(ctx context.Context, run Run, records []OutputRecord) error
}
