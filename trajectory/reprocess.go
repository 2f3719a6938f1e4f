package trajectory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReprocessRequest scopes a rerun to one class from StartFrame onward.
type ReprocessRequest struct {
	// Class to redo. Nil means nothing is selected
	ClassID *int
	// First frame to recompute. Earlier frames of the class are kept as stored
	StartFrame int
	// Number of frames after StartFrame during which jumps are not clamped
	GraceFrames int
	Threshold   float64
}

// SelectClass is a helper for filling ReprocessRequest.ClassID
func SelectClass(classID int) *int {
	return &classID
}

func (req ReprocessRequest) validate(prior []OutputRecord) (int, error) {
	if req.ClassID == nil {
		return 0, &NoActiveSelectionError{}
	}
	classID := *req.ClassID
	if classID < 0 {
		return 0, errors.Errorf("class id must be non-negative, got %d", classID)
	}
	if req.StartFrame < 0 {
		return 0, errors.Errorf("start frame must be non-negative, got %d", req.StartFrame)
	}
	if req.GraceFrames < 0 {
		return 0, errors.Errorf("grace window must be non-negative, got %d", req.GraceFrames)
	}
	if err := validateThreshold(req.Threshold); err != nil {
		return 0, err
	}
	for _, record := range prior {
		if record.ClassID == classID {
			return classID, nil
		}
	}
	return 0, &TrackNotFoundError{ClassID: classID}
}

// Reprocess recomputes a single class from req.StartFrame onward and splices the result into prior.
// Rows of other classes and rows of the class before StartFrame are carried over unchanged.
// Clamping is suppressed on [StartFrame, StartFrame+GraceFrames) so a re-annotated track can settle.
// The returned slice is sorted by (Frame, ClassID); prior itself is never modified.
func (e *Engine) Reprocess(detections []Detection, prior []OutputRecord, req ReprocessRequest) ([]OutputRecord, Report, error) {
	report := Report{
		RunID:           uuid.New(),
		InputDetections: len(detections),
	}
	classID, err := req.validate(prior)
	if err != nil {
		return nil, report, err
	}
	paired := PairedClass(classID)

	groups := GroupDetections(detections, func(d Detection) bool {
		return d.Frame >= req.StartFrame && (d.ClassID == classID || d.ClassID == paired)
	})
	report.IgnoredDetections = groups.Skipped()

	resolved, duplicates := disambiguateClass(groups, classID)
	report.DuplicatesDiscarded = duplicates
	report.ResolvedPoints = len(resolved)

	tracks, err := e.buildTracks(resolved, req.Threshold, req.StartFrame+req.GraceFrames)
	if err != nil {
		return nil, report, errors.Wrapf(err, "Can't rebuild track of class %d", classID)
	}
	fresh := make([]OutputRecord, 0)
	for _, track := range tracks {
		fresh = append(fresh, track.records...)
		report.Freezes = append(report.Freezes, track.freezes...)
	}

	merged := spliceRecords(prior, fresh, classID, req.StartFrame)
	report.OutputRecords = len(merged)

	e.logFreezes(report.RunID, report.Freezes)
	e.log.WithFields(logrus.Fields{
		"run_id":       report.RunID.String(),
		"class":        classID,
		"paired_class": paired,
		"start_frame":  req.StartFrame,
		"grace_frames": req.GraceFrames,
		"duplicates":   report.DuplicatesDiscarded,
		"recomputed":   len(fresh),
		"output":       report.OutputRecords,
		"freezes":      len(report.Freezes),
	}).Info("track reprocessed")
	return merged, report, nil
}

// spliceRecords drops prior rows of classID at or after startFrame, adds fresh rows and re-sorts by (Frame, ClassID).
func spliceRecords(prior, fresh []OutputRecord, classID, startFrame int) []OutputRecord {
	merged := make([]OutputRecord, 0, len(prior)+len(fresh))
	for _, record := range prior {
		if record.ClassID == classID && record.Frame >= startFrame {
			continue
		}
		merged = append(merged, record)
	}
	merged = append(merged, fresh...)
	sort.SliceStable(merged, func(i, j int) bool {
		return recordLess(merged[i], merged[j])
	})
	return merged
}

// ReprocessStore loads prior output from store, reprocesses it and saves the merged result back.
// The store is left untouched on any error. Calls against the same store must be serialized by the caller.
func (e *Engine) ReprocessStore(ctx context.Context, store RecordStore, detections []Detection, req ReprocessRequest) (Report, error) {
	if req.ClassID == nil {
		return Report{}, &NoActiveSelectionError{}
	}
	prior, err := store.Load(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "Can't load stored records")
	}
	merged, report, err := e.Reprocess(detections, prior, req)
	if err != nil {
		return report, err
	}
	run := Run{
		ID:          report.RunID,
		Kind:        RunKindReprocess,
		ClassID:     *req.ClassID,
		StartFrame:  req.StartFrame,
		GraceFrames: req.GraceFrames,
		Threshold:   req.Threshold,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Save(ctx, run, merged); err != nil {
		return report, errors.Wrapf(err, "Can't save reprocessed records of class %d", *req.ClassID)
	}
	return report, nil
}
