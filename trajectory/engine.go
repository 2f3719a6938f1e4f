package trajectory

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Engine reconstructs one dense, jump-clamped trajectory per class out of raw detections.
// It holds no per-run state and may be shared between goroutines.
type Engine struct {
	// Number of tracked subjects. Classes 0..2*subjects-1 are processed. Default 5
	subjects int
	// Number of classes interpolated and clamped concurrently. Default 1
	workers int
	log     logrus.FieldLogger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithWorkers enables per-class parallelism. Values below 1 mean sequential processing.
func WithWorkers(workers int) EngineOption {
	return func(e *Engine) {
		if workers < 1 {
			workers = 1
		}
		e.workers = workers
	}
}

// WithLogger sets the logger receiving run diagnostics
func WithLogger(log logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngineDefault creates default instance of Engine
func NewEngineDefault() *Engine {
	return NewEngine(5)
}

// NewEngine creates new instance of Engine for the given number of subjects
func NewEngine(subjects int, opts ...EngineOption) *Engine {
	silent := logrus.New()
	silent.SetOutput(io.Discard)
	e := &Engine{
		subjects: subjects,
		workers:  1,
		log:      silent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subjects returns number of subjects
func (e *Engine) Subjects() int {
	return e.subjects
}

// classTrack is the result of the interpolate and clamp stage for one class
type classTrack struct {
	records []OutputRecord
	freezes []FreezeEvent
}

// buildTracks interpolates and clamps every class found in resolved.
// Classes without points are left out. activeFrom is passed to Clamp.
func (e *Engine) buildTracks(resolved []ResolvedPoint, threshold float64, activeFrom int) ([]classTrack, error) {
	classes, byClass := groupByClass(resolved)
	tracks := make([]classTrack, len(classes))

	build := func(idx int) error {
		classID := classes[idx]
		dense, err := Interpolate(classID, byClass[classID])
		if err != nil {
			var emptyErr *EmptyClassError
			if errors.As(err, &emptyErr) {
				return nil
			}
			return err
		}
		clamped, freezes := Clamp(dense, threshold, activeFrom)
		records := make([]OutputRecord, len(clamped))
		for i, pt := range clamped {
			records[i] = newOutputRecord(pt)
		}
		tracks[idx] = classTrack{records: records, freezes: freezes}
		return nil
	}

	if e.workers <= 1 {
		for idx := range classes {
			if err := build(idx); err != nil {
				return nil, err
			}
		}
		return tracks, nil
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for idx := range classes {
		idx := idx
		g.Go(func() error {
			return build(idx)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tracks, nil
}

func (e *Engine) logFreezes(runID uuid.UUID, freezes []FreezeEvent) {
	for _, freeze := range freezes {
		e.log.WithFields(logrus.Fields{
			"run_id":     runID.String(),
			"class":      freeze.ClassID,
			"frame":      freeze.Frame,
			"previous_x": freeze.Previous.X,
			"previous_y": freeze.Previous.Y,
			"rejected_x": freeze.Rejected.X,
			"rejected_y": freeze.Rejected.Y,
		}).Debug("threshold exceeded, position frozen")
	}
}

func validateThreshold(threshold float64) error {
	if threshold < 0 {
		return errors.Errorf("threshold must be non-negative, got %v", threshold)
	}
	return nil
}

// Process runs the full pipeline over detections: grouping, disambiguation, interpolation and clamping.
// The output is sorted by (Frame, ClassID) and holds exactly one record per frame of each class's observed range.
func (e *Engine) Process(detections []Detection, threshold float64) ([]OutputRecord, Report, error) {
	report := Report{
		RunID:           uuid.New(),
		InputDetections: len(detections),
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, report, err
	}
	if e.subjects < 1 {
		return nil, report, errors.Errorf("number of subjects must be positive, got %d", e.subjects)
	}

	maxClass := HeadClass(e.subjects - 1)
	groups := GroupDetections(detections, func(d Detection) bool {
		return d.ClassID >= 0 && d.ClassID <= maxClass
	})
	report.IgnoredDetections = groups.Skipped()

	resolved, duplicates := disambiguateSubjects(groups, e.subjects)
	report.DuplicatesDiscarded = duplicates
	report.ResolvedPoints = len(resolved)

	tracks, err := e.buildTracks(resolved, threshold, clampFromStart)
	if err != nil {
		return nil, report, errors.Wrap(err, "Can't build tracks")
	}
	perClass := make([][]OutputRecord, len(tracks))
	for i, track := range tracks {
		perClass[i] = track.records
		report.Freezes = append(report.Freezes, track.freezes...)
	}
	records := mergeTracks(perClass)
	report.OutputRecords = len(records)

	e.logFreezes(report.RunID, report.Freezes)
	e.log.WithFields(logrus.Fields{
		"run_id":     report.RunID.String(),
		"input":      report.InputDetections,
		"ignored":    report.IgnoredDetections,
		"duplicates": report.DuplicatesDiscarded,
		"resolved":   report.ResolvedPoints,
		"output":     report.OutputRecords,
		"freezes":    len(report.Freezes),
	}).Info("trajectories processed")
	return records, report, nil
}

// ProcessStore runs Process and saves its output into store.
// Nothing is saved when processing fails.
func (e *Engine) ProcessStore(ctx context.Context, store RecordStore, detections []Detection, threshold float64) (Report, error) {
	records, report, err := e.Process(detections, threshold)
	if err != nil {
		return report, err
	}
	run := Run{
		ID:         report.RunID,
		Kind:       RunKindFull,
		ClassID:    -1,
		StartFrame: 0,
		Threshold:  threshold,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.Save(ctx, run, records); err != nil {
		return report, errors.Wrap(err, "Can't save processed records")
	}
	return report, nil
}
