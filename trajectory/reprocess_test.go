package trajectory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	records []OutputRecord
	runs    []Run
	loadErr error
	saveErr error
}

func (s *memoryStore) Load(ctx context.Context) ([]OutputRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return append([]OutputRecord(nil), s.records...), nil
}

func (s *memoryStore) Save(ctx context.Context, run Run, records []OutputRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append([]OutputRecord(nil), records...)
	s.runs = append(s.runs, run)
	return nil
}

// reprocessFixture returns detections of subjects 0 and 1 over frames 0..200
func reprocessFixture() []Detection {
	detections := make([]Detection, 0)
	for frame := 0; frame <= 200; frame += 10 {
		f := float64(frame)
		detections = append(detections,
			Detection{Frame: frame, ClassID: 0, X: f, Y: 0},
			Detection{Frame: frame, ClassID: 2, X: f, Y: f},
			Detection{Frame: frame, ClassID: 3, X: 100 + f, Y: 50},
		)
	}
	return detections
}

func TestReprocessIsolation(t *testing.T) {
	engine := NewEngineDefault()
	prior, _, err := engine.Process(reprocessFixture(), 1000)
	require.NoError(t, err)

	// Re-annotated head of subject 1 from frame 100 onward
	updated := make([]Detection, 0)
	for _, d := range reprocessFixture() {
		if d.ClassID == 3 && d.Frame >= 100 {
			d.X, d.Y = 500, 500
		}
		updated = append(updated, d)
	}
	updated = append(updated,
		Detection{Frame: 120, ClassID: 3, X: 0, Y: 0},
		Detection{Frame: 120, ClassID: 3, X: 130, Y: 130},
	)

	merged, report, err := engine.Reprocess(updated, prior, ReprocessRequest{
		ClassID:     SelectClass(3),
		StartFrame:  100,
		GraceFrames: 30,
		Threshold:   1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.DuplicatesDiscarded)

	keptBefore := make([]OutputRecord, 0)
	keptAfter := make([]OutputRecord, 0)
	for _, record := range prior {
		if record.ClassID != 3 || record.Frame < 100 {
			keptBefore = append(keptBefore, record)
		}
	}
	for _, record := range merged {
		if record.ClassID != 3 || record.Frame < 100 {
			keptAfter = append(keptAfter, record)
			continue
		}
		switch {
		case record.Frame == 120:
			// Nearest to class 2 at (120, 120)
			assert.Equal(t, 130.0, record.X)
		case record.Frame%10 == 0:
			assert.Equal(t, 500.0, record.X, "frame %d", record.Frame)
		}
	}
	if diff := cmp.Diff(keptBefore, keptAfter); diff != "" {
		t.Errorf("rows outside of the reprocessed range changed (-before +after):\n%s", diff)
	}
	assert.Len(t, merged, len(prior))
	for i := 1; i < len(merged); i++ {
		assert.True(t, recordLess(merged[i-1], merged[i]), "merged rows out of order at %d", i)
	}
}

func TestReprocessGraceWindow(t *testing.T) {
	prior := []OutputRecord{
		{Frame: 0, ID: "Class_1", ClassID: 1, X: 0, Y: 0},
	}
	detections := []Detection{
		{Frame: 10, ClassID: 1, X: 0, Y: 0},
		{Frame: 11, ClassID: 1, X: 100, Y: 0},
		{Frame: 12, ClassID: 1, X: 200, Y: 0},
		{Frame: 13, ClassID: 1, X: 205, Y: 0},
	}

	merged, report, err := NewEngineDefault().Reprocess(detections, prior, ReprocessRequest{
		ClassID:     SelectClass(1),
		StartFrame:  10,
		GraceFrames: 2,
		Threshold:   10,
	})
	require.NoError(t, err)
	require.Len(t, merged, 5)
	assert.Equal(t, []float64{0, 0, 100, 100, 100}, []float64{merged[0].X, merged[1].X, merged[2].X, merged[3].X, merged[4].X})
	assert.Len(t, report.Freezes, 2)

	merged, report, err = NewEngineDefault().Reprocess(detections, prior, ReprocessRequest{
		ClassID:     SelectClass(1),
		StartFrame:  10,
		GraceFrames: 3,
		Threshold:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 205.0, merged[4].X)
	assert.Empty(t, report.Freezes)
}

func TestReprocessInterpolatesGaps(t *testing.T) {
	prior := []OutputRecord{
		{Frame: 0, ID: "Class_0", ClassID: 0, X: 0, Y: 0},
		{Frame: 5, ID: "Class_0", ClassID: 0, X: 9, Y: 9},
	}
	detections := []Detection{
		{Frame: 4, ClassID: 0, X: 40, Y: 0},
		{Frame: 8, ClassID: 0, X: 80, Y: 0},
	}
	merged, _, err := NewEngineDefault().Reprocess(detections, prior, ReprocessRequest{
		ClassID:    SelectClass(0),
		StartFrame: 4,
		Threshold:  100,
	})
	require.NoError(t, err)
	frames := make([]int, len(merged))
	for i, record := range merged {
		frames[i] = record.Frame
	}
	assert.Equal(t, []int{0, 4, 5, 6, 7, 8}, frames)
	assert.InDelta(t, 60.0, merged[3].X, eps)
}

func TestReprocessErrors(t *testing.T) {
	engine := NewEngineDefault()
	prior := []OutputRecord{{Frame: 0, ID: "Class_0", ClassID: 0}}

	_, _, err := engine.Reprocess(nil, prior, ReprocessRequest{Threshold: 1})
	var noSelection *NoActiveSelectionError
	assert.True(t, errors.As(err, &noSelection))

	_, _, err = engine.Reprocess(nil, prior, ReprocessRequest{ClassID: SelectClass(4), Threshold: 1})
	var notFound *TrackNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 4, notFound.ClassID)

	_, _, err = engine.Reprocess(nil, prior, ReprocessRequest{ClassID: SelectClass(0), Threshold: -1})
	assert.Error(t, err)
	_, _, err = engine.Reprocess(nil, prior, ReprocessRequest{ClassID: SelectClass(0), StartFrame: -1})
	assert.Error(t, err)
	_, _, err = engine.Reprocess(nil, prior, ReprocessRequest{ClassID: SelectClass(0), GraceFrames: -1})
	assert.Error(t, err)
}

func TestReprocessStore(t *testing.T) {
	ctx := context.Background()
	engine := NewEngineDefault()

	t.Run("round trip", func(t *testing.T) {
		store := &memoryStore{}
		_, err := engine.ProcessStore(ctx, store, reprocessFixture(), 1000)
		require.NoError(t, err)
		require.Len(t, store.runs, 1)
		assert.Equal(t, RunKindFull, store.runs[0].Kind)

		report, err := engine.ReprocessStore(ctx, store, reprocessFixture(), ReprocessRequest{
			ClassID:    SelectClass(2),
			StartFrame: 50,
			Threshold:  1000,
		})
		require.NoError(t, err)
		require.Len(t, store.runs, 2)
		assert.Equal(t, RunKindReprocess, store.runs[1].Kind)
		assert.Equal(t, report.RunID, store.runs[1].ID)
		assert.Equal(t, 2, store.runs[1].ClassID)
	})

	t.Run("store untouched on error", func(t *testing.T) {
		store := &memoryStore{records: []OutputRecord{{Frame: 0, ID: "Class_0", ClassID: 0}}}
		before := append([]OutputRecord(nil), store.records...)

		_, err := engine.ReprocessStore(ctx, store, reprocessFixture(), ReprocessRequest{ClassID: SelectClass(3)})
		var notFound *TrackNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, before, store.records)
		assert.Empty(t, store.runs)

		_, err = engine.ReprocessStore(ctx, store, reprocessFixture(), ReprocessRequest{})
		var noSelection *NoActiveSelectionError
		assert.True(t, errors.As(err, &noSelection))
	})

	t.Run("failed save", func(t *testing.T) {
		store := &memoryStore{
			records: []OutputRecord{{Frame: 0, ID: "Class_0", ClassID: 0}},
			saveErr: errors.New("disk full"),
		}
		_, err := engine.ReprocessStore(ctx, store, reprocessFixture(), ReprocessRequest{ClassID: SelectClass(0)})
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("failed load", func(t *testing.T) {
		store := &memoryStore{loadErr: errors.New("locked")}
		_, err := engine.ReprocessStore(ctx, store, nil, ReprocessRequest{ClassID: SelectClass(0)})
		assert.ErrorContains(t, err, "locked")
	})
}
