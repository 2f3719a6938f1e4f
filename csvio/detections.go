package csvio

import (
	"io"

	"github.com/marmor123/mice-tracking/trajectory"
)

// ReadDetections parses a detections table with at least Frame, Class, X and Y columns.
func ReadDetections(r io.Reader) ([]trajectory.Detection, error) {
	t, err := openTable(r, DetectionColumns)
	if err != nil {
		return nil, err
	}
	detections := make([]trajectory.Detection, 0)
	for {
		if err := t.next(); err != nil {
			if err == io.EOF {
				return detections, nil
			}
			return nil, err
		}
		var d trajectory.Detection
		if d.Frame, err = t.nonNegativeInt(ColumnFrame); err != nil {
			return nil, err
		}
		if d.ClassID, err = t.nonNegativeInt(ColumnClass); err != nil {
			return nil, err
		}
		if d.X, err = t.finiteFloat(ColumnX); err != nil {
			return nil, err
		}
		if d.Y, err = t.finiteFloat(ColumnY); err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}
}
