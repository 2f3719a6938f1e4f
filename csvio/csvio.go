// Package csvio reads raw detections and reads/writes processed trajectory records as CSV.
//
// Parsing is strict: the first malformed row aborts the read with a *trajectory.ParseError.
package csvio

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/marmor123/mice-tracking/trajectory"
)

const (
	ColumnFrame = "Frame"
	ColumnID    = "ID"
	ColumnClass = "Class"
	ColumnX     = "X"
	ColumnY     = "Y"
)

// DetectionColumns are required in a detections file. Other columns are ignored
var DetectionColumns = []string{ColumnFrame, ColumnClass, ColumnX, ColumnY}

// RecordColumns is the header of a processed file
var RecordColumns = []string{ColumnFrame, ColumnID, ColumnClass, ColumnX, ColumnY}

var (
	errNegative  = errors.New("value must be non-negative")
	errNotFinite = errors.New("value must be finite")
)

// table wraps csv.Reader with header based column lookup
type table struct {
	reader  *csv.Reader
	columns map[string]int
	row     []string
	line    int
}

func openTable(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, &trajectory.ParseError{Line: 1, Err: errors.New("missing header")}
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := columns[name]; !ok {
			columns[name] = idx
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, &trajectory.ParseError{Line: 1, Column: name, Err: errors.New("missing required column")}
		}
	}
	return &table{reader: reader, columns: columns}, nil
}

// next advances to the next row. It returns io.EOF after the last row
func (t *table) next() error {
	row, err := t.reader.Read()
	if err != nil {
		if err == io.EOF {
			return err
		}
		return wrapCSVError(err)
	}
	t.row = row
	t.line, _ = t.reader.FieldPos(0)
	return nil
}

func (t *table) value(column string) string {
	return strings.TrimSpace(t.row[t.columns[column]])
}

func (t *table) parseError(column string, err error) error {
	return &trajectory.ParseError{Line: t.line, Column: column, Value: t.value(column), Err: err}
}

func (t *table) nonNegativeInt(column string) (int, error) {
	v, err := strconv.Atoi(t.value(column))
	if err != nil {
		return 0, t.parseError(column, err)
	}
	if v < 0 {
		return 0, t.parseError(column, errNegative)
	}
	return v, nil
}

func (t *table) finiteFloat(column string) (float64, error) {
	v, err := strconv.ParseFloat(t.value(column), 64)
	if err != nil {
		return 0, t.parseError(column, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, t.parseError(column, errNotFinite)
	}
	return v, nil
}

func wrapCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &trajectory.ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return errors.Wrap(err, "Can't read CSV")
}

// formatFloat uses the shortest representation that parses back to the same value
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
