package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/marmor123/mice-tracking/trajectory"
)

// ReadRecords parses a processed table. The ID column is kept verbatim.
func ReadRecords(r io.Reader) ([]trajectory.OutputRecord, error) {
	t, err := openTable(r, RecordColumns)
	if err != nil {
		return nil, err
	}
	records := make([]trajectory.OutputRecord, 0)
	for {
		if err := t.next(); err != nil {
			if err == io.EOF {
				return records, nil
			}
			return nil, err
		}
		var record trajectory.OutputRecord
		if record.Frame, err = t.nonNegativeInt(ColumnFrame); err != nil {
			return nil, err
		}
		record.ID = t.value(ColumnID)
		if record.ClassID, err = t.nonNegativeInt(ColumnClass); err != nil {
			return nil, err
		}
		if record.X, err = t.finiteFloat(ColumnX); err != nil {
			return nil, err
		}
		if record.Y, err = t.finiteFloat(ColumnY); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// WriteRecords writes the header and one row per record, in the given order.
func WriteRecords(w io.Writer, records []trajectory.OutputRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RecordColumns); err != nil {
		return errors.Wrap(err, "Can't write header")
	}
	row := make([]string, len(RecordColumns))
	for _, record := range records {
		row[0] = strconv.Itoa(record.Frame)
		row[1] = record.ID
		row[2] = strconv.Itoa(record.ClassID)
		row[3] = formatFloat(record.X)
		row[4] = formatFloat(record.Y)
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "Can't write record of class %d at frame %d", record.ClassID, record.Frame)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "Can't flush records")
}
