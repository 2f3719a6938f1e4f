package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmor123/mice-tracking/trajectory"
)

func TestReadDetections(t *testing.T) {
	input := "Frame,Class,Track,X,Y\n" +
		"0,0,7,10,10.5\n" +
		" 2 ,1,7, 20 ,-3e2\n"
	detections, err := ReadDetections(strings.NewReader(input))
	require.NoError(t, err)
	expected := []trajectory.Detection{
		{Frame: 0, ClassID: 0, X: 10, Y: 10.5},
		{Frame: 2, ClassID: 1, X: 20, Y: -300},
	}
	if diff := cmp.Diff(expected, detections); diff != "" {
		t.Errorf("detections mismatch (-want +got):\n%s", diff)
	}
}

func TestReadDetectionsHeaderOnly(t *testing.T) {
	detections, err := ReadDetections(strings.NewReader("X,Y,Class,Frame\n"))
	require.NoError(t, err)
	assert.Empty(t, detections)
}

func TestReadDetectionsMalformed(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		line   int
		column string
	}{
		{"empty input", "", 1, ""},
		{"missing column", "Frame,Class,X\n0,0,1\n", 1, ColumnY},
		{"float frame", "Frame,Class,X,Y\n0,0,1,1\n1.5,0,1,1\n", 3, ColumnFrame},
		{"negative class", "Frame,Class,X,Y\n0,-1,1,1\n", 2, ColumnClass},
		{"bad x", "Frame,Class,X,Y\n0,0,abc,1\n", 2, ColumnX},
		{"infinite y", "Frame,Class,X,Y\n0,0,1,Inf\n", 2, ColumnY},
		{"short row", "Frame,Class,X,Y\n0,0,1\n", 2, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			detections, err := ReadDetections(strings.NewReader(c.input))
			assert.Nil(t, detections)
			var parseErr *trajectory.ParseError
			require.True(t, errors.As(err, &parseErr), "unexpected error %v", err)
			assert.Equal(t, c.line, parseErr.Line)
			assert.Equal(t, c.column, parseErr.Column)
		})
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	records := []trajectory.OutputRecord{
		{Frame: 0, ID: "Class_0", ClassID: 0, X: 10, Y: 10},
		{Frame: 1, ID: "Class_0", ClassID: 0, X: 15.333333333333334, Y: 0.1},
		{Frame: 1, ID: "Class_3", ClassID: 3, X: 1e-7, Y: 123456.789},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))
	assert.True(t, strings.HasPrefix(buf.String(), "Frame,ID,Class,X,Y\n0,Class_0,0,10,10\n"))

	first := buf.String()
	parsed, err := ReadRecords(strings.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, records, parsed)

	// Re-written rows are byte-identical
	buf.Reset()
	require.NoError(t, WriteRecords(&buf, parsed))
	assert.Equal(t, first, buf.String())
}

func TestReadRecordsKeepsLabel(t *testing.T) {
	parsed, err := ReadRecords(strings.NewReader("Frame,ID,Class,X,Y\n3,mouse-a,2,15.0,16.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []trajectory.OutputRecord{{Frame: 3, ID: "mouse-a", ClassID: 2, X: 15, Y: 16.5}}, parsed)
}
