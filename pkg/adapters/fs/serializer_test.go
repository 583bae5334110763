package fs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/recall/pkg/core"
)

var t0 = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func sampleDocument() core.Document {
	return core.Document{
		Notes: []core.Note{
			{
				Key:                "n1",
				Title:              "Parent",
				LinkNote:           "dir/parent note.md",
				NextReviewDate:     t0,
				ReviewDates:        []time.Time{t0.Add(-time.Hour)},
				SkippedReviewDates: []time.Time{t0.Add(-2 * time.Hour)},
				ForgettingCurveID:  "c1",
				LastActiveInterval: 2,
				Status:             core.StatusWarning,
				Children: []core.Note{
					{Key: "n2", Title: "Child", Status: core.StatusOK},
				},
			},
		},
		ForgettingCurves: []core.Curve{{
			ID:    "c1",
			Title: "default",
			Intervals: []core.Interval{
				{Key: "i1", Value: 60, Format: core.FormatMinutes},
				{Key: "i2", Value: 86400, Format: core.FormatDays},
			},
		}},
	}
}

func TestSerializersPreserveDocument(t *testing.T) {
	for ext, s := range DefaultSerializers() {
		t.Run(ext, func(t *testing.T) {
			data, err := s.Serialize(sampleDocument())
			require.NoError(t, err)

			got, err := s.Parse(strings.NewReader(string(data)))
			require.NoError(t, err)
			assert.Equal(t, sampleDocument(), got)
		})
	}
}

func TestJSONWireFormat(t *testing.T) {
	data, err := NewJSONSerializer().Serialize(sampleDocument())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"forgettingCurves"`)
	assert.Contains(t, out, `"nextReviewDate": "2024-02-03T04:05:06Z"`)
	assert.Contains(t, out, `"forgettingCurveId": "c1"`)
	assert.Contains(t, out, `"lastActiveInterval": 2`)
	assert.Contains(t, out, `"status": "warning"`)

	// The child is unscheduled and has no cursor: both fields are omitted.
	child := out[strings.Index(out, `"key": "n2"`):]
	assert.NotContains(t, child, "nextReviewDate")
	assert.NotContains(t, child, "lastActiveInterval")
}

func TestJSONLenientDecoding(t *testing.T) {
	input := `{
	  "notes": [
	    {"key": 1700000000000, "title": "numeric key", "nextReviewDate": "2024-01-02T10:20:30",
	     "reviewDates": ["2024-01-01T00:00:00.000Z", ""], "skippedReviewDates": null,
	     "forgettingCurveId": 1699999999999, "lastActiveInterval": null, "status": "bogus"},
	    {"key": "b", "title": "empty date", "nextReviewDate": "", "status": "ok"}
	  ],
	  "forgettingCurves": [
	    {"key": 1699999999999, "title": "legacy", "intervals": [
	      {"key": 1, "value": -30, "format": "seconds"},
	      {"key": 2, "value": 90.6}
	    ]}
	  ]
	}`

	doc, err := NewJSONSerializer().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Notes, 2)

	a := doc.Notes[0]
	assert.Equal(t, "1700000000000", a.Key)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 20, 30, 0, time.Local), a.NextReviewDate)
	require.Len(t, a.ReviewDates, 1, "empty entries are dropped")
	assert.True(t, a.ReviewDates[0].Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, a.SkippedReviewDates)
	assert.Equal(t, "1699999999999", a.ForgettingCurveID)
	assert.Zero(t, a.LastActiveInterval)
	assert.Equal(t, core.Status(""), a.Status)

	assert.False(t, doc.Notes[1].Scheduled())

	require.Len(t, doc.ForgettingCurves, 1)
	c := doc.ForgettingCurves[0]
	assert.Equal(t, "1699999999999", c.ID, "legacy key becomes the id")
	assert.Equal(t, int64(0), c.Intervals[0].Value)
	assert.Equal(t, int64(91), c.Intervals[1].Value)
	assert.Equal(t, core.FormatSeconds, c.Intervals[1].Format)
}

func TestJSONDecodingBoundsCurves(t *testing.T) {
	input := `{
	  "notes": [{"key": "a", "title": "unbound"}],
	  "forgettingCurves": [
	    {"title": "no id", "intervals": [{"key": "x", "value": 60}]},
	    {"id": "c", "title": "huge", "intervals": [{"key": "y", "value": 1e300}]}
	  ]
	}`

	doc, err := NewJSONSerializer().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.ForgettingCurves, 1, "curves without id or key are dropped")
	c := doc.ForgettingCurves[0]
	assert.Equal(t, "c", c.ID)
	assert.Equal(t, core.MaxIntervalSeconds, c.Intervals[0].Value)
}

func TestParseEmptyInput(t *testing.T) {
	for ext, s := range DefaultSerializers() {
		doc, err := s.Parse(strings.NewReader("  \n"))
		require.NoError(t, err, ext)
		assert.Empty(t, doc.Notes, ext)
	}
}

func TestParseInvalidInput(t *testing.T) {
	_, err := NewJSONSerializer().Parse(strings.NewReader(`{"notes": [{"key": {}}]}`))
	assert.Error(t, err)

	_, err = NewJSONSerializer().Parse(strings.NewReader(`{"notes": [{"key": "a", "nextReviewDate": "yesterday"}]}`))
	assert.Error(t, err)

	_, err = NewYAMLSerializer().Parse(strings.NewReader("notes:\n  - key: [1, 2]\n"))
	assert.Error(t, err)
}

func TestYAMLDecoding(t *testing.T) {
	input := `
notes:
  - key: 42
    title: from yaml
    nextReviewDate: 2024-03-04T05:06:07Z
    reviewDates: []
    status: ok
forgettingCurves:
  - id: c
    title: yaml curve
    intervals:
      - {key: a, value: 3600, format: hours}
`
	doc, err := NewYAMLSerializer().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Notes, 1)
	assert.Equal(t, "42", doc.Notes[0].Key)
	assert.True(t, doc.Notes[0].NextReviewDate.Equal(time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)))
	assert.Equal(t, core.FormatHours, doc.ForgettingCurves[0].Intervals[0].Format)
}

func TestSerializerFor(t *testing.T) {
	s, err := SerializerFor(DefaultSerializers(), "data/recall.YML")
	require.NoError(t, err)
	assert.IsType(t, &YAMLSerializer{}, s)

	_, err = SerializerFor(DefaultSerializers(), "recall.csv")
	assert.Error(t, err)
}
