package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/recall/pkg/core"
)

// Wire model of the persisted document. Field names follow the stored
// format: {"notes": [...], "forgettingCurves": [...]}.

type documentWire struct {
	Notes            []noteWire  `json:"notes" yaml:"notes"`
	ForgettingCurves []curveWire `json:"forgettingCurves" yaml:"forgettingCurves"`
}

type noteWire struct {
	Key                flexString  `json:"key" yaml:"key"`
	Title              string      `json:"title" yaml:"title"`
	LinkNote           string      `json:"linkNote,omitempty" yaml:"linkNote,omitempty"`
	NextReviewDate     *timestamp  `json:"nextReviewDate,omitempty" yaml:"nextReviewDate,omitempty"`
	ReviewDates        []timestamp `json:"reviewDates" yaml:"reviewDates"`
	SkippedReviewDates []timestamp `json:"skippedReviewDates" yaml:"skippedReviewDates"`
	ForgettingCurveID  flexString  `json:"forgettingCurveId,omitempty" yaml:"forgettingCurveId,omitempty"`
	LastActiveInterval *int        `json:"lastActiveInterval,omitempty" yaml:"lastActiveInterval,omitempty"`
	Status             core.Status `json:"status" yaml:"status"`
	Children           []noteWire  `json:"children,omitempty" yaml:"children,omitempty"`
}

type curveWire struct {
	ID        flexString     `json:"id" yaml:"id"`
	Key       flexString     `json:"key,omitempty" yaml:"key,omitempty"`
	Title     string         `json:"title" yaml:"title"`
	Intervals []intervalWire `json:"intervals" yaml:"intervals"`
}

type intervalWire struct {
	Key    flexString          `json:"key" yaml:"key"`
	Value  float64             `json:"value" yaml:"value"`
	Format core.IntervalFormat `json:"format" yaml:"format"`
}

// flexString accepts both strings and numbers. Older data used
// millisecond timestamps as keys.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("key must be a string or a number: %s", data)
	}
	*s = flexString(n.String())
	return nil
}

func (s *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: key must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = flexString(node.Value)
	return nil
}

// timestamp encodes as RFC 3339 and decodes leniently.
type timestamp time.Time

// Accepted layouts, most specific first. Layouts without a zone are read in
// local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		var t time.Time
		var err error
		if strings.Contains(layout, "Z07") {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(formatTimestamp(time.Time(t)))
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = timestamp{}
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	parsed, err := parseTimestamp(raw)
	if err != nil {
		return err
	}
	*t = timestamp(parsed)
	return nil
}

func (t timestamp) MarshalYAML() (any, error) {
	return formatTimestamp(time.Time(t)), nil
}

func (t *timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*t = timestamp{}
		return nil
	}
	parsed, err := parseTimestamp(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = timestamp(parsed)
	return nil
}

func timestamps(in []timestamp) []time.Time {
	if len(in) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(in))
	for _, t := range in {
		if !time.Time(t).IsZero() {
			out = append(out, time.Time(t))
		}
	}
	return out
}

func toWireTimestamps(in []time.Time) []timestamp {
	out := make([]timestamp, len(in))
	for i, t := range in {
		out[i] = timestamp(t)
	}
	return out
}

func fromWire(w documentWire) core.Document {
	doc := core.Document{}
	if len(w.Notes) > 0 {
		doc.Notes = notesFromWire(w.Notes)
	}
	for _, cw := range w.ForgettingCurves {
		id := string(cw.ID)
		if id == "" {
			id = string(cw.Key)
		}
		if id == "" {
			// Unaddressable: no note can be bound to it.
			continue
		}
		c := core.Curve{ID: id, Title: cw.Title}
		for _, iw := range cw.Intervals {
			format := iw.Format
			if format == "" {
				format = core.FormatSeconds
			}
			c.Intervals = append(c.Intervals, core.Interval{
				Key:    string(iw.Key),
				Value:  core.ClampFloatSeconds(iw.Value),
				Format: format,
			})
		}
		doc.ForgettingCurves = append(doc.ForgettingCurves, c)
	}
	return doc
}

func notesFromWire(in []noteWire) []core.Note {
	out := make([]core.Note, len(in))
	for i, nw := range in {
		n := core.Note{
			Key:                string(nw.Key),
			Title:              nw.Title,
			LinkNote:           nw.LinkNote,
			ReviewDates:        timestamps(nw.ReviewDates),
			SkippedReviewDates: timestamps(nw.SkippedReviewDates),
			ForgettingCurveID:  string(nw.ForgettingCurveID),
			Status:             nw.Status,
		}
		if nw.NextReviewDate != nil {
			n.NextReviewDate = time.Time(*nw.NextReviewDate)
		}
		if nw.LastActiveInterval != nil {
			n.LastActiveInterval = *nw.LastActiveInterval
		}
		if !n.Status.Valid() {
			n.Status = ""
		}
		if len(nw.Children) > 0 {
			n.Children = notesFromWire(nw.Children)
		}
		out[i] = n
	}
	return out
}

func toWire(doc core.Document) documentWire {
	w := documentWire{
		Notes:            notesToWire(doc.Notes),
		ForgettingCurves: make([]curveWire, 0, len(doc.ForgettingCurves)),
	}
	for _, c := range doc.ForgettingCurves {
		cw := curveWire{ID: flexString(c.ID), Title: c.Title, Intervals: make([]intervalWire, 0, len(c.Intervals))}
		for _, iv := range c.Intervals {
			cw.Intervals = append(cw.Intervals, intervalWire{
				Key:    flexString(iv.Key),
				Value:  float64(iv.Value),
				Format: iv.Format,
			})
		}
		w.ForgettingCurves = append(w.ForgettingCurves, cw)
	}
	return w
}

func notesToWire(in []core.Note) []noteWire {
	out := make([]noteWire, len(in))
	for i, n := range in {
		nw := noteWire{
			Key:                flexString(n.Key),
			Title:              n.Title,
			LinkNote:           n.LinkNote,
			ReviewDates:        toWireTimestamps(n.ReviewDates),
			SkippedReviewDates: toWireTimestamps(n.SkippedReviewDates),
			ForgettingCurveID:  flexString(n.ForgettingCurveID),
			Status:             n.Status,
		}
		if n.Scheduled() {
			ts := timestamp(n.NextReviewDate)
			nw.NextReviewDate = &ts
		}
		if n.LastActiveInterval > 0 {
			cursor := n.LastActiveInterval
			nw.LastActiveInterval = &cursor
		}
		if len(n.Children) > 0 {
			nw.Children = notesToWire(n.Children)
		}
		out[i] = nw
	}
	return out
}
