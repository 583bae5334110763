// Package core holds the domain model of recall and the ports the engine
// talks to (persistence, notifications, link resolution).
package core

import (
	"fmt"
	"time"
)

// Document is the persisted state handed to and received from the host:
// the note forest and the curve catalog.
type Document struct {
	Notes            []Note
	ForgettingCurves []Curve
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{}
	if d.Notes != nil {
		out.Notes = make([]Note, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = n.Clone()
		}
	}
	if d.ForgettingCurves != nil {
		out.ForgettingCurves = make([]Curve, len(d.ForgettingCurves))
		for i, c := range d.ForgettingCurves {
			c.Intervals = append([]Interval(nil), c.Intervals...)
			out.ForgettingCurves[i] = c
		}
	}
	return out
}

// EventType represents the kind of change published by the engine.
type EventType string

const (
	EventCommit EventType = "COMMIT"
	EventStatus EventType = "STATUS"
	EventReload EventType = "RELOAD"
	EventModify EventType = "MODIFY"
)

// Event represents a change in the engine or in the underlying storage.
type Event struct {
	Type      EventType
	Op        string // operation name for commits, e.g. "mark-done"
	Key       string // note key, when the event concerns a single note
	Status    Status // new status for EventStatus
	Title     string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	switch e.Type {
	case EventStatus:
		return fmt.Sprintf("%s %s %q -> %s", e.Type, e.Key, e.Title, e.Status)
	case EventCommit:
		return fmt.Sprintf("%s %s %s", e.Type, e.Op, e.Key)
	default:
		return fmt.Sprintf("%s %s", e.Type, e.Key)
	}
}

// Transition records a note whose classification changed during a tick.
type Transition struct {
	Key   string
	Title string
	From  Status
	To    Status
	At    time.Time
}

// Level is the notification level derived from the new status.
func (t Transition) Level() string {
	switch t.To {
	case StatusWarningSevere:
		return "severe"
	case StatusWarning:
		return "warning"
	default:
		return "ok"
	}
}
