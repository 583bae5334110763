package core

import (
	"slices"
	"time"
)

// Status is the urgency classification derived from a note's next review date.
// It is never authored by the user; the status classifier overwrites it.
type Status string

const (
	StatusOK            Status = "ok"
	StatusWarning       Status = "warning"
	StatusWarningSevere Status = "warningSevere"
)

// Valid reports whether s is one of the known classifications.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarning, StatusWarningSevere:
		return true
	}
	return false
}

// Note is a node of the review tree.
//
// Keys are unique across the whole forest, not only among siblings.
// A zero NextReviewDate means the note was never scheduled, an empty
// ForgettingCurveID means no schedule is tracked, and a zero
// LastActiveInterval means the cursor has not been set yet.
type Note struct {
	Key                string
	Title              string
	LinkNote           string
	NextReviewDate     time.Time
	ReviewDates        []time.Time
	SkippedReviewDates []time.Time
	ForgettingCurveID  string
	LastActiveInterval int
	Status             Status
	Children           []Note
}

// Scheduled reports whether the note has a next review date.
func (n Note) Scheduled() bool {
	return !n.NextReviewDate.IsZero()
}

// Clone returns a deep copy of the note and its subtree.
func (n Note) Clone() Note {
	n.ReviewDates = slices.Clone(n.ReviewDates)
	n.SkippedReviewDates = slices.Clone(n.SkippedReviewDates)
	if n.Children != nil {
		children := make([]Note, len(n.Children))
		for i, c := range n.Children {
			children[i] = c.Clone()
		}
		n.Children = children
	}
	return n
}

// NotePatch describes a partial update of a note. Nil fields are left as is.
// Children and Key are structural and cannot be patched.
type NotePatch struct {
	Title              *string
	LinkNote           *string
	NextReviewDate     *time.Time
	ReviewDates        *[]time.Time
	SkippedReviewDates *[]time.Time
	ForgettingCurveID  *string
	LastActiveInterval *int
	Status             *Status
}

// Empty reports whether the patch changes nothing.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.LinkNote == nil && p.NextReviewDate == nil &&
		p.ReviewDates == nil && p.SkippedReviewDates == nil &&
		p.ForgettingCurveID == nil && p.LastActiveInterval == nil && p.Status == nil
}

// Apply merges the patch into n and returns the result. Slices are copied so
// the returned note never shares backing arrays with the patch.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.LinkNote != nil {
		n.LinkNote = *p.LinkNote
	}
	if p.NextReviewDate != nil {
		n.NextReviewDate = *p.NextReviewDate
	}
	if p.ReviewDates != nil {
		n.ReviewDates = slices.Clone(*p.ReviewDates)
	}
	if p.SkippedReviewDates != nil {
		n.SkippedReviewDates = slices.Clone(*p.SkippedReviewDates)
	}
	if p.ForgettingCurveID != nil {
		n.ForgettingCurveID = *p.ForgettingCurveID
	}
	if p.LastActiveInterval != nil {
		n.LastActiveInterval = *p.LastActiveInterval
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
	return n
}
