// Package status derives each note's urgency from its next review date and
// runs the periodic re-classification.
package status

import (
	"time"

	"github.com/aretw0/recall/pkg/core"
)

const (
	// DefaultInterval is how often the classifier re-examines the forest.
	DefaultInterval = time.Second

	// DefaultSevereAfter is how long a review may be overdue before it
	// becomes severe.
	DefaultSevereAfter = 48 * time.Hour
)

// Policy is the lateness policy used to classify notes.
type Policy struct {
	SevereAfter time.Duration
}

// DefaultPolicy returns the two day severe policy.
func DefaultPolicy() Policy {
	return Policy{SevereAfter: DefaultSevereAfter}
}

// Classify computes the status of a note due at next.
func Classify(next, now time.Time, p Policy) core.Status {
	if next.IsZero() {
		return core.StatusOK
	}
	if !now.Before(next.Add(p.SevereAfter)) {
		return core.StatusWarningSevere
	}
	if !now.Before(next) {
		return core.StatusWarning
	}
	return core.StatusOK
}

// ClassifyTree re-classifies every note in pre-order and returns the new
// forest, whether any stored status changed, and the transitions to report.
//
// Only notes whose status changes are copied. A note without a stored
// status is filled in silently when it classifies as ok: it was never
// reported as anything else.
func ClassifyTree(tree []core.Note, now time.Time, p Policy) ([]core.Note, bool, []core.Transition) {
	var transitions []core.Transition
	out, changed := classifyList(tree, now, p, &transitions)
	return out, changed, transitions
}

func classifyList(list []core.Note, now time.Time, p Policy, transitions *[]core.Transition) ([]core.Note, bool) {
	var out []core.Note
	for i, n := range list {
		next := n
		dirty := false

		s := Classify(n.NextReviewDate, now, p)
		if s != n.Status {
			if n.Status != "" || s != core.StatusOK {
				*transitions = append(*transitions, core.Transition{
					Key:   n.Key,
					Title: n.Title,
					From:  n.Status,
					To:    s,
					At:    now,
				})
			}
			next.Status = s
			dirty = true
		}

		if len(n.Children) > 0 {
			if children, ok := classifyList(n.Children, now, p, transitions); ok {
				next.Children = children
				dirty = true
			}
		}

		if dirty {
			if out == nil {
				out = make([]core.Note, len(list))
				copy(out, list)
			}
			out[i] = next
		}
	}
	if out == nil {
		return list, false
	}
	return out, true
}

// Due returns the notes whose status is not ok, in pre-order.
func Due(tree []core.Note) []core.Note {
	var due []core.Note
	var walk func([]core.Note)
	walk = func(list []core.Note) {
		for _, n := range list {
			if n.Status == core.StatusWarning || n.Status == core.StatusWarningSevere {
				due = append(due, n)
			}
			walk(n.Children)
		}
	}
	walk(tree)
	return due
}
