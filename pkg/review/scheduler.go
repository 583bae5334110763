// Package review implements the interval state machine that reschedules a
// note when it is reviewed or skipped.
//
// The functions are pure: they receive a note by value and return the
// updated note. On failure the original note is returned unchanged.
package review

import (
	"slices"
	"time"

	"github.com/aretw0/recall/pkg/core"
)

// FirstInterval is the cursor a note starts from when bound to a curve.
const FirstInterval = 1

// MarkDone logs a review and advances the note along its curve.
//
// found reports whether the note's curve exists in the catalog; callers
// pass the result of a catalog lookup. A note bound to no curve always
// fails. If the curve or the interval under the cursor cannot be resolved,
// the note is returned untouched together with a *core.ScheduleError.
func MarkDone(note core.Note, curve core.Curve, found bool, now time.Time) (core.Note, error) {
	if !found || note.ForgettingCurveID == "" {
		return note, &core.ScheduleError{Key: note.Key, CurveID: note.ForgettingCurveID, Cursor: note.LastActiveInterval, Err: core.ErrCurveNotFound}
	}
	iv, ok := curve.IntervalAt(note.LastActiveInterval)
	if !ok {
		return note, &core.ScheduleError{Key: note.Key, CurveID: curve.ID, Cursor: note.LastActiveInterval, Err: core.ErrIntervalOutOfRange}
	}

	prior := note.NextReviewDate
	if prior.IsZero() {
		prior = now
	}

	out := note
	out.ReviewDates = append(slices.Clone(note.ReviewDates), prior)
	out.NextReviewDate = now.Add(iv.Duration())
	out.LastActiveInterval = min(note.LastActiveInterval+1, len(curve.Intervals))
	return out, nil
}

// MarkSkipped logs a skipped review. The schedule is not touched.
func MarkSkipped(note core.Note, now time.Time) core.Note {
	note.SkippedReviewDates = append(slices.Clone(note.SkippedReviewDates), now)
	return note
}

// BindCurve attaches the note to curveID and restarts the progression at
// the first interval. Binding to the current curve is a no-op. The review
// logs are kept.
func BindCurve(note core.Note, curveID string) (core.Note, bool) {
	if note.ForgettingCurveID == curveID {
		return note, false
	}
	note.ForgettingCurveID = curveID
	note.LastActiveInterval = FirstInterval
	return note, true
}

// SetActiveInterval overrides the interval cursor. The cursor is not
// checked against the curve; an out of range cursor surfaces on the next
// MarkDone.
func SetActiveInterval(note core.Note, index int) (core.Note, error) {
	if index < 1 {
		return note, core.ErrInvalidInterval
	}
	note.LastActiveInterval = index
	return note, nil
}

// NextInterval returns the interval the next MarkDone would apply.
func NextInterval(note core.Note, curve core.Curve) (core.Interval, bool) {
	return curve.IntervalAt(note.LastActiveInterval)
}
