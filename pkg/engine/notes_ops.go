package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/curves"
	"github.com/aretw0/recall/pkg/notes"
	"github.com/aretw0/recall/pkg/review"
)

// Operation names, used for events, metrics and commit messages.
const (
	OpAddNote           = "add-note"
	OpRename            = "rename"
	OpSetLink           = "set-link"
	OpSetNextReview     = "set-next-review"
	OpClearNextReview   = "clear-next-review"
	OpDeleteNote        = "delete-note"
	OpMoveNote          = "move-note"
	OpMarkDone          = "mark-done"
	OpMarkSkipped       = "mark-skipped"
	OpBindCurve         = "bind-curve"
	OpSetActiveInterval = "set-active-interval"
	OpAddCurve          = "add-curve"
	OpRemoveCurve       = "remove-curve"
	OpRenameCurve       = "rename-curve"
	OpAddInterval       = "add-interval"
	OpRemoveInterval    = "remove-interval"
	OpSetIntervalValue  = "set-interval-value"
	OpSetIntervalFormat = "set-interval-format"
	OpReorderIntervals  = "reorder-intervals"
	OpStatus            = "status"
)

// AddNote creates a root note with a fresh key. When curveID is not empty
// the note is bound to that curve, starts at the first interval and is due
// immediately.
func (e *Engine) AddNote(ctx context.Context, title, curveID string) (core.Note, error) {
	note := core.Note{
		Key:    core.NewKey(),
		Title:  title,
		Status: core.StatusOK,
	}
	if curveID != "" {
		note.ForgettingCurveID = curveID
		note.LastActiveInterval = review.FirstInterval
		note.NextReviewDate = e.clock()
	}

	_, err := e.apply(ctx, OpAddNote, note.Key, func(doc core.Document) (core.Document, bool, error) {
		if curveID != "" {
			if _, ok := curves.Find(doc.ForgettingCurves, curveID); !ok {
				return doc, false, fmt.Errorf("%w: %s", core.ErrCurveNotFound, curveID)
			}
		}
		tree, err := notes.AddRoot(doc.Notes, note)
		if err != nil {
			return doc, false, err
		}
		doc.Notes = tree
		return doc, true, nil
	})
	var perr *core.PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return core.Note{}, err
	}
	return note, err
}

// update patches the note with key. A missing key is a no-op.
func (e *Engine) update(ctx context.Context, op, key string, patch core.NotePatch) (bool, error) {
	return e.apply(ctx, op, key, func(doc core.Document) (core.Document, bool, error) {
		tree, changed := notes.UpdateByKey(doc.Notes, key, patch)
		doc.Notes = tree
		return doc, changed, nil
	})
}

// Rename sets the title of a note.
func (e *Engine) Rename(ctx context.Context, key, title string) (bool, error) {
	return e.update(ctx, OpRename, key, core.NotePatch{Title: &title})
}

// SetLink sets the linked document of a note. An empty link clears it.
func (e *Engine) SetLink(ctx context.Context, key, link string) (bool, error) {
	return e.update(ctx, OpSetLink, key, core.NotePatch{LinkNote: &link})
}

// SetNextReview schedules the next review of a note directly.
func (e *Engine) SetNextReview(ctx context.Context, key string, at time.Time) (bool, error) {
	return e.update(ctx, OpSetNextReview, key, core.NotePatch{NextReviewDate: &at})
}

// ClearNextReview marks a note as never scheduled.
func (e *Engine) ClearNextReview(ctx context.Context, key string) (bool, error) {
	var zero time.Time
	return e.update(ctx, OpClearNextReview, key, core.NotePatch{NextReviewDate: &zero})
}

// DeleteNote removes a note and its subtree.
func (e *Engine) DeleteNote(ctx context.Context, key string) (bool, error) {
	return e.apply(ctx, OpDeleteNote, key, func(doc core.Document) (core.Document, bool, error) {
		tree, changed := notes.DeleteByKey(doc.Notes, key)
		doc.Notes = tree
		return doc, changed, nil
	})
}

// MoveNote moves the subtree rooted at dragKey relative to dropKey. Missing
// keys are a no-op; dropping a note into its own subtree is rejected with
// core.ErrMoveIntoDescendant.
func (e *Engine) MoveNote(ctx context.Context, dragKey, dropKey string, at notes.Placement) (bool, error) {
	return e.apply(ctx, OpMoveNote, dragKey, func(doc core.Document) (core.Document, bool, error) {
		if dragKey != dropKey && notes.IsDescendant(doc.Notes, dragKey, dropKey) {
			return doc, false, fmt.Errorf("move %s %s %s: %w", dragKey, at, dropKey, core.ErrMoveIntoDescendant)
		}
		tree, changed := notes.MoveSubtree(doc.Notes, dragKey, dropKey, at)
		doc.Notes = tree
		return doc, changed, nil
	})
}

// MarkDone logs a review of the note and reschedules it along its curve.
// A scheduling failure leaves the note untouched and returns a
// *core.ScheduleError.
func (e *Engine) MarkDone(ctx context.Context, key string) (bool, error) {
	now := e.clock()
	changed, err := e.apply(ctx, OpMarkDone, key, func(doc core.Document) (core.Document, bool, error) {
		return editNote(doc, key, func(n core.Note) (core.Note, bool, error) {
			curve, found := curves.Find(doc.ForgettingCurves, n.ForgettingCurveID)
			next, err := review.MarkDone(n, curve, found, now)
			if err != nil {
				return n, false, err
			}
			return next, true, nil
		})
	})

	var serr *core.ScheduleError
	if errors.As(err, &serr) {
		reason := "interval_out_of_range"
		if errors.Is(err, core.ErrCurveNotFound) {
			reason = "curve_not_found"
		}
		scheduleFailuresTotal.WithLabelValues(reason).Inc()
		e.logger.Warn("cannot reschedule note", "key", key, "curve", serr.CurveID, "cursor", serr.Cursor, "error", serr.Err)
	}
	return changed, err
}

// MarkSkipped logs a skipped review of the note.
func (e *Engine) MarkSkipped(ctx context.Context, key string) (bool, error) {
	now := e.clock()
	return e.apply(ctx, OpMarkSkipped, key, func(doc core.Document) (core.Document, bool, error) {
		return editNote(doc, key, func(n core.Note) (core.Note, bool, error) {
			return review.MarkSkipped(n, now), true, nil
		})
	})
}

// BindCurve binds the note to a curve and restarts its progression.
func (e *Engine) BindCurve(ctx context.Context, key, curveID string) (bool, error) {
	return e.apply(ctx, OpBindCurve, key, func(doc core.Document) (core.Document, bool, error) {
		if _, ok := curves.Find(doc.ForgettingCurves, curveID); !ok {
			return doc, false, fmt.Errorf("%w: %s", core.ErrCurveNotFound, curveID)
		}
		return editNote(doc, key, func(n core.Note) (core.Note, bool, error) {
			next, changed := review.BindCurve(n, curveID)
			return next, changed, nil
		})
	})
}

// SetActiveInterval overrides the interval cursor of the note.
func (e *Engine) SetActiveInterval(ctx context.Context, key string, index int) (bool, error) {
	return e.apply(ctx, OpSetActiveInterval, key, func(doc core.Document) (core.Document, bool, error) {
		return editNote(doc, key, func(n core.Note) (core.Note, bool, error) {
			next, err := review.SetActiveInterval(n, index)
			if err != nil {
				return n, false, err
			}
			return next, next.LastActiveInterval != n.LastActiveInterval, nil
		})
	})
}

// editNote replaces the note with key by the result of fn. The replacement
// is written back as a patch of the scheduling fields, so structure is
// never touched.
func editNote(doc core.Document, key string, fn func(core.Note) (core.Note, bool, error)) (core.Document, bool, error) {
	n, ok := notes.Find(doc.Notes, key)
	if !ok {
		return doc, false, nil
	}
	next, changed, err := fn(n)
	if err != nil || !changed {
		return doc, false, err
	}
	tree, changed := notes.UpdateByKey(doc.Notes, key, core.NotePatch{
		NextReviewDate:     &next.NextReviewDate,
		ReviewDates:        &next.ReviewDates,
		SkippedReviewDates: &next.SkippedReviewDates,
		ForgettingCurveID:  &next.ForgettingCurveID,
		LastActiveInterval: &next.LastActiveInterval,
	})
	doc.Notes = tree
	return doc, changed, nil
}
