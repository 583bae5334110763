package engine

import (
	"context"
	"time"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/status"
)

// Tick re-classifies every note as of now, commits the new statuses and
// reports each transition to the notifier. Notes whose status did not
// change are not reported.
//
// Ticks on a read-only engine classify in memory only.
func (e *Engine) Tick(ctx context.Context, now time.Time) ([]core.Transition, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	tree, changed, transitions := status.ClassifyTree(e.doc.Notes, now, e.policy)
	if !changed {
		e.mu.Unlock()
		return nil, nil
	}
	e.doc.Notes = tree
	e.revision++
	rev := e.revision
	doc := e.doc
	readOnly := e.readOnly
	e.mu.Unlock()

	commitsTotal.WithLabelValues(OpStatus).Inc()

	var err error
	if !readOnly {
		if _, ok := core.ChangeReason(ctx); !ok {
			ctx = context.WithValue(ctx, core.ChangeReasonKey, changeReason(OpStatus, ""))
		}
		err = e.persist(ctx, OpStatus, rev, doc)
	}

	for _, t := range transitions {
		transitionsTotal.WithLabelValues(string(t.To)).Inc()
		e.logger.Debug("status changed", "key", t.Key, "from", t.From, "to", t.To)
		e.broker.publish(core.Event{
			Type:      core.EventStatus,
			Key:       t.Key,
			Title:     t.Title,
			Status:    t.To,
			Timestamp: t.At.Unix(),
		})
		if e.notifier != nil {
			e.notifier.Notify(ctx, t)
		}
	}
	return transitions, err
}

// Due returns the notes currently classified as warning or severe.
func (e *Engine) Due() []core.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	due := status.Due(e.doc.Notes)
	for i := range due {
		due[i] = due[i].Clone()
	}
	return due
}
