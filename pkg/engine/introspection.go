package engine

import (
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/recall/pkg/notes"
	"github.com/aretw0/recall/pkg/status"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Notes       int        `json:"notes"`
	Curves      int        `json:"curves"`
	Due         int        `json:"due"`
	Revision    uint64     `json:"revision"`
	Saved       uint64     `json:"saved"`
	LastSave    *time.Time `json:"last_save,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	ReadOnly    bool       `json:"read_only"`
	Closed      bool       `json:"closed"`
	Watching    bool       `json:"watching"`
	Subscribers int        `json:"subscribers"`
	Dropped     uint64     `json:"dropped_events"`
	Classifier  any        `json:"classifier"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	s := EngineState{
		Notes:    notes.Count(e.doc.Notes),
		Curves:   len(e.doc.ForgettingCurves),
		Due:      len(status.Due(e.doc.Notes)),
		Revision: e.revision,
		ReadOnly: e.readOnly,
		Closed:   e.closed,
	}
	e.mu.Unlock()

	e.saveMu.Lock()
	s.Saved = e.saved
	s.LastError = e.lastError
	if !e.lastSave.IsZero() {
		last := e.lastSave
		s.LastSave = &last
	}
	e.saveMu.Unlock()

	e.watchMu.Lock()
	s.Watching = e.watchCancel != nil
	e.watchMu.Unlock()

	s.Subscribers, s.Dropped = e.broker.stats()
	s.Classifier = e.classifier.State()
	return s
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "engine"
}

var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
