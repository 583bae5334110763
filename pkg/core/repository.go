package core

import "context"

// Repository defines the contract for loading and saving the document.
// Adhering to this interface allows the engine to be independent of the
// underlying storage mechanism (Filesystem, SQLite, memory).
type Repository interface {
	// Load returns the persisted document. A missing document is an empty one.
	Load(ctx context.Context) (Document, error)

	// Save persists the whole document.
	Save(ctx context.Context, doc Document) error

	// Initialize ensures the underlying storage is ready (e.g., create directories, schema migration).
	Initialize(ctx context.Context) error
}

// Watchable defines an interface for repositories that can report external
// modifications of the stored document.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Notifier receives status transitions. Rendering is left to the host.
type Notifier interface {
	Notify(ctx context.Context, t Transition)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, t Transition)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, t Transition) { f(ctx, t) }

// Linker resolves and opens the external documents notes link to.
type Linker interface {
	// Search lists linkable identifiers matching term.
	Search(ctx context.Context, term string) ([]string, error)

	// OpenLink opens the identifier. The engine does not observe the outcome.
	OpenLink(ctx context.Context, identifier string) error
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason down to the
// repository on Save (used as the commit message by versioned adapters).
const ChangeReasonKey contextKey = "change_reason"

// ChangeReason returns the change reason carried by ctx, if any.
func ChangeReason(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ChangeReasonKey).(string)
	return v, ok && v != ""
}
