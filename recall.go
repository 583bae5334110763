package recall

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/recall/internal/platform"
	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/engine"
	"github.com/aretw0/recall/pkg/notes"
)

// --- Types ---

// Engine is the single writer of a recall document.
type Engine = engine.Engine

// Note, Curve and Document are the domain model.
type (
	Note     = core.Note
	Curve    = core.Curve
	Interval = core.Interval
	Document = core.Document
	Event    = core.Event
)

// Placement tells MoveNote where to put a note relative to the drop target.
type Placement = notes.Placement

const (
	Inside = notes.Inside
	Before = notes.Before
	After  = notes.After
)

// --- Configuration ---

// Option defines a functional option for configuring recall.
type Option = platform.Option

// Adapter names.
const (
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterMemory = platform.AdapterMemory
)

// WithLogger sets the logger for the engine and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter selects the storage adapter by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithNotifier sets the sink for status transitions.
func WithNotifier(n core.Notifier) Option {
	return platform.WithNotifier(n)
}

// WithLinker injects a link resolver.
func WithLinker(l core.Linker) Option {
	return platform.WithLinker(l)
}

// WithVault resolves links against markdown files under root.
func WithVault(root, name, pattern string) Option {
	return platform.WithVault(root, name, pattern)
}

// WithTickInterval sets how often the status classifier runs.
func WithTickInterval(d time.Duration) Option {
	return platform.WithTickInterval(d)
}

// WithSevereAfter sets the lateness from which a review is severe.
func WithSevereAfter(d time.Duration) Option {
	return platform.WithSevereAfter(d)
}

// WithEventBuffer sets the size of subscriber channels.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithHistory sets how many revisions the sqlite adapter keeps.
func WithHistory(keep int) Option {
	return platform.WithHistory(keep)
}

// WithReadOnly opens the document without writing it back.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithVersioning commits the data file to git after every save.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit allows creating missing directories and git repositories.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist fails when the data file is missing.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithWatch makes Start follow external edits of the data file.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// --- Factory ---

// New opens the document at path and returns a loaded, stopped engine.
func New(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	return platform.New(ctx, path, opts...)
}

// Init creates the storage for path without starting an engine.
func Init(ctx context.Context, path string, opts ...Option) (core.Repository, error) {
	return platform.Open(ctx, path, opts...)
}

// FindRoot looks upwards for a directory holding .recall or recall.yaml.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
