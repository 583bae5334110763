package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/recall/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterMemory = "memory"
)

// options holds the internal configuration for a recall engine.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	notifier   core.Notifier
	linker     core.Linker
	clock      func() time.Time

	vaultRoot   string
	vaultName   string
	linkPattern string

	tickInterval time.Duration
	severeAfter  time.Duration
	eventBuffer  int
	history      int

	readOnly   bool
	versioning bool
	autoInit   bool
	mustExist  bool
	watch      bool
}

// Option defines a functional option for configuring recall.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:  AdapterFS,
		autoInit: true,
	}
}

// WithLogger sets the logger shared by the engine and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite"
// or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithRepository injects a custom storage adapter. When set, the adapter
// name and the URI are ignored.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithNotifier sets the sink for status transitions.
func WithNotifier(n core.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithLinker injects a link resolver, replacing the vault resolver.
func WithLinker(l core.Linker) Option {
	return func(o *options) {
		o.linker = l
	}
}

// WithVault enables link resolution against the markdown files under root.
// Name is the vault name used in open URLs (defaults to the root's base name)
// and pattern selects linkable files (defaults to "**/*.md").
func WithVault(root, name, pattern string) Option {
	return func(o *options) {
		o.vaultRoot = root
		o.vaultName = name
		o.linkPattern = pattern
	}
}

// WithClock overrides time.Now for scheduling and classification.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithTickInterval sets how often the status classifier runs.
// Zero means default (1s).
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		o.tickInterval = d
	}
}

// WithSevereAfter sets how late a review must be to be classified as
// severe. Zero means default (48h).
func WithSevereAfter(d time.Duration) Option {
	return func(o *options) {
		o.severeAfter = d
	}
}

// WithEventBuffer sets the size of subscriber channels.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithHistory sets how many revisions the sqlite adapter keeps.
// Zero means default (50).
func WithHistory(keep int) Option {
	return func(o *options) {
		o.history = keep
	}
}

// WithReadOnly opens the document without ever writing it back.
// Mutations return core.ErrReadOnly and initialization creates nothing.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithVersioning commits the data file to git after every save (fs adapter).
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.versioning = enabled
	}
}

// WithAutoInit allows initialization to create missing directories and, with
// versioning, to run git init. Enabled by default.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithMustExist fails initialization when the data file is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWatch makes Start follow external edits of the data file.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}
