// Package engine owns the live document and serializes every change to it.
//
// User edits and status ticks are both expressed as functions from the
// current snapshot to the next one. They run one at a time under the engine
// lock, so a tick never observes a half-applied edit and vice versa. After
// a change is committed in memory the document is saved through the
// repository; a failed save is reported to the caller but the in-memory
// state keeps the change.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/recall/pkg/core"
	"github.com/aretw0/recall/pkg/notes"
	"github.com/aretw0/recall/pkg/status"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("engine is closed")

// ErrNoLinker is returned by link operations when no link resolver is configured.
var ErrNoLinker = errors.New("no link resolver configured")

// Engine is the single writer of a recall document.
type Engine struct {
	repo     core.Repository
	notifier core.Notifier
	linker   core.Linker
	logger   *slog.Logger
	clock    func() time.Time
	policy   status.Policy
	readOnly bool
	watch    bool
	interval time.Duration

	classifier *status.Classifier
	broker     *broker

	mu       sync.Mutex
	doc      core.Document
	revision uint64
	closed   bool

	// saveMu orders saves; saved is the newest revision written.
	saveMu    sync.Mutex
	saved     uint64
	lastSave  time.Time
	lastError string

	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier sets the sink for status transitions.
func WithNotifier(n core.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithLinker sets the link resolver.
func WithLinker(l core.Linker) Option {
	return func(e *Engine) {
		e.linker = l
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithPolicy sets the lateness policy of the status classifier.
func WithPolicy(p status.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithTickInterval sets how often the status classifier runs once started.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.interval = d
	}
}

// WithReadOnly rejects every mutation with core.ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = readOnly
	}
}

// WithWatch makes Start follow external modifications of the stored
// document when the repository supports watching.
func WithWatch(watch bool) Option {
	return func(e *Engine) {
		e.watch = watch
	}
}

// WithEventBuffer sets the buffer size of subscriber channels.
func WithEventBuffer(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.broker.buffer = size
		}
	}
}

// New loads the document from repo and returns a stopped engine.
func New(ctx context.Context, repo core.Repository, opts ...Option) (*Engine, error) {
	if repo == nil {
		return nil, errors.New("engine: repository is required")
	}

	e := &Engine{
		repo:     repo,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:    time.Now,
		policy:   status.DefaultPolicy(),
		interval: status.DefaultInterval,
		broker:   newBroker(defaultEventBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}

	doc, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	e.doc = doc

	e.classifier = status.NewClassifier(func(ctx context.Context, _ time.Time) {
		if _, err := e.Tick(ctx, e.clock()); err != nil {
			e.logger.Error("status tick failed", "error", err)
		}
	}, status.WithInterval(e.interval), status.WithLogger(e.logger))

	e.logger.Debug("engine ready", "notes", notes.Count(doc.Notes), "curves", len(doc.ForgettingCurves))
	return e, nil
}

func (e *Engine) load(ctx context.Context) (core.Document, error) {
	doc, err := e.repo.Load(ctx)
	if err != nil {
		return core.Document{}, fmt.Errorf("load document: %w", err)
	}
	if err := notes.Validate(doc.Notes); err != nil {
		return core.Document{}, fmt.Errorf("load document: %w", err)
	}
	return doc, nil
}

// mutation computes the next document from the current one.
type mutation func(doc core.Document) (core.Document, bool, error)

// apply runs fn against the current snapshot under the engine lock,
// commits the result, publishes a commit event and saves the document.
// It reports whether anything changed.
func (e *Engine) apply(ctx context.Context, op, key string, fn mutation) (bool, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false, ErrClosed
	}
	if e.readOnly {
		e.mu.Unlock()
		return false, fmt.Errorf("%s: %w", op, core.ErrReadOnly)
	}

	next, changed, err := fn(e.doc)
	if err != nil || !changed {
		e.mu.Unlock()
		return false, err
	}
	e.doc = next
	e.revision++
	rev := e.revision
	e.mu.Unlock()

	commitsTotal.WithLabelValues(op).Inc()
	e.logger.Debug("committed", "op", op, "key", key, "revision", rev)
	e.broker.publish(core.Event{Type: core.EventCommit, Op: op, Key: key, Timestamp: e.clock().Unix()})

	if _, ok := core.ChangeReason(ctx); !ok {
		ctx = context.WithValue(ctx, core.ChangeReasonKey, changeReason(op, key))
	}
	return true, e.persist(ctx, op, rev, next)
}

// persist saves doc unless a newer revision has already been written.
func (e *Engine) persist(ctx context.Context, op string, rev uint64, doc core.Document) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if rev <= e.saved {
		return nil
	}
	if err := e.repo.Save(ctx, doc); err != nil {
		saveFailuresTotal.Inc()
		e.lastError = err.Error()
		e.logger.Error("save failed", "op", op, "revision", rev, "error", err)
		return &core.PersistenceError{Op: op, Err: err}
	}
	e.saved = rev
	e.lastSave = e.clock()
	e.lastError = ""
	return nil
}

func changeReason(op, key string) string {
	if key == "" {
		return op
	}
	return op + " " + key
}

// Snapshot returns a deep copy of the current document.
func (e *Engine) Snapshot() core.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Find returns a copy of the note with key.
func (e *Engine) Find(key string) (core.Note, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := notes.Find(e.doc.Notes, key)
	if !ok {
		return core.Note{}, false
	}
	return n.Clone(), true
}

// Reload replaces the in-memory document with the stored one. It is used
// when the document was modified outside the engine.
func (e *Engine) Reload(ctx context.Context) error {
	doc, err := e.load(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.doc = doc
	e.revision++
	rev := e.revision
	e.mu.Unlock()

	// The stored document is by definition persisted.
	e.saveMu.Lock()
	e.saved = max(e.saved, rev)
	e.saveMu.Unlock()

	e.logger.Info("document reloaded", "notes", notes.Count(doc.Notes))
	e.broker.publish(core.Event{Type: core.EventReload, Timestamp: e.clock().Unix()})
	return nil
}

// Subscribe returns a channel of engine events and a function that
// cancels the subscription. Slow subscribers miss events rather than
// blocking the engine.
func (e *Engine) Subscribe() (<-chan core.Event, func()) {
	return e.broker.subscribe()
}

// Start starts the status classifier and, when enabled, the watch loop.
// Calling Start again restarts them.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := e.classifier.Start(ctx); err != nil {
		return err
	}
	if e.watch {
		if err := e.startWatch(ctx); err != nil {
			_ = e.classifier.Stop(ctx)
			return err
		}
	}
	return nil
}

// Stop stops the classifier and the watch loop and waits for both to exit.
// It is safe to call more than once.
func (e *Engine) Stop(ctx context.Context) error {
	err := e.classifier.Stop(ctx)
	if werr := e.stopWatch(ctx); werr != nil && err == nil {
		err = werr
	}
	return err
}

// Close stops the engine, ends all subscriptions and closes the repository
// when it holds resources (io.Closer). Further operations return ErrClosed.
func (e *Engine) Close(ctx context.Context) error {
	err := e.Stop(ctx)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return err
	}
	e.closed = true
	e.mu.Unlock()

	e.broker.close()
	if c, ok := e.repo.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
