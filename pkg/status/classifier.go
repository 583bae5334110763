package status

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle/pkg/core/worker"
)

// TickFunc is invoked on every tick with the tick time.
type TickFunc func(ctx context.Context, now time.Time)

// Classifier owns a single tick worker. Start replaces any running worker,
// so restarts never leave a second timer behind, and Stop is idempotent.
type Classifier struct {
	interval time.Duration
	tick     TickFunc
	logger   *slog.Logger

	mu     sync.Mutex // guards worker and starts
	worker *tickWorker
	starts int

	// Tick stats have their own lock: Stop holds mu while it waits for an
	// in-flight tick to finish.
	statsMu  sync.Mutex
	ticks    uint64
	lastTick time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier creates a stopped classifier that calls tick periodically
// once started.
func NewClassifier(tick TickFunc, opts ...Option) *Classifier {
	c := &Classifier{
		interval: DefaultInterval,
		tick:     tick,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the tick worker, stopping the previous one first.
func (c *Classifier) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.worker != nil {
		if err := c.worker.Stop(ctx); err != nil {
			c.logger.Warn("stopping previous classifier worker", "error", err)
		}
		c.worker = nil
	}

	w := newTickWorker(c.interval, c.onTick, c.logger)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start status classifier: %w", err)
	}
	c.worker = w
	c.starts++
	restartsTotal.Inc()
	c.logger.Debug("status classifier started", "interval", c.interval)
	return nil
}

// Stop cancels the pending tick and waits for the worker to exit. After
// Stop returns no further tick fires.
func (c *Classifier) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.worker == nil {
		return nil
	}
	err := c.worker.Stop(ctx)
	c.worker = nil
	c.logger.Debug("status classifier stopped")
	return err
}

// Running reports whether a tick worker is active.
func (c *Classifier) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worker != nil
}

// RunOnce performs a single tick synchronously.
func (c *Classifier) RunOnce(ctx context.Context, now time.Time) {
	c.onTick(ctx, now)
}

func (c *Classifier) onTick(ctx context.Context, now time.Time) {
	c.tick(ctx, now)
	ticksTotal.Inc()

	c.statsMu.Lock()
	c.ticks++
	c.lastTick = now
	c.statsMu.Unlock()
}

// ClassifierState exposes internal state for observability.
type ClassifierState struct {
	Running  bool       `json:"running"`
	Interval string     `json:"interval"`
	Starts   int        `json:"starts"`
	Ticks    uint64     `json:"ticks"`
	LastTick *time.Time `json:"last_tick,omitempty"`
}

// State implements introspection.Introspectable.
func (c *Classifier) State() any {
	c.mu.Lock()
	s := ClassifierState{
		Running:  c.worker != nil,
		Interval: c.interval.String(),
		Starts:   c.starts,
	}
	c.mu.Unlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	s.Ticks = c.ticks
	if !c.lastTick.IsZero() {
		last := c.lastTick
		s.LastTick = &last
	}
	return s
}

// ComponentType implements introspection.Component.
func (c *Classifier) ComponentType() string {
	return "status-classifier"
}

var _ introspection.Introspectable = (*Classifier)(nil)
var _ introspection.Component = (*Classifier)(nil)

type tickWorker struct {
	*worker.BaseWorker
	interval time.Duration
	fn       TickFunc
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func newTickWorker(interval time.Duration, fn TickFunc, logger *slog.Logger) *tickWorker {
	return &tickWorker{
		BaseWorker: worker.NewBaseWorker("status-classifier"),
		interval:   interval,
		fn:         fn,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

func (w *tickWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("classifier already started (status: %s)", status)
	}

	// The worker outlives the caller's request context; only Stop ends it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *tickWorker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.StopRequested = true
	w.cancel()

	err := w.BaseWorker.Stop(ctx)
	select {
	case <-w.done:
	case <-ctx.Done():
		return fmt.Errorf("wait for classifier to stop: %w", ctx.Err())
	}
	return err
}

func (w *tickWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

func (w *tickWorker) run(ctx context.Context) error {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			// A tick may race with cancellation; cancellation wins.
			if ctx.Err() != nil {
				return nil
			}
			w.safeTick(ctx, now)
		}
	}
}

// safeTick runs one tick. A panicking tick is logged and the worker keeps
// ticking, so Running stays truthful.
func (w *tickWorker) safeTick(ctx context.Context, now time.Time) {
	defer func() {
		if recovered := recover(); recovered != nil {
			tickPanicsTotal.Inc()
			attrs := []any{"error", recovered}
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			w.logger.Error("classifier tick panic", attrs...)
		}
	}()
	w.fn(ctx, now)
}
