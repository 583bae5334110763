package engine

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/recall/pkg/core"
)

// startWatch follows external modifications of the stored document and
// reloads the engine on each of them. Repositories that cannot watch are
// skipped silently.
func (e *Engine) startWatch(ctx context.Context) error {
	w, ok := e.repo.(core.Watchable)
	if !ok {
		e.logger.Debug("repository does not support watching")
		return nil
	}

	if err := e.stopWatch(ctx); err != nil {
		return err
	}

	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	events, err := w.Watch(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch repository: %w", err)
	}

	done := make(chan struct{})
	e.watchCancel = cancel
	e.watchDone = done

	lifecycle.Go(runCtx, func(ctx context.Context) error {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if ev.Type != core.EventModify {
					continue
				}
				e.logger.Info("document modified externally", "event", ev.String())
				if err := e.Reload(ctx); err != nil {
					e.logger.Error("reload failed", "error", err)
				}
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		e.logger.Error("watch loop panic", "error", err)
	}))
	return nil
}

func (e *Engine) stopWatch(ctx context.Context) error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watchCancel == nil {
		return nil
	}
	e.watchCancel()
	e.watchCancel = nil

	done := e.watchDone
	e.watchDone = nil
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for watch loop: %w", ctx.Err())
	}
}
