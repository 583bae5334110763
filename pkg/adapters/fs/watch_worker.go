package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/recall/pkg/core"
)

const (
	watchDebounce    = 50 * time.Millisecond
	watchStopTimeout = 5 * time.Second
)

var errWatcherClosed = errors.New("fsnotify channel closed unexpectedly")

// Watch reports modifications of the data file made by other processes.
// Writes made through this repository are filtered out by content hash.
// The watcher is supervised and restarted if fsnotify fails; the returned
// channel is closed once ctx is done and the watcher has stopped.
func (r *Repository) Watch(ctx context.Context) (<-chan core.Event, error) {
	out := make(chan core.Event)

	sup := supervisor.New("recall-watch", supervisor.StrategyOneForOne, supervisor.Spec{
		Name:          "data-file-watcher",
		Type:          string(worker.TypeGoroutine),
		RestartPolicy: supervisor.RestartOnFailure,
		Factory: func() (worker.Worker, error) {
			return newFileWatcher(r, out), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
	})
	if err := sup.Start(ctx); err != nil {
		return nil, fmt.Errorf("start supervisor: %w", err)
	}

	go func() {
		defer close(out)
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), watchStopTimeout)
		defer cancel()
		if err := sup.Stop(stopCtx); err != nil {
			r.config.Logger.Warn("stop data file watcher", "path", r.Path, "error", err)
		}
	}()
	return out, nil
}

// fileWatcher is a supervised worker following the data file's directory.
type fileWatcher struct {
	*worker.BaseWorker

	repo    *Repository
	out     chan<- core.Event
	notify  *fsnotify.Watcher
	pending *debouncer
	cancel  context.CancelFunc
}

func newFileWatcher(repo *Repository, out chan<- core.Event) *fileWatcher {
	return &fileWatcher{
		BaseWorker: worker.NewBaseWorker("data-file-watcher"),
		repo:       repo,
		out:        out,
	}
}

func (w *fileWatcher) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s := w.State().Status; s != worker.StatusCreated && s != worker.StatusPending {
		return fmt.Errorf("data file watcher cannot start from status %s", s)
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Atomic saves replace the file, so the directory is watched rather
	// than the file itself.
	if err := notify.Add(w.repo.dir()); err != nil {
		_ = notify.Close()
		return fmt.Errorf("watch %s: %w", w.repo.dir(), err)
	}

	w.notify = notify
	w.pending = newDebouncer(watchDebounce)
	w.repo.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *fileWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *fileWatcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"file":              w.repo.Path,
		}
	})
}

func (w *fileWatcher) run(ctx context.Context) (err error) {
	logger := w.repo.config.Logger
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("data file watcher panic: %v", p)
			attrs := []any{"error", err}
			if logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			logger.Error("data file watcher panic", attrs...)
		}
	}()
	defer w.repo.setWatcherActive(false)
	defer w.notify.Close()

	err = w.loop(ctx)

	// Pending deliveries finish before the supervisor may close the channel.
	w.pending.stopAndWait(watchStopTimeout)
	return err
}

func (w *fileWatcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.notify.Events:
			if !ok {
				return w.closed(ctx)
			}
			w.handle(ctx, event)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return w.closed(ctx)
			}
			w.repo.handleError(fmt.Errorf("fsnotify: %w", err))
		}
	}
}

// closed reports a closed fsnotify channel as a failure unless the worker
// is stopping, so the supervisor restarts it.
func (w *fileWatcher) closed(ctx context.Context) error {
	if w.StopRequested || ctx.Err() != nil {
		return nil
	}
	return errWatcherClosed
}

// handle filters an fsnotify event down to modifications of the data file.
func (w *fileWatcher) handle(ctx context.Context, event fsnotify.Event) {
	if isTempFile(event.Name) || filepath.Clean(event.Name) != w.repo.Path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.repo.config.Logger.Debug("data file event", "name", event.Name, "op", event.Op.String())

	modified := core.Event{
		Type:      core.EventModify,
		Key:       filepath.Base(w.repo.Path),
		Timestamp: time.Now().Unix(),
	}
	w.pending.add(modified, func(e core.Event) {
		// The hash is checked after the quiet period, when the file is stable.
		if w.repo.isOwnWrite() {
			return
		}
		defer func() {
			// The channel may be closed while the worker is stopping.
			_ = recover()
		}()
		select {
		case w.out <- e:
		case <-ctx.Done():
		}
	})
}
