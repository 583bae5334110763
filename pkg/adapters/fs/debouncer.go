package fs

import (
	"sync"
	"time"

	"github.com/aretw0/recall/pkg/core"
)

// debouncer coalesces bursts of events for the same key: only the last
// event of a burst is delivered, once the key has been quiet for delay.
// Atomic saves produce a create, a chmod and a rename within microseconds.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// add schedules fn(e) after the quiet period, replacing any pending event
// for the same key.
func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[e.Key]; ok && t.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	d.timers[e.Key] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		delete(d.timers, e.Key)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			fn(e)
		}
	})
}

// stopAndWait rejects new events, cancels pending ones and waits up to
// timeout for deliveries already in progress.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
