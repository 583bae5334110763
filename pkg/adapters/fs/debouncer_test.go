package fs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/recall/pkg/core"
)

func TestDebouncer(t *testing.T) {
	t.Run("Coalesces bursts per key", func(t *testing.T) {
		d := newDebouncer(30 * time.Millisecond)
		var a, b atomic.Int32
		var lastTitle atomic.Value

		for i, title := range []string{"one", "two", "three"} {
			d.add(core.Event{Key: "a", Title: title, Timestamp: int64(i)}, func(e core.Event) {
				a.Add(1)
				lastTitle.Store(e.Title)
			})
		}
		d.add(core.Event{Key: "b"}, func(core.Event) { b.Add(1) })

		assert.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "three", lastTitle.Load())
		assert.True(t, d.stopAndWait(time.Second))
	})

	t.Run("Stop cancels pending events", func(t *testing.T) {
		d := newDebouncer(time.Hour)
		var fired atomic.Bool
		d.add(core.Event{Key: "a"}, func(core.Event) { fired.Store(true) })

		assert.True(t, d.stopAndWait(time.Second))
		d.add(core.Event{Key: "a"}, func(core.Event) { fired.Store(true) })
		assert.False(t, fired.Load())
	})
}
