package engine

import (
	"sync"

	"github.com/aretw0/recall/pkg/core"
)

const defaultEventBuffer = 100

// broker fans engine events out to subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type broker struct {
	mu      sync.Mutex
	buffer  int
	next    int
	subs    map[int]chan core.Event
	closed  bool
	dropped uint64
}

func newBroker(buffer int) *broker {
	return &broker{
		buffer: buffer,
		subs:   make(map[int]chan core.Event),
	}
}

func (b *broker) subscribe() (<-chan core.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan core.Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

func (b *broker) publish(e core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped++
			eventsDroppedTotal.Inc()
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broker) stats() (subscribers int, dropped uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs), b.dropped
}
