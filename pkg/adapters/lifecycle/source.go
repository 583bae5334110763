// Package lifecycle exposes engine events as a lifecycle.Source so hosts can
// route them alongside signals and other process events.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/recall/pkg/core"
)

// Subscriber is the part of the engine the bridge depends on.
type Subscriber interface {
	Subscribe() (<-chan core.Event, func())
}

type recallSource struct {
	sub   Subscriber
	types []core.EventType
	out   chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits engine events. When types
// is non-empty only events of those types are forwarded. The subscription is
// taken on Start and released when its context ends, which also closes
// Events().
func NewSource(sub Subscriber, types ...core.EventType) lifecycle.Source {
	return &recallSource{
		sub:   sub,
		types: types,
		out:   make(chan lifecycle.Event),
	}
}

func (s *recallSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *recallSource) Start(ctx context.Context) error {
	events, unsubscribe := s.sub.Subscribe()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				if len(s.types) > 0 && !slices.Contains(s.types, e.Type) {
					continue
				}
				// core.Event implements lifecycle.Event through String().
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
