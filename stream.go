package libcdp

import "context"

// EventStream exposes one subscription as a sequence of a single concrete
// event type. Events that do not assert to T are discarded and the next one
// is pulled right away, so a key carrying mixed concrete types can never
// wedge the stream. Yielded events stay shared with co-subscribers and must
// be treated as read-only.
type EventStream[T Event] struct {
	sub *Subscription
}

func NewEventStream[T Event](sub *Subscription) *EventStream[T] {
	return &EventStream[T]{sub: sub}
}

// Next blocks until an event of type T arrives, the subscription ends, or ctx
// is done. Once the producer side has closed the subscription and the
// remaining matching events are consumed, every further call returns
// ErrStreamClosed.
func (s *EventStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case ev, ok := <-s.sub.Events():
			if !ok {
				return zero, ErrStreamClosed
			}
			if typed, ok := ev.(T); ok {
				return typed, nil
			}
			// different concrete type under this key, keep pulling
		}
	}
}

func (s *EventStream[T]) Method() string {
	return s.sub.Method()
}

// Close unsubscribes the underlying subscription.
func (s *EventStream[T]) Close() {
	s.sub.Close()
}
