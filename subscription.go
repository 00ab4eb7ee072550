package libcdp

import "sync"

// DefaultEventBufferSize is the capacity of a subscription's delivery
// channel. A consumer that falls further behind grows the subscription's
// backlog instead of blocking the dispatcher.
const DefaultEventBufferSize = 16

// flushState is the outcome of one flush pass over a subscription.
type flushState uint8

const (
	// flushIdle: backlog empty, everything handed to the delivery channel.
	flushIdle flushState = iota
	// flushBlocked: delivery channel full, backlog remains for a later pass.
	flushBlocked
	// flushDisconnected: the consumer closed its handle.
	flushDisconnected
)

// eventSubscription is the registry-side record of one listener: the sender
// half of the delivery channel plus the backlog of events the channel has not
// accepted yet, oldest first.
type eventSubscription struct {
	out     chan Event
	backlog []Event
	kind    EventKind
	done    <-chan struct{}
}

func (s *eventSubscription) enqueue(ev Event) {
	s.backlog = append(s.backlog, ev)
}

func (s *eventSubscription) disconnected() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// flush moves backlog into the delivery channel for as long as the channel
// accepts, preserving arrival order. It never blocks: a full channel reports
// flushBlocked and the remainder stays queued until the next drain cycle.
func (s *eventSubscription) flush() flushState {
	for {
		if s.disconnected() {
			return flushDisconnected
		}
		if len(s.backlog) == 0 {
			return flushIdle
		}
		select {
		case s.out <- s.backlog[0]:
			s.backlog[0] = nil
			s.backlog = s.backlog[1:]
		default:
			return flushBlocked
		}
	}
}

type (
	// SubscriptionRequest registers a new listener with the registry. It is
	// produced together with its consumer handle by newSubscription and
	// carried to the handler goroutine, which owns the registry.
	SubscriptionRequest struct {
		Method string
		Kind   EventKind

		out  chan Event
		done chan struct{}
	}

	// Subscription is the consumer side of a registration. Events arrive on
	// Events in dispatch order; Close unsubscribes. The registry notices a
	// closed handle lazily, on its next drain cycle.
	Subscription struct {
		method    string
		events    <-chan Event
		done      chan struct{}
		closeOnce sync.Once
	}
)

func newSubscription(method string, kind EventKind, bufSize int) (*Subscription, SubscriptionRequest) {
	if bufSize <= 0 {
		bufSize = DefaultEventBufferSize
	}
	out := make(chan Event, bufSize)
	done := make(chan struct{})

	sub := &Subscription{
		method: method,
		events: out,
		done:   done,
	}
	req := SubscriptionRequest{
		Method: method,
		Kind:   kind,
		out:    out,
		done:   done,
	}
	return sub, req
}

// Events returns the delivery channel. It is closed once the subscription is
// dropped from the registry or the connection shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Method() string {
	return s.method
}

// Close unsubscribes. Events already delivered to the channel can still be
// read; anything queued behind them is discarded. Safe to call repeatedly.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
