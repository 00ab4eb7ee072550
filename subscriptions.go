package libcdp

import "encoding/json"

// Subscriptions tracks every active event listener of a connection, keyed by
// method. It is not safe for concurrent use: exactly one goroutine, the
// connection's handler loop, owns it and performs all dispatching and
// draining.
type Subscriptions struct {
	subs   map[string][]*eventSubscription
	logger logger
}

func NewSubscriptions(logger logger) *Subscriptions {
	return &Subscriptions{
		subs:   make(map[string][]*eventSubscription),
		logger: logger.WithField("component", "subscriptions"),
	}
}

// AddListener appends a new subscription under its method key. No dedup, no
// cap: bounding the number of listeners is the caller's business.
func (s *Subscriptions) AddListener(req SubscriptionRequest) {
	s.subs[req.Method] = append(s.subs[req.Method], &eventSubscription{
		out:  req.out,
		kind: req.Kind,
		done: req.done,
	})
}

// DispatchNative hands one decoded event to every subscriber of its method
// key, regardless of kind. All of them receive the same instance. Never
// blocks: events land in per-subscription backlogs until the next Drain.
func (s *Subscriptions) DispatchNative(method string, ev Event) {
	for _, sub := range s.subs[method] {
		sub.enqueue(ev)
	}
}

// DispatchCustom decodes the raw payload once, using the decoder of the first
// custom subscriber of the key, and hands the shared result to every custom
// subscriber. Native subscribers under the same key are skipped. If the
// decoder fails, nobody receives anything and the error is returned.
//
// Decoders registered under the same key are assumed equivalent.
func (s *Subscriptions) DispatchCustom(method string, params json.RawMessage) error {
	var ev Event
	for _, sub := range s.subs[method] {
		if !sub.kind.IsCustom() {
			continue
		}
		if ev == nil {
			decoded, err := sub.kind.decode(params)
			if err != nil {
				return WrapErrDecodeEvent(err, method)
			}
			ev = decoded
		}
		sub.enqueue(ev)
	}
	return nil
}

// Drain runs every subscription's flush state machine and garbage-collects
// the ones whose consumer has closed its handle, closing their delivery
// channels. Idle, mid-flush and blocked subscriptions are retained. The
// returned count is the number of events still backlogged; the owner should
// call Drain again once consumers have made room, this layer performs no
// background work of its own.
func (s *Subscriptions) Drain() (queued int) {
	for method, subs := range s.subs {
		kept := subs[:0]
		for _, sub := range subs {
			if sub.flush() == flushDisconnected {
				close(sub.out)
				s.logger.Debugf("dropping %q listener, consumer gone", method)
				continue
			}
			queued += len(sub.backlog)
			kept = append(kept, sub)
		}
		for i := len(kept); i < len(subs); i++ {
			subs[i] = nil
		}
		// a key with an empty list is harmless garbage, not worth pruning
		s.subs[method] = kept
	}
	return queued
}

// CloseAll ends every subscription by closing its delivery channel. Called
// once, when the owning connection shuts down.
func (s *Subscriptions) CloseAll() {
	for _, subs := range s.subs {
		for _, sub := range subs {
			close(sub.out)
		}
	}
	s.subs = make(map[string][]*eventSubscription)
}
