package libcdp

import (
	"encoding/json"
	"sync"
)

type (
	// Event is one server-pushed notification. Implementations are pointer
	// types; a single decoded instance is shared by every subscriber it is
	// delivered to and must be treated as read-only.
	Event interface {
		// Method returns the method key naming the event class.
		Method() string
	}

	// EventDecoder turns the raw params of an inbound frame into a typed
	// event.
	EventDecoder func(params json.RawMessage) (Event, error)

	// EventKind tells the registry whether a subscriber wants the native,
	// schema-known events of its method key, or application-defined ones
	// produced by its own decoder.
	EventKind struct {
		decode EventDecoder
	}
)

func NativeEventKind() EventKind { return EventKind{} }

func CustomEventKind(decode EventDecoder) EventKind {
	return EventKind{decode: decode}
}

func (k EventKind) IsCustom() bool { return k.decode != nil }

// NewEventDecoder builds an EventDecoder for a concrete event type.
//
//	decode := NewEventDecoder[MyEvent]()
func NewEventDecoder[T any, PT interface {
	*T
	Event
}]() EventDecoder {
	return func(params json.RawMessage) (Event, error) {
		ev := PT(new(T))
		if err := jsonCodec.Unmarshal(params, ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}

var (
	nativeEventsMu sync.RWMutex
	nativeEvents   = make(map[string]EventDecoder)
)

// RegisterNativeEvent declares a method key as part of the known protocol
// schema. Generated protocol packages call this from init; inbound frames
// whose method has a registered decoder are decoded once and fanned out to
// every subscriber of the key.
func RegisterNativeEvent(method string, decode EventDecoder) {
	nativeEventsMu.Lock()
	defer nativeEventsMu.Unlock()

	nativeEvents[method] = decode
}

func nativeEventDecoder(method string) (EventDecoder, bool) {
	nativeEventsMu.RLock()
	defer nativeEventsMu.RUnlock()

	decode, found := nativeEvents[method]
	return decode, found
}
