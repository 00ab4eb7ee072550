package libcdp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestEventStreamYieldsTypedEvents(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "Animation.animationCanceled", NativeEventKind(), 8)
	stream := NewEventStream[*testAnimationCanceled](sub)

	want := &testAnimationCanceled{ID: "id"}
	s.DispatchNative(want.Method(), want)
	s.Drain()

	got, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEventStreamCustomEvent(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "Custom.Event", CustomEventKind(NewEventDecoder[testCustomEvent]()), 8)
	stream := NewEventStream[*testCustomEvent](sub)

	if err := s.DispatchCustom("Custom.Event", json.RawMessage(`{"name":"my event"}`)); err != nil {
		t.Fatalf("unexpected dispatch error: %s", err)
	}
	s.Drain()

	got, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Name != "my event" {
		t.Fatalf("expected name %q, got %q", "my event", got.Name)
	}
}

func TestEventStreamDiscardsMismatchedTypes(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "K", NativeEventKind(), 8)
	stream := NewEventStream[*testAnimationCanceled](sub)

	// a different concrete type lands on the same key first; the stream must
	// skip it and move on instead of stalling
	s.DispatchNative("K", &testPageLoaded{Timestamp: 1})
	want := &testAnimationCanceled{ID: "after mismatch"}
	s.DispatchNative("K", want)
	s.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEventStreamEndsWithProducer(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "K", NativeEventKind(), 8)
	stream := NewEventStream[*testAnimationCanceled](sub)

	want := &testAnimationCanceled{ID: "last"}
	s.DispatchNative("K", want)
	s.Drain()
	s.CloseAll()

	// events delivered before the close are still readable
	got, err := stream.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// once exhausted, the stream ends and stays ended
	for i := 0; i < 2; i++ {
		if _, err = stream.Next(context.Background()); !errors.Is(err, ErrStreamClosed) {
			t.Fatalf("expected ErrStreamClosed, got %v", err)
		}
	}
}

func TestEventStreamContextCancellation(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "K", NativeEventKind(), 8)
	stream := NewEventStream[*testAnimationCanceled](sub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := stream.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEventStreamCloseUnsubscribes(t *testing.T) {
	s := newTestSubscriptions()
	sub := addListener(s, "K", NativeEventKind(), 8)
	stream := NewEventStream[*testAnimationCanceled](sub)

	stream.Close()
	s.Drain()

	if remaining := len(s.subs["K"]); remaining != 0 {
		t.Fatalf("expected subscription removal after stream close, %d left", remaining)
	}
	if _, err := stream.Next(context.Background()); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
}
