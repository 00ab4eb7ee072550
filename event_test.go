package libcdp

import (
	"encoding/json"
	"testing"
)

func TestNewEventDecoder(t *testing.T) {
	decode := NewEventDecoder[testCustomEvent]()

	ev, err := decode(json.RawMessage(`{"name":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	custom, ok := ev.(*testCustomEvent)
	if !ok {
		t.Fatalf("expected *testCustomEvent, got %T", ev)
	}
	if custom.Name != "x" {
		t.Errorf("expected name %q, got %q", "x", custom.Name)
	}

	if _, err = decode(json.RawMessage(`not json`)); err == nil {
		t.Error("expected an error on malformed payload")
	}
}

func TestEventKind(t *testing.T) {
	if NativeEventKind().IsCustom() {
		t.Error("native kind must not report custom")
	}
	if !CustomEventKind(NewEventDecoder[testCustomEvent]()).IsCustom() {
		t.Error("custom kind must report custom")
	}
}

func TestRegisterNativeEvent(t *testing.T) {
	RegisterNativeEvent("Test.registered", NewEventDecoder[testPageLoaded]())

	decode, found := nativeEventDecoder("Test.registered")
	if !found {
		t.Fatal("expected decoder for registered method")
	}
	if _, err := decode(json.RawMessage(`{"timestamp":1}`)); err != nil {
		t.Fatalf("unexpected decode error: %s", err)
	}

	if _, found = nativeEventDecoder("Test.unregistered"); found {
		t.Fatal("expected no decoder for unregistered method")
	}
}

func TestBuiltinInspectorEvents(t *testing.T) {
	decode, found := nativeEventDecoder("Inspector.detached")
	if !found {
		t.Fatal("expected built-in Inspector.detached decoder")
	}
	ev, err := decode(json.RawMessage(`{"reason":"target_closed"}`))
	if err != nil {
		t.Fatalf("unexpected decode error: %s", err)
	}
	detached, ok := ev.(*EventInspectorDetached)
	if !ok {
		t.Fatalf("expected *EventInspectorDetached, got %T", ev)
	}
	if detached.Reason != "target_closed" {
		t.Errorf("expected reason %q, got %q", "target_closed", detached.Reason)
	}

	if _, found = nativeEventDecoder("Inspector.targetCrashed"); !found {
		t.Fatal("expected built-in Inspector.targetCrashed decoder")
	}
}
