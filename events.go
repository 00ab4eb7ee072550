package libcdp

// Inspector domain notifications every debugging endpoint can emit,
// registered out of the box. Further domains belong to generated protocol
// packages.

type EventInspectorDetached struct {
	// Reason tells why the endpoint dropped the session, e.g.
	// "target_closed" or "replaced_with_devtools".
	Reason string `json:"reason"`
}

func (e *EventInspectorDetached) Method() string { return "Inspector.detached" }

type EventInspectorTargetCrashed struct{}

func (e *EventInspectorTargetCrashed) Method() string { return "Inspector.targetCrashed" }

func init() {
	RegisterNativeEvent("Inspector.detached", NewEventDecoder[EventInspectorDetached]())
	RegisterNativeEvent("Inspector.targetCrashed", NewEventDecoder[EventInspectorTargetCrashed]())
}
