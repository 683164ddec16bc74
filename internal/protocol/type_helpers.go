package protocol

import "fmt"

// GetPayload safely extracts a typed payload from a Message, returning an
// error instead of panicking on a type mismatch. update()'s handlers use
// this at every variant boundary.
func GetPayload[T any](msg Message) (T, error) {
	var zero T
	payload, ok := msg.Payload.(T)
	if !ok {
		return zero, fmt.Errorf("message %s: payload is not %T, got %T", msg.Type, zero, msg.Payload)
	}
	return payload, nil
}

// GetActionPayload safely extracts a typed payload from an Action.
func GetActionPayload[T any](action Action) (T, error) {
	var zero T
	payload, ok := action.Payload.(T)
	if !ok {
		return zero, fmt.Errorf("action %s: payload is not %T, got %T", action.Type, zero, action.Payload)
	}
	return payload, nil
}

// GetEventPayload safely extracts a typed payload from an EngineEvent.
func GetEventPayload[T any](event EngineEvent) (T, error) {
	var zero T
	payload, ok := event.Payload.(T)
	if !ok {
		return zero, fmt.Errorf("event %s: payload is not %T, got %T", event.Type, zero, event.Payload)
	}
	return payload, nil
}
