package protocol

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// eventPayloadRegistry maps an EventType to the concrete Go type its
// Payload unmarshals into, so a JSON consumer (the headless NDJSON reader,
// or a test fixture) can decode EngineEvent.Payload without type-switching
// by hand.
var eventPayloadRegistry = map[EventType]reflect.Type{
	EventLogBatch:            reflect.TypeOf(LogBatchPayload{}),
	EventPerformanceStats:    reflect.TypeOf(PerformanceStatsPayload{}),
	EventVmConnectionChanged: reflect.TypeOf(VmConnectionChangedPayload{}),
	EventPhaseChanged:        reflect.TypeOf(PhaseChangedPayload{}),
}

// rawEvent mirrors EngineEvent but keeps Payload as json.RawMessage so it
// can be decoded a second time once the concrete type is known.
type rawEvent struct {
	Type     EventType       `json:"type"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Metadata EventMetadata   `json:"metadata"`
}

// MarshalEvent serializes an EngineEvent to a single NDJSON line.
func MarshalEvent(e EngineEvent) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes one NDJSON line, resolving Payload to its
// registered concrete type when known, or leaving it as a generic map
// otherwise (forward-compatible with event types this build predates).
func UnmarshalEvent(data []byte) (EngineEvent, error) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return EngineEvent{}, fmt.Errorf("unmarshal event envelope: %w", err)
	}

	event := EngineEvent{Type: raw.Type, Metadata: raw.Metadata}
	if len(raw.Payload) == 0 {
		return event, nil
	}

	if typ, ok := eventPayloadRegistry[raw.Type]; ok {
		payload := reflect.New(typ).Interface()
		if err := json.Unmarshal(raw.Payload, payload); err != nil {
			return EngineEvent{}, fmt.Errorf("unmarshal payload for %s: %w", raw.Type, err)
		}
		event.Payload = reflect.ValueOf(payload).Elem().Interface()
		return event, nil
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw.Payload, &generic); err != nil {
		return EngineEvent{}, fmt.Errorf("unmarshal unknown payload for %s: %w", raw.Type, err)
	}
	event.Payload = generic
	return event, nil
}
