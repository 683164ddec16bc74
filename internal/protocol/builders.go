package protocol

// EventBuilder helps construct EngineEvents with correct correlation and
// causation ids, mirroring the fluent builder the reference protocol
// package uses for its command/event metadata.
type EventBuilder struct {
	event EngineEvent
}

// NewEventBuilder starts building an event of the given type.
func NewEventBuilder(t EventType) *EventBuilder {
	return &EventBuilder{event: NewEvent(t, "", "", nil)}
}

func (b *EventBuilder) WithSessionID(id SessionID) *EventBuilder {
	b.event.Metadata.SessionID = id
	return b
}

func (b *EventBuilder) WithCausingMessage(messageID string) *EventBuilder {
	b.event.Metadata.MessageID = messageID
	b.event.Metadata.CausationID = messageID
	if messageID != "" {
		b.event.Metadata.CorrelationID = messageID
	}
	return b
}

func (b *EventBuilder) WithSource(source string) *EventBuilder {
	b.event.Metadata.Source = source
	return b
}

func (b *EventBuilder) WithTag(key, value string) *EventBuilder {
	if b.event.Metadata.Tags == nil {
		b.event.Metadata.Tags = make(map[string]string)
	}
	b.event.Metadata.Tags[key] = value
	return b
}

func (b *EventBuilder) WithPayload(payload interface{}) *EventBuilder {
	b.event.Payload = payload
	return b
}

func (b *EventBuilder) Build() EngineEvent {
	return b.event
}
