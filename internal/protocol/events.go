package protocol

import "time"

// EventType enumerates the outbound notifications published to the
// engine's broadcast channel after every message cycle.
type EventType string

const (
	EventSessionCreated       EventType = "session_created"
	EventSessionRemoved       EventType = "session_removed"
	EventSessionSelected      EventType = "session_selected"
	EventPhaseChanged         EventType = "phase_changed"
	EventLogBatch             EventType = "log_batch"
	EventPerformanceStats     EventType = "performance_stats_updated"
	EventVmConnectionChanged  EventType = "vm_connection_changed"
	EventWidgetTreeArrived    EventType = "widget_tree_arrived"
	EventLayoutDataArrived    EventType = "layout_data_arrived"
	EventDialogStateChanged   EventType = "dialog_state_changed"
	EventShutdown             EventType = "shutdown"
)

// EventMetadata carries tracing/auditing context for one engine event,
// matching the metadata shape attached to every Message so a consumer can
// correlate cause and effect across the broadcast stream.
type EventMetadata struct {
	EventID       string            `json:"event_id"`
	MessageID     string            `json:"message_id,omitempty"`
	SessionID     SessionID         `json:"session_id,omitempty"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id"`
	CausationID   string            `json:"causation_id"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// EngineEvent is one typed, metadata-enriched notification on the
// broadcast channel. Subscribers include the TUI renderer, the headless
// NDJSON emitter, and registered plugins.
type EngineEvent struct {
	Type     EventType   `json:"type"`
	Payload  interface{} `json:"payload,omitempty"`
	Metadata EventMetadata `json:"metadata"`
}

// NewEvent constructs an event with fresh metadata, correlating it to the
// message that caused it when one is given.
func NewEvent(t EventType, sessionID SessionID, causingMessageID string, payload interface{}) EngineEvent {
	corr := causingMessageID
	id := NewID()
	if corr == "" {
		corr = id
	}
	return EngineEvent{
		Type:    t,
		Payload: payload,
		Metadata: EventMetadata{
			EventID:       id,
			MessageID:     causingMessageID,
			SessionID:     sessionID,
			Source:        "engine",
			Timestamp:     time.Now(),
			CorrelationID: corr,
			CausationID:   causingMessageID,
		},
	}
}

// SessionSnapshot is the minimal serializable view of a session emitted in
// SessionCreated/SessionSelected/phase-change events (the session package
// owns the full live model; this is its event-safe projection).
type SessionSnapshot struct {
	ID       SessionID `json:"id"`
	Name     string    `json:"name"`
	DeviceID string    `json:"device_id"`
	Phase    string    `json:"phase"`
	AppID    string    `json:"app_id,omitempty"`
}

// LogBatchPayload carries a flushed batch of log lines for one session.
type LogBatchPayload struct {
	Entries []LogEntryView
}

// LogEntryView is the event-safe projection of a session's LogEntry.
type LogEntryView struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	HasStack  bool      `json:"has_stack"`
}

// PerformanceStatsPayload carries recomputed PerformanceState.Stats.
type PerformanceStatsPayload struct {
	BufferedFrames int
	AvgFrameMs     float64
	FPS            *float64
	JankPct        float64
	LastMemoryHeap int64
}

// VmConnectionChangedPayload reports the VM Service connection state.
type VmConnectionChangedPayload struct {
	Connected bool
	Error     string
}

// PhaseChangedPayload reports a session phase transition.
type PhaseChangedPayload struct {
	OldPhase string
	NewPhase string
}
