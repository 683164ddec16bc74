package session

import (
	"time"

	"github.com/flutter-demon/fdemon/internal/logpipeline"
	"github.com/flutter-demon/fdemon/internal/perf"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

// LogCapacity bounds a session's log ring buffer (spec §3).
const LogCapacity = 10000

// MaxPendingBatch bounds the number of entries held in the pending batch
// before a flush is forced regardless of the flush-tick cadence.
const MaxPendingBatch = 200

// Session is one Flutter app invocation, owned and mutated exclusively by
// the engine's update function (spec §3, §4.2). It is not safe for
// concurrent use outside of that single-writer discipline, with the
// exception of Performance, which has its own internal locking because
// perf samples are produced by an async polling task.
type Session struct {
	ID       protocol.SessionID
	DeviceID string
	Name     string
	Config   *protocol.LaunchConfig

	phase Phase

	AppID       string
	WsURI       string
	VmConnected bool

	Logs    *logpipeline.RingBuffer[logpipeline.LogEntry]
	pending []logpipeline.LogEntry

	Pipeline    *logpipeline.Pipeline
	Performance *perf.State

	CreatedAt    time.Time
	LastActivity time.Time
}

// New constructs a session in the Starting phase.
func New(id protocol.SessionID, deviceID, name string, cfg *protocol.LaunchConfig) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		DeviceID:     deviceID,
		Name:         name,
		Config:       cfg,
		phase:        Starting,
		Logs:         logpipeline.NewRingBuffer[logpipeline.LogEntry](LogCapacity),
		Pipeline:     logpipeline.NewPipeline(nil),
		Performance:  perf.NewState(),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Phase returns the session's current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// TransitionTo moves the session to a new phase if the transition is
// legal, returning whether it took effect. Illegal transitions are
// ignored per spec §4.2.
func (s *Session) TransitionTo(to Phase) bool {
	if !CanTransition(s.phase, to) {
		return false
	}
	s.phase = to
	s.LastActivity = time.Now()
	return true
}

// MarkStopped transitions to Stopped. AppID is deliberately preserved:
// daemon events can arrive after the process has exited and must still
// be routable to this session (spec §4.2).
func (s *Session) MarkStopped() bool {
	return s.TransitionTo(Stopped)
}

// SetAppID records the app id assigned by the Flutter daemon.
func (s *Session) SetAppID(id string) { s.AppID = id }

// SetWsURI records the VM Service WebSocket URI once the debug port
// arrives.
func (s *Session) SetWsURI(uri string) { s.WsURI = uri }

// SetVmConnected flips the VM Service connection flag.
func (s *Session) SetVmConnected(connected bool) { s.VmConnected = connected }

// AddLog queues an entry into the pending batch; it is not visible in Logs
// until FlushBatch is called.
func (s *Session) AddLog(entry logpipeline.LogEntry) {
	s.pending = append(s.pending, entry)
}

// PendingBatchLen reports how many entries are queued for flush.
func (s *Session) PendingBatchLen() int { return len(s.pending) }

// BatchReady reports whether the pending batch has reached the forced
// flush threshold.
func (s *Session) BatchReady() bool { return len(s.pending) >= MaxPendingBatch }

// FlushBatch moves every pending entry into the ring buffer (oldest
// evicted on overflow) and returns the flushed entries for event emission.
// A nil/empty return means there was nothing to flush.
func (s *Session) FlushBatch() []logpipeline.LogEntry {
	if len(s.pending) == 0 {
		return nil
	}
	flushed := s.pending
	for _, e := range flushed {
		s.Logs.Push(e)
	}
	s.pending = nil
	return flushed
}

// FlushExceptionOnExit force-completes any partial exception block still
// buffered in the pipeline and queues it as a final log entry, per the
// session-exit failure semantics in spec §4.2.
func (s *Session) FlushExceptionOnExit() {
	if entry, ok := s.Pipeline.Flush(); ok {
		s.AddLog(entry)
	}
}

// Snapshot returns the minimal serializable view emitted alongside
// SessionCreated/SessionSelected/phase-change events.
func (s *Session) Snapshot() protocol.SessionSnapshot {
	return protocol.SessionSnapshot{
		ID:       s.ID,
		Name:     s.Name,
		DeviceID: s.DeviceID,
		Phase:    s.phase.String(),
		AppID:    s.AppID,
	}
}
