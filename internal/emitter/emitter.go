// Package emitter implements the headless consumer of the engine's event
// broadcast: one JSON object per line written to an io.Writer, selected in
// place of the TUI when stdout is not a terminal (spec.md §6, component 10).
package emitter

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/flutter-demon/fdemon/internal/logging"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

// Emitter writes NDJSON lines for every EngineEvent it receives. It keeps
// a running count of log entries emitted per session and numbers each
// entry from it; ticks, keys, and reload events carry no log entries and
// never touch the counter. The counter is dropped when the session is
// removed; it is not reset or adjusted when a ring buffer evicts entries.
type Emitter struct {
	w      *bufio.Writer
	logger *logging.Logger

	mu        sync.Mutex
	logCounts map[protocol.SessionID]int
}

// New constructs an Emitter writing to w.
func New(w io.Writer, logger *logging.Logger) *Emitter {
	return &Emitter{
		w:         bufio.NewWriter(w),
		logger:    logger,
		logCounts: make(map[protocol.SessionID]int),
	}
}

// Run drains events until the channel closes or ctx is cancelled, flushing
// after every line so a piped consumer sees output immediately.
func (e *Emitter) Run(ctx context.Context, events <-chan protocol.EngineEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			e.handle(evt)
		}
	}
}

func (e *Emitter) handle(evt protocol.EngineEvent) {
	if evt.Type == protocol.EventLogBatch {
		e.emitLogBatch(evt)
		return
	}
	e.writeLine(evt)

	if evt.Type == protocol.EventSessionRemoved {
		e.mu.Lock()
		delete(e.logCounts, evt.Metadata.SessionID)
		e.mu.Unlock()
	}
}

// emitLogBatch writes one NDJSON object per new log entry rather than the
// whole batch payload, so each line carries the session id and a running
// index a downstream consumer can use to detect gaps.
func (e *Emitter) emitLogBatch(evt protocol.EngineEvent) {
	payload, ok := evt.Payload.(protocol.LogBatchPayload)
	if !ok || len(payload.Entries) == 0 {
		return
	}

	e.mu.Lock()
	start := e.logCounts[evt.Metadata.SessionID]
	e.logCounts[evt.Metadata.SessionID] = start + len(payload.Entries)
	e.mu.Unlock()

	for i, entry := range payload.Entries {
		e.writeLine(logLine{
			Type:      "log",
			SessionID: evt.Metadata.SessionID,
			Index:     start + i,
			Entry:     entry,
		})
	}
}

type logLine struct {
	Type      string                `json:"type"`
	SessionID protocol.SessionID    `json:"session_id"`
	Index     int                   `json:"index"`
	Entry     protocol.LogEntryView `json:"entry"`
}

func (e *Emitter) writeLine(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("emitter: marshal failed", "error", err)
		}
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.w.Write(b)
	e.w.WriteByte('\n')
	e.w.Flush()
}

// LogCount reports how many log entries have been emitted for a session,
// exposed for tests asserting invariant 8: no log is ever emitted twice.
func (e *Emitter) LogCount(sessionID protocol.SessionID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logCounts[sessionID]
}
