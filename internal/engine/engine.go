package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flutter-demon/fdemon/internal/logging"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
	"golang.org/x/time/rate"
)

// MetricsCollector records engine operational metrics (internal/metrics).
type MetricsCollector interface {
	RecordMessage(msgType protocol.MessageType)
	RecordMessageDuration(msgType protocol.MessageType, d time.Duration)
	RecordError(operation string, err error)
	RecordSessionCount(count int)
}

// Engine drains a single message channel through update and hands the
// resulting action to a Dispatcher. It is the only writer of AppState
// (spec §2).
type Engine struct {
	state *AppState

	messages chan protocol.Message
	events   chan<- protocol.EngineEvent

	dispatcher *Dispatcher
	logger     *logging.Logger
	metrics    MetricsCollector
	limiter    *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	config Config
}

// New constructs an engine. events may be nil in tests that don't assert
// on the broadcast stream.
func New(cfg Config, events chan<- protocol.EngineEvent, dispatcher *Dispatcher, metrics MetricsCollector, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		state:      NewAppState(),
		messages:   make(chan protocol.Message, cfg.MessageBufferSize),
		events:     events,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
		config:     cfg,
	}
}

// Send enqueues a message. Callers on the hot I/O path (subprocess
// readers, VM Service client, watcher) use this to report back into the
// single-threaded loop.
func (e *Engine) Send(msg protocol.Message) {
	select {
	case e.messages <- msg:
	case <-e.ctx.Done():
	}
}

// MessageChan exposes the engine's inbound channel so a Dispatcher can be
// constructed against it before the engine itself is built (the
// dispatcher's worker reports land on the same channel the engine drains).
func (e *Engine) MessageChan() chan protocol.Message { return e.messages }

// SetDispatcher installs the dispatcher used to hydrate and execute
// actions produced by update(). Callers build the engine first (to get
// its message channel via MessageChan), construct the dispatcher against
// that channel, then call SetDispatcher before Start.
func (e *Engine) SetDispatcher(d *Dispatcher) { e.dispatcher = d }

// State returns the live application state. Callers outside the message
// loop (the TUI renderer) must only read it between ticks; it is not
// safe for concurrent mutation.
func (e *Engine) State() *AppState { return e.state }

// Start begins the message loop and a periodic Tick generator.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.loop()

	e.wg.Add(1)
	go e.ticker()

	e.logger.Info("engine started")
}

// Stop signals shutdown and waits up to the configured timeout for the
// message loop to drain.
func (e *Engine) Stop() error {
	e.cancel()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(e.config.ShutdownTimeout):
		return fmt.Errorf("engine shutdown timeout after %v", e.config.ShutdownTimeout)
	}
}

// Health reports a minimal liveness snapshot.
func (e *Engine) Health() map[string]interface{} {
	return map[string]interface{}{
		"status":          "healthy",
		"session_count":   e.state.Sessions.Count(),
		"queued_messages": len(e.messages),
	}
}

func (e *Engine) ticker() {
	defer e.wg.Done()
	t := time.NewTicker(e.config.FlushTickInterval)
	defer t.Stop()
	for {
		select {
		case <-e.ctx.Done():
			return
		case now := <-t.C:
			e.Send(protocol.NewMessage(protocol.MsgTick, "", now))
		}
	}
}

func (e *Engine) loop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.ctx.Done():
			return
		case msg := <-e.messages:
			e.process(msg)
		}
	}
}

func (e *Engine) process(msg protocol.Message) {
	if msg.SessionID != "" && !e.limiter.Allow() {
		e.logger.LogRateLimitExceeded(e.ctx, msg.SessionID.String())
		return
	}

	ctx := logging.WithMessageID(e.ctx, msg.ID)
	start := time.Now()
	e.logger.LogMessage(ctx, "processing message", msg)

	if e.metrics != nil {
		e.metrics.RecordMessage(msg.Type)
	}

	action := update(e.state, msg)

	switch msg.Type {
	case protocol.MsgTick:
		e.flushAllPendingBatches(msg.ID)
	case protocol.MsgDaemon:
		e.flushSizeReadyBatches(msg.ID)
	}

	e.logger.LogMessageProcessed(ctx, msg, time.Since(start))
	if e.metrics != nil {
		e.metrics.RecordMessageDuration(msg.Type, time.Since(start))
		e.metrics.RecordSessionCount(e.state.Sessions.Count())
	}

	e.emit(msg)

	if action != nil && e.dispatcher != nil {
		e.dispatcher.Dispatch(ctx, *action)
	}
}

// emit publishes the broadcast event(s) this message cycle produced. The
// reference implementation derives a minimal event set from the message
// type; plugin-specific filtering happens downstream at the subscriber.
func (e *Engine) emit(msg protocol.Message) {
	if e.events == nil {
		return
	}
	var evt *protocol.EngineEvent
	switch msg.Type {
	case protocol.MsgSpawnSession, protocol.MsgAttachSession:
		if s, ok := e.state.Sessions.Get(msg.SessionID); ok {
			built := protocol.NewEvent(protocol.EventSessionCreated, s.ID, msg.ID, s.Snapshot())
			evt = &built
		}
	case protocol.MsgSessionExited:
		built := protocol.NewEvent(protocol.EventSessionRemoved, msg.SessionID, msg.ID, nil)
		evt = &built
	case protocol.MsgVmServiceConnected, protocol.MsgVmServiceDisconnected, protocol.MsgVmServiceConnectionFailed:
		payload := protocol.VmConnectionChangedPayload{Connected: msg.Type == protocol.MsgVmServiceConnected}
		if p, err := protocol.GetPayload[protocol.VmEventErrorPayload](msg); err == nil {
			payload.Error = p.Reason
		}
		built := protocol.NewEvent(protocol.EventVmConnectionChanged, msg.SessionID, msg.ID, payload)
		evt = &built
	}
	if evt != nil {
		select {
		case e.events <- *evt:
		default:
			e.recordDropped(string(evt.Type))
		}
	}

	if msg.Type == protocol.MsgVmServiceFrameTiming {
		e.recordFrameStats(msg.SessionID)
	}
}

// droppedEventRecorder is the optional extension engine.MetricsCollector
// implementations may satisfy to count broadcast events dropped because a
// subscriber's channel was full (internal/metrics.Collector does).
type droppedEventRecorder interface {
	RecordDroppedEvent(reason string)
}

func (e *Engine) recordDropped(reason string) {
	if r, ok := e.metrics.(droppedEventRecorder); ok {
		r.RecordDroppedEvent(reason)
	}
}

// frameStatsRecorder is the optional extension for per-session frame/jank
// gauges (internal/metrics.Collector does).
type frameStatsRecorder interface {
	RecordFrameStats(sessionID protocol.SessionID, avgFrameMs, jankPct float64)
}

func (e *Engine) recordFrameStats(sessionID protocol.SessionID) {
	r, ok := e.metrics.(frameStatsRecorder)
	if !ok {
		return
	}
	s, ok := e.state.Sessions.Get(sessionID)
	if !ok {
		return
	}
	stats := s.Performance.RecomputeThrottled(time.Now())
	r.RecordFrameStats(sessionID, stats.AvgFrameMs, stats.JankPct)
}

// flushSizeReadyBatches flushes every session whose pending log batch has
// hit its forced-flush size threshold (spec §4.1: "The batch is flushed
// when it reaches a size threshold"). It runs after every MsgDaemon
// message, the path that feeds subprocess output into the log pipeline,
// so a fast-logging session never waits for the next flush-tick once it
// crosses the threshold.
func (e *Engine) flushSizeReadyBatches(causingMessageID string) {
	for _, id := range e.state.Sessions.SessionIDsInOrder() {
		s, ok := e.state.Sessions.Get(id)
		if !ok || !s.BatchReady() {
			continue
		}
		e.flushSession(id, s, causingMessageID)
	}
}

// flushAllPendingBatches flushes every session with a non-empty pending
// batch regardless of size (spec §4.1: "...or when a flush-tick fires").
// A session logging well under the size threshold must still surface its
// entries on the next tick rather than wait indefinitely for one that
// crosses BatchReady.
func (e *Engine) flushAllPendingBatches(causingMessageID string) {
	for _, id := range e.state.Sessions.SessionIDsInOrder() {
		s, ok := e.state.Sessions.Get(id)
		if !ok || s.PendingBatchLen() == 0 {
			continue
		}
		e.flushSession(id, s, causingMessageID)
	}
}

func (e *Engine) flushSession(id protocol.SessionID, s *session.Session, causingMessageID string) {
	flushed := s.FlushBatch()
	if e.events == nil || len(flushed) == 0 {
		return
	}
	views := make([]protocol.LogEntryView, len(flushed))
	for i, entry := range flushed {
		views[i] = protocol.LogEntryView{
			Timestamp: entry.Timestamp,
			Level:     entry.Level.String(),
			Source:    entry.Source.String(),
			Message:   entry.Message,
			HasStack:  len(entry.Stack) > 0,
		}
	}
	evt := protocol.NewEvent(protocol.EventLogBatch, id, causingMessageID, protocol.LogBatchPayload{Entries: views})
	select {
	case e.events <- evt:
	default:
		e.recordDropped(string(evt.Type))
	}
}
