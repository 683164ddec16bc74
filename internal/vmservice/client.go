// Package vmservice implements the Dart VM Service WebSocket client: JSON-RPC
// request/response with id correlation, streamed events (stdout, GC, frame
// timeline), an isolate-id cache, and exponential-backoff retry of the
// initial dial (spec §4.5). A connection that drops after it was
// established is reported as VmServiceDisconnected and is not redialed.
package vmservice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/flutter-demon/fdemon/internal/perf"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// MessageSink receives messages produced by the VM Service's streamed
// events, normally an *engine.Engine's Send method.
type MessageSink interface {
	Send(protocol.Message)
}

type pendingCall struct {
	resp chan json.RawMessage
	err  chan error
}

// connection is one session's live VM Service WebSocket.
type connection struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	nextID    int64
	pending   map[int64]pendingCall
	isolateID atomic.Value // string

	cancel context.CancelFunc
	closed chan struct{}
	once   sync.Once
}

// Client manages one VM Service connection per session.
type Client struct {
	mu          sync.Mutex
	connections map[protocol.SessionID]*connection
	sink        MessageSink
	dialer      *websocket.Dialer
}

// New constructs a VM Service client reporting back through sink.
func New(sink MessageSink) *Client {
	return &Client{
		connections: make(map[protocol.SessionID]*connection),
		sink:        sink,
		dialer:      websocket.DefaultDialer,
	}
}

// Connect dials wsURI, retrying the initial dial with exponential backoff
// (spec §9: 250ms base, factor 2.0, 10s cap, 2min elapsed budget before
// giving up and reporting ConnectionFailed), then subscribes to the VM
// streams and starts the read pump. Once connected, a dropped WebSocket is
// reported as VmServiceDisconnected and is not redialed.
func (c *Client) Connect(ctx context.Context, sessionID protocol.SessionID, wsURI string) error {
	connCtx, cancel := context.WithCancel(ctx)
	conn := &connection{cancel: cancel, closed: make(chan struct{}), pending: make(map[int64]pendingCall)}
	conn.isolateID.Store("")

	c.mu.Lock()
	c.connections[sessionID] = conn
	c.mu.Unlock()

	go c.connectLoop(connCtx, sessionID, wsURI, conn)
	return nil
}

func (c *Client) connectLoop(ctx context.Context, sessionID protocol.SessionID, wsURI string, conn *connection) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.Multiplier = 2.0
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute
	b := backoff.WithContext(bo, ctx)

	dial := func() error {
		ws, _, err := c.dialer.DialContext(ctx, wsURI, nil)
		if err != nil {
			return err
		}
		conn.mu.Lock()
		conn.conn = ws
		conn.mu.Unlock()
		return nil
	}

	if err := backoff.Retry(dial, b); err != nil {
		c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceConnectionFailed, sessionID, protocol.VmEventErrorPayload{Reason: err.Error()}))
		return
	}

	c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceConnected, sessionID, nil))

	go func() {
		for _, stream := range []string{"Stdout", "Stderr", "GC", "Logging", "Extension", "Timeline"} {
			_, _ = c.Request(ctx, sessionID, "streamListen", map[string]interface{}{"streamId": stream})
		}
	}()
	go c.writePump(ctx, conn)
	go c.pollMemory(ctx, sessionID, conn)
	c.readPump(ctx, sessionID, conn)
}

// pollMemory samples heap/external memory at perf.PollInterval for as
// long as the connection lives. Shutdown is two-signaled, matching
// writePump: ctx.Done() (Disconnect) and conn.closed (the read pump
// exiting on any I/O error) must both be observed so the task never
// outlives a connection that died without an explicit Disconnect.
func (c *Client) pollMemory(ctx context.Context, sessionID protocol.SessionID, conn *connection) {
	ticker := time.NewTicker(perf.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.closed:
			return
		case <-ticker.C:
			c.sampleMemory(ctx, sessionID)
		}
	}
}

func (c *Client) sampleMemory(ctx context.Context, sessionID protocol.SessionID) {
	isolateID, err := c.MainIsolateID(ctx, sessionID)
	if err != nil {
		return
	}
	result, err := c.Request(ctx, sessionID, "getMemoryUsage", map[string]interface{}{"isolateId": isolateID})
	if err != nil {
		return
	}
	usage, ok := parseMemoryUsage(result)
	if !ok {
		return
	}
	c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceMemoryUsage, sessionID, usage))
}

func (c *Client) writePump(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.closed:
			return
		case <-ticker.C:
			conn.mu.Lock()
			ws := conn.conn
			if ws == nil {
				conn.mu.Unlock()
				continue
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := ws.WriteMessage(websocket.PingMessage, nil)
			conn.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump(ctx context.Context, sessionID protocol.SessionID, conn *connection) {
	defer conn.once.Do(func() { close(conn.closed) })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.mu.Lock()
		ws := conn.conn
		conn.mu.Unlock()
		if ws == nil {
			return
		}

		_, raw, err := ws.ReadMessage()
		if err != nil {
			c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceDisconnected, sessionID, nil))
			return
		}
		c.handleFrame(sessionID, conn, raw)
	}
}

// rpcFrame is either a response (has "id") or a streamed notification
// (has "method" == "streamNotify").
type rpcFrame struct {
	ID     *int64          `json:"id"`
	Error  json.RawMessage `json:"error"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func (c *Client) handleFrame(sessionID protocol.SessionID, conn *connection, raw []byte) {
	var frame rpcFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}

	if frame.ID != nil {
		conn.mu.Lock()
		call, ok := conn.pending[*frame.ID]
		delete(conn.pending, *frame.ID)
		conn.mu.Unlock()
		if !ok {
			return
		}
		if len(frame.Error) > 0 {
			call.err <- fmt.Errorf("vm service error: %s", frame.Error)
			return
		}
		call.resp <- frame.Result
		return
	}

	if frame.Method == "streamNotify" {
		c.handleStreamEvent(sessionID, frame.Params)
	}
}

type streamNotifyParams struct {
	StreamID string          `json:"streamId"`
	Event    streamEventBody `json:"event"`
}

type streamEventBody struct {
	Kind      string `json:"kind"`
	Timestamp int64  `json:"timestamp"`
}

func (c *Client) handleStreamEvent(sessionID protocol.SessionID, raw json.RawMessage) {
	var params streamNotifyParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}

	switch params.StreamID {
	case "Extension", "_Extension":
		if params.Event.Kind == "Extension" {
			c.sink.Send(protocol.NewMessage(protocol.MsgVmServicePerfMonitoringStarted, sessionID, nil))
		}
	case "GC":
		c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceGcEvent, sessionID, protocol.GcEventPayload{
			Timestamp: time.UnixMilli(params.Event.Timestamp),
			Kind:      params.Event.Kind,
		}))
	case "Timeline":
		// Frame-timing extraction from the raw timeline stream is
		// performed by parseFrameTiming; malformed events are dropped.
		if ft, ok := parseFrameTiming(raw); ok {
			c.sink.Send(protocol.NewMessage(protocol.MsgVmServiceFrameTiming, sessionID, ft))
		}
	}
}

// Disconnect tears down sessionID's connection, if any.
func (c *Client) Disconnect(sessionID protocol.SessionID) error {
	c.mu.Lock()
	conn, ok := c.connections[sessionID]
	delete(c.connections, sessionID)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	conn.cancel()
	conn.mu.Lock()
	ws := conn.conn
	conn.mu.Unlock()
	if ws != nil {
		return ws.Close()
	}
	return nil
}

// Request issues a correlated RPC call and blocks for its response or
// ctx's deadline, defaulting to protocol.DefaultRPCTimeout.
func (c *Client) Request(ctx context.Context, sessionID protocol.SessionID, method string, params interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	conn, ok := c.connections[sessionID]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("vmservice: no connection for session %s", sessionID)
	}

	conn.mu.Lock()
	ws := conn.conn
	if ws == nil {
		conn.mu.Unlock()
		return nil, fmt.Errorf("vmservice: session %s not connected", sessionID)
	}
	id := atomic.AddInt64(&conn.nextID, 1)
	call := pendingCall{resp: make(chan json.RawMessage, 1), err: make(chan error, 1)}
	conn.pending[id] = call
	conn.mu.Unlock()

	frame := map[string]interface{}{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		frame["params"] = params
	}

	conn.mu.Lock()
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	err := ws.WriteJSON(frame)
	conn.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("vmservice: write: %w", err)
	}

	timeout, cancel := context.WithTimeout(ctx, protocol.DefaultRPCTimeout)
	defer cancel()

	select {
	case result := <-call.resp:
		return result, nil
	case err := <-call.err:
		return nil, err
	case <-timeout.Done():
		return nil, fmt.Errorf("vmservice: request %s timed out", method)
	}
}

// IsolateID returns the cached main-isolate id for a session, if known.
func (c *Client) IsolateID(sessionID protocol.SessionID) (string, bool) {
	c.mu.Lock()
	conn, ok := c.connections[sessionID]
	c.mu.Unlock()
	if !ok {
		return "", false
	}
	id, _ := conn.isolateID.Load().(string)
	return id, id != ""
}

// MainIsolateID returns the cached main-isolate id, filling it with a
// fresh getVM call on a cache miss (first connect, or after
// InvalidateIsolateCache clears it on hot restart).
func (c *Client) MainIsolateID(ctx context.Context, sessionID protocol.SessionID) (string, error) {
	if id, ok := c.IsolateID(sessionID); ok {
		return id, nil
	}

	result, err := c.Request(ctx, sessionID, "getVM", nil)
	if err != nil {
		return "", fmt.Errorf("vmservice: getVM: %w", err)
	}
	var vm struct {
		Isolates []struct {
			ID string `json:"id"`
		} `json:"isolates"`
	}
	if err := json.Unmarshal(result, &vm); err != nil {
		return "", fmt.Errorf("vmservice: decode getVM: %w", err)
	}
	if len(vm.Isolates) == 0 {
		return "", fmt.Errorf("vmservice: getVM returned no isolates for session %s", sessionID)
	}

	id := vm.Isolates[0].ID
	c.SetIsolateID(sessionID, id)
	return id, nil
}

// SetIsolateID caches the main-isolate id, invalidated on reconnect.
func (c *Client) SetIsolateID(sessionID protocol.SessionID, id string) {
	c.mu.Lock()
	conn, ok := c.connections[sessionID]
	c.mu.Unlock()
	if ok {
		conn.isolateID.Store(id)
	}
}

// InvalidateIsolateCache clears the cached main-isolate id. Hot restart
// creates a new isolate, so the next MainIsolateID call after restart
// completion must issue a fresh getVM rather than reuse the pre-restart
// id (spec §4.5/§4.6).
func (c *Client) InvalidateIsolateCache(sessionID protocol.SessionID) {
	c.SetIsolateID(sessionID, "")
}

func parseFrameTiming(raw json.RawMessage) (protocol.FrameTimingPayload, bool) {
	var wrapper struct {
		Event struct {
			TimelineEvents []struct {
				Name string          `json:"name"`
				Ts   int64           `json:"ts"`
				Args json.RawMessage `json:"args"`
			} `json:"timelineEvents"`
		} `json:"event"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return protocol.FrameTimingPayload{}, false
	}
	var buildMs, rasterMs float64
	var ts int64
	found := false
	for _, ev := range wrapper.Event.TimelineEvents {
		switch ev.Name {
		case "Frame":
			var args struct {
				BuildMs  float64 `json:"build_ms"`
				RasterMs float64 `json:"raster_ms"`
			}
			if json.Unmarshal(ev.Args, &args) == nil {
				buildMs, rasterMs, ts, found = args.BuildMs, args.RasterMs, ev.Ts, true
			}
		}
	}
	if !found {
		return protocol.FrameTimingPayload{}, false
	}
	return protocol.FrameTimingPayload{
		Timestamp: time.UnixMicro(ts),
		BuildMs:   buildMs,
		RasterMs:  rasterMs,
	}, true
}

func parseMemoryUsage(raw json.RawMessage) (protocol.MemoryUsagePayload, bool) {
	var usage struct {
		HeapUsage int64 `json:"heapUsage"`
		HeapCap   int64 `json:"heapCapacity"`
		ExternalB int64 `json:"externalUsage"`
	}
	if err := json.Unmarshal(raw, &usage); err != nil {
		return protocol.MemoryUsagePayload{}, false
	}
	return protocol.MemoryUsagePayload{
		Timestamp: time.Now(),
		HeapUsage: usage.HeapUsage,
		HeapCap:   usage.HeapCap,
		ExternalB: usage.ExternalB,
	}, true
}
