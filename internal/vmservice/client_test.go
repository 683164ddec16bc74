package vmservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

func TestParseFrameTimingExtractsBuildAndRasterMs(t *testing.T) {
	raw := json.RawMessage(`{"event":{"timelineEvents":[{"name":"Frame","ts":1000,"args":{"build_ms":4.2,"raster_ms":5.1}}]}}`)

	ft, ok := parseFrameTiming(raw)
	require.True(t, ok)
	assert.InDelta(t, 4.2, ft.BuildMs, 0.001)
	assert.InDelta(t, 5.1, ft.RasterMs, 0.001)
}

func TestParseFrameTimingMissingFrameEventIsRejected(t *testing.T) {
	raw := json.RawMessage(`{"event":{"timelineEvents":[{"name":"Other","ts":1}]}}`)
	_, ok := parseFrameTiming(raw)
	assert.False(t, ok)
}

type sink struct {
	messages chan protocol.Message
}

func (s *sink) Send(m protocol.Message) { s.messages <- m }

func TestConnectReportsConnectedThenDisconnectedOnClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		// Hold the connection open briefly, then close it to trigger the
		// client's disconnect path.
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	s := &sink{messages: make(chan protocol.Message, 8)}
	c := New(s)
	sessionID := protocol.NewSessionID()

	require.NoError(t, c.Connect(context.Background(), sessionID, wsURL))

	var sawConnected, sawDisconnected bool
	deadline := time.After(2 * time.Second)
	for !sawDisconnected {
		select {
		case msg := <-s.messages:
			switch msg.Type {
			case protocol.MsgVmServiceConnected:
				sawConnected = true
			case protocol.MsgVmServiceDisconnected:
				sawDisconnected = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for connect/disconnect messages")
		}
	}
	assert.True(t, sawConnected)
}
