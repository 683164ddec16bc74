package supervisor

import (
	"testing"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDaemonLineAppStart(t *testing.T) {
	event, ok := parseDaemonLine(`[{"event":"app.start","params":{"appId":"app-1"}}]`)
	require.True(t, ok)
	assert.Equal(t, protocol.DaemonAppStart, event.Kind)
	assert.Equal(t, "app-1", event.AppID)
}

func TestParseDaemonLineDebugPort(t *testing.T) {
	event, ok := parseDaemonLine(`[{"event":"app.debugPort","params":{"wsUri":"ws://127.0.0.1:1/ws"}}]`)
	require.True(t, ok)
	assert.Equal(t, protocol.DaemonAppDebug, event.Kind)
	assert.Equal(t, "ws://127.0.0.1:1/ws", event.WsURI)
}

func TestParseDaemonLineResponse(t *testing.T) {
	event, ok := parseDaemonLine(`[{"id":7,"result":{}}]`)
	require.True(t, ok)
	assert.Equal(t, protocol.DaemonResponse, event.Kind)
	assert.Equal(t, 7, event.RequestID)
}

func TestParseDaemonLineNonJSONIsRejected(t *testing.T) {
	_, ok := parseDaemonLine("Launching lib/main.dart on Pixel...")
	assert.False(t, ok)
}

func TestParseDaemonLineUnknownEvent(t *testing.T) {
	event, ok := parseDaemonLine(`[{"event":"daemon.logMessage","params":{}}]`)
	require.True(t, ok)
	assert.Equal(t, protocol.DaemonUnknown, event.Kind)
}
