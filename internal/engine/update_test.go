package engine

import (
	"testing"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateSpawnSessionCreatesAndSelects(t *testing.T) {
	state := NewAppState()
	msg := protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{DeviceID: "device-1", Name: "main"})

	action := update(state, msg)

	require.NotNil(t, action)
	assert.Equal(t, protocol.ActionSpawnSession, action.Type)
	assert.Equal(t, 1, state.Sessions.Count())

	sel, ok := state.Sessions.Selected()
	require.True(t, ok)
	assert.Equal(t, action.SessionID, sel.ID)
}

func TestUpdateDaemonAppDebugPortTriggersVmConnect(t *testing.T) {
	state := NewAppState()
	s, err := state.Sessions.CreateSession("device-1", "main", nil)
	require.NoError(t, err)

	msg := protocol.NewMessage(protocol.MsgDaemon, s.ID, protocol.DaemonEventPayload{
		Kind:  protocol.DaemonAppDebug,
		WsURI: "ws://127.0.0.1:1234/ws",
	})

	action := update(state, msg)
	require.NotNil(t, action)
	assert.Equal(t, protocol.ActionConnectVmService, action.Type)
	assert.Equal(t, "ws://127.0.0.1:1234/ws", s.WsURI)

	payload, err := protocol.GetActionPayload[protocol.ConnectVmServiceActionPayload](*action)
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:1234/ws", payload.WsURI)
}

func TestUpdateRestartCompletedInvalidatesIsolateCache(t *testing.T) {
	state := NewAppState()
	s, err := state.Sessions.CreateSession("device-1", "main", nil)
	require.NoError(t, err)
	s.TransitionTo(session.Running)
	s.TransitionTo(session.Restarting)

	msg := protocol.NewMessage(protocol.MsgSessionRestartCompleted, s.ID, nil)
	action := update(state, msg)

	require.NotNil(t, action)
	assert.Equal(t, protocol.ActionInvalidateIsolateCache, action.Type)
	assert.Equal(t, s.ID, action.SessionID)
	assert.Equal(t, session.Running, s.Phase())
}

func TestUpdateDaemonAppStartedTransitionsToRunning(t *testing.T) {
	state := NewAppState()
	s, err := state.Sessions.CreateSession("device-1", "main", nil)
	require.NoError(t, err)

	msg := protocol.NewMessage(protocol.MsgDaemon, s.ID, protocol.DaemonEventPayload{Kind: protocol.DaemonAppStarted})
	update(state, msg)

	assert.Equal(t, session.Running, s.Phase())
}

func TestUpdateSessionExitedMarksStoppedAndDisconnects(t *testing.T) {
	state := NewAppState()
	s, err := state.Sessions.CreateSession("device-1", "main", nil)
	require.NoError(t, err)
	s.TransitionTo(session.Running)

	msg := protocol.NewMessage(protocol.MsgSessionExited, s.ID, protocol.SessionExitedPayload{Code: 0})
	action := update(state, msg)

	require.NotNil(t, action)
	assert.Equal(t, protocol.ActionDisconnectVmService, action.Type)
	assert.Equal(t, session.Stopped, s.Phase())
}

func TestUpdateSessionSwitchNextWraps(t *testing.T) {
	state := NewAppState()
	_, err := state.Sessions.CreateSession("device-1", "one", nil)
	require.NoError(t, err)
	_, err = state.Sessions.CreateSession("device-2", "two", nil)
	require.NoError(t, err)

	update(state, protocol.NewMessage(protocol.MsgSessionSwitchNext, "", nil))
	assert.Equal(t, 1, state.Sessions.SelectedIndex())

	update(state, protocol.NewMessage(protocol.MsgSessionSwitchNext, "", nil))
	assert.Equal(t, 0, state.Sessions.SelectedIndex())
}

func TestUpdateOpenDialogSetsMode(t *testing.T) {
	state := NewAppState()
	update(state, protocol.NewMessage(protocol.MsgOpenDialog, "", protocol.OpenDialogPayload{Dialog: protocol.DialogSettings}))
	assert.Equal(t, ModeSettings, state.Mode)

	update(state, protocol.NewMessage(protocol.MsgDialogCancel, "", nil))
	assert.Equal(t, ModeNormal, state.Mode)
}

func TestUpdateIllegalMessageForUnknownSessionIsNoOp(t *testing.T) {
	state := NewAppState()
	action := update(state, protocol.NewMessage(protocol.MsgVmServiceConnected, protocol.NewSessionID(), nil))
	assert.Nil(t, action)
}
