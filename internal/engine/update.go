package engine

import (
	"github.com/flutter-demon/fdemon/internal/logpipeline"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
)

// update is the pure state-transition function: given the current state
// and one message, it mutates state in place (state has a single owner,
// the engine's message loop, so in-place mutation stands in for the
// immutable-per-tick contract) and returns at most one Action for the
// dispatcher to hydrate and execute (spec §2, §3).
func update(state *AppState, msg protocol.Message) *protocol.Action {
	switch msg.Type {
	case protocol.MsgKey:
		return updateKey(state, msg)
	case protocol.MsgTick:
		return updateTick(state, msg)
	case protocol.MsgDaemon:
		return updateDaemon(state, msg)
	case protocol.MsgSessionExited:
		return updateSessionExited(state, msg)
	case protocol.MsgVmServiceConnected:
		return updateVmConnected(state, msg)
	case protocol.MsgVmServiceDisconnected:
		return updateVmDisconnected(state, msg)
	case protocol.MsgVmServiceConnectionFailed:
		return updateVmConnectionFailed(state, msg)
	case protocol.MsgVmServicePerfMonitoringStarted:
		return updatePerfMonitoringStarted(state, msg)
	case protocol.MsgVmServiceFrameTiming:
		return updateFrameTiming(state, msg)
	case protocol.MsgVmServiceMemoryUsage:
		return updateMemoryUsage(state, msg)
	case protocol.MsgVmServiceGcEvent:
		return updateGcEvent(state, msg)
	case protocol.MsgAppDebugPort:
		return updateAppDebugPort(state, msg)
	case protocol.MsgSessionReloadCompleted:
		return updateReloadCompleted(state, msg)
	case protocol.MsgSessionRestartCompleted:
		return updateRestartCompleted(state, msg)
	case protocol.MsgWidgetTreeFetched:
		return updateWidgetTreeFetched(state, msg)
	case protocol.MsgWidgetTreeFetchFailed:
		return updateWidgetTreeFetchFailed(state, msg)
	case protocol.MsgLayoutDataFetched:
		return updateLayoutDataFetched(state, msg)
	case protocol.MsgLayoutDataFetchFailed:
		return updateLayoutDataFetchFailed(state, msg)
	case protocol.MsgRequestWidgetTree:
		return actionForSelected(state, protocol.ActionFetchWidgetTree, nil)
	case protocol.MsgRequestLayoutData:
		return actionForSelected(state, protocol.ActionFetchLayoutData, nil)
	case protocol.MsgRequestDevices:
		return &protocol.Action{Type: protocol.ActionDiscoverDevices}
	case protocol.MsgDevicesDiscovered:
		return updateDevicesDiscovered(state, msg)
	case protocol.MsgBootDevice:
		return updateBootDevice(state, msg)
	case protocol.MsgFileChanged:
		return updateFileChanged(state, msg)
	case protocol.MsgSpawnSession:
		return updateSpawnSession(state, msg)
	case protocol.MsgAttachSession:
		return updateAttachSession(state, msg)
	case protocol.MsgCloseCurrentSession:
		return updateCloseCurrentSession(state, msg)
	case protocol.MsgSessionSwitchNext:
		state.Sessions.SelectNext()
		return nil
	case protocol.MsgSessionSwitchPrevious:
		state.Sessions.SelectPrevious()
		return nil
	case protocol.MsgSessionSwitchByIndex:
		return updateSwitchByIndex(state, msg)
	case protocol.MsgSessionRenamed:
		return updateSessionRenamed(state, msg)
	case protocol.MsgOpenDialog:
		return updateOpenDialog(state, msg)
	case protocol.MsgDialogInput, protocol.MsgDialogConfirm, protocol.MsgDialogCancel:
		return updateDialog(state, msg)
	case protocol.MsgAppStop:
		state.Quitting = true
		return actionForSelected(state, protocol.ActionSpawnStop, nil)
	default:
		return nil
	}
}

func actionForSelected(state *AppState, t protocol.ActionType, payload interface{}) *protocol.Action {
	sel, ok := state.Sessions.Selected()
	if !ok {
		return nil
	}
	return &protocol.Action{Type: t, SessionID: sel.ID, Payload: payload}
}

func updateKey(state *AppState, msg protocol.Message) *protocol.Action {
	if state.Mode != ModeNormal {
		return updateDialog(state, msg)
	}
	key, err := protocol.GetPayload[protocol.KeyPayload](msg)
	if err != nil {
		return nil
	}
	switch key.Key.Kind {
	case protocol.KeyTab:
		state.Sessions.SelectNext()
	case protocol.KeyBackTab:
		state.Sessions.SelectPrevious()
	case protocol.KeyChar:
		switch key.Key.Rune {
		case 'r':
			return manualReload(state, msg.SessionID)
		case 'R':
			return manualRestart(state, msg.SessionID)
		}
	}
	return nil
}

// manualReload transitions the addressed session into Reloading and
// requests the supervisor perform a hot reload, mirroring the
// file-watcher's fan-out path but scoped to a single session (spec §4.9:
// "SpawnTask(Reload) → Reloading").
func manualReload(state *AppState, sessionID protocol.SessionID) *protocol.Action {
	s, ok := state.Sessions.Get(sessionID)
	if !ok || s.Phase() != session.Running {
		return nil
	}
	s.TransitionTo(session.Reloading)
	return &protocol.Action{Type: protocol.ActionSpawnReload, SessionID: sessionID}
}

// manualRestart transitions the addressed session into Restarting and
// requests a hot restart (spec §4.9: "SpawnTask(Restart) → Restarting").
func manualRestart(state *AppState, sessionID protocol.SessionID) *protocol.Action {
	s, ok := state.Sessions.Get(sessionID)
	if !ok || s.Phase() != session.Running {
		return nil
	}
	s.TransitionTo(session.Restarting)
	return &protocol.Action{Type: protocol.ActionSpawnRestart, SessionID: sessionID}
}

// updateTick is intentionally a no-op in the pure update step: the
// flush-tick's log-batch side effects are handled by the engine loop
// (see Engine.flushAllPendingBatches) so that each flush can carry its own
// LogBatch event, which update has no channel to emit directly.
func updateTick(state *AppState, _ protocol.Message) *protocol.Action {
	return nil
}

func updateDaemon(state *AppState, msg protocol.Message) *protocol.Action {
	event, err := protocol.GetPayload[protocol.DaemonEventPayload](msg)
	if err != nil {
		return nil
	}
	s, ok := state.Sessions.Get(msg.SessionID)
	if !ok {
		return nil
	}
	switch event.Kind {
	case protocol.DaemonAppStart:
		s.SetAppID(event.AppID)
	case protocol.DaemonAppStarted:
		s.TransitionTo(session.Running)
	case protocol.DaemonAppDebug:
		s.SetWsURI(event.WsURI)
		return &protocol.Action{Type: protocol.ActionConnectVmService, SessionID: s.ID, Payload: protocol.ConnectVmServiceActionPayload{WsURI: event.WsURI}}
	case protocol.DaemonAppLog:
		if entry, ok := s.Pipeline.Feed(event.Message, false); ok {
			s.AddLog(entry)
		}
	case protocol.DaemonAppStop:
		s.MarkStopped()
	}
	return nil
}

func updateSessionExited(state *AppState, msg protocol.Message) *protocol.Action {
	s, ok := state.Sessions.Get(msg.SessionID)
	if !ok {
		return nil
	}
	s.FlushExceptionOnExit()
	s.FlushBatch()
	s.MarkStopped()
	return &protocol.Action{Type: protocol.ActionDisconnectVmService, SessionID: s.ID}
}

func updateVmConnected(state *AppState, msg protocol.Message) *protocol.Action {
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.SetVmConnected(true)
	}
	return nil
}

func updateVmDisconnected(state *AppState, msg protocol.Message) *protocol.Action {
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.SetVmConnected(false)
		s.Performance.SetMonitoringActive(false)
	}
	return nil
}

func updateVmConnectionFailed(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.VmEventErrorPayload](msg)
	if err != nil {
		return nil
	}
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.SetVmConnected(false)
		s.AddLog(logpipeline.LogEntry{Level: logpipeline.Warn, Source: logpipeline.SourceDaemon, Message: "vm service connection failed: " + payload.Reason})
	}
	return nil
}

func updatePerfMonitoringStarted(state *AppState, msg protocol.Message) *protocol.Action {
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.Performance.SetMonitoringActive(true)
	}
	return nil
}

func updateFrameTiming(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.FrameTimingPayload](msg)
	if err != nil {
		return nil
	}
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.Performance.AddFrame(payload)
	}
	return nil
}

func updateMemoryUsage(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.MemoryUsagePayload](msg)
	if err != nil {
		return nil
	}
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.Performance.AddMemory(payload)
	}
	return nil
}

func updateGcEvent(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.GcEventPayload](msg)
	if err != nil {
		return nil
	}
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.Performance.AddGC(payload)
	}
	return nil
}

func updateAppDebugPort(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.AppDebugPortPayload](msg)
	if err != nil {
		return nil
	}
	s, ok := state.Sessions.Get(msg.SessionID)
	if !ok {
		return nil
	}
	s.SetWsURI(payload.WsURI)
	return &protocol.Action{Type: protocol.ActionConnectVmService, SessionID: s.ID, Payload: protocol.ConnectVmServiceActionPayload{WsURI: payload.WsURI}}
}

func updateReloadCompleted(state *AppState, msg protocol.Message) *protocol.Action {
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.TransitionTo(session.Running)
	}
	return nil
}

func updateRestartCompleted(state *AppState, msg protocol.Message) *protocol.Action {
	s, ok := state.Sessions.Get(msg.SessionID)
	if !ok {
		return nil
	}
	s.TransitionTo(session.Running)
	// Hot restart creates a new isolate; the cached main-isolate id from
	// before the restart must not be reused (spec §4.5).
	return &protocol.Action{Type: protocol.ActionInvalidateIsolateCache, SessionID: s.ID}
}

func updateWidgetTreeFetched(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.WidgetTreeFetchedPayload](msg)
	if err != nil {
		return nil
	}
	state.DevTools.WidgetTree = payload.Tree
	state.DevTools.WidgetTreeLoading = false
	return nil
}

func updateWidgetTreeFetchFailed(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.FetchFailedPayload](msg)
	if err != nil {
		return nil
	}
	state.DevTools.WidgetTreeLoading = false
	state.DevTools.VMConnectionErr = payload.Reason
	return nil
}

func updateLayoutDataFetched(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.LayoutDataFetchedPayload](msg)
	if err != nil {
		return nil
	}
	state.DevTools.LayoutData = payload.Layout
	state.DevTools.LayoutDataLoading = false
	return nil
}

func updateLayoutDataFetchFailed(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.FetchFailedPayload](msg)
	if err != nil {
		return nil
	}
	state.DevTools.LayoutDataLoading = false
	state.DevTools.VMConnectionErr = payload.Reason
	return nil
}

func updateDevicesDiscovered(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.DevicesDiscoveredPayload](msg)
	if err != nil {
		return nil
	}
	state.Devices = payload.Devices
	return nil
}

func updateBootDevice(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.BootDevicePayload](msg)
	if err != nil {
		return nil
	}
	return &protocol.Action{Type: protocol.ActionBootDevice, Payload: protocol.BootDeviceActionPayload{DeviceID: payload.DeviceID}}
}

// updateFileChanged fans a debounced filesystem notification out to every
// running session (spec §4.8). If any session is already Reloading or
// Restarting, the event is coalesced into that in-flight reload and
// dropped rather than queued.
func updateFileChanged(state *AppState, msg protocol.Message) *protocol.Action {
	var running []protocol.SessionID
	for _, id := range state.Sessions.SessionIDsInOrder() {
		s, ok := state.Sessions.Get(id)
		if !ok {
			continue
		}
		switch s.Phase() {
		case session.Reloading, session.Restarting:
			return nil
		case session.Running:
			running = append(running, id)
		}
	}
	if len(running) == 0 {
		return nil
	}
	for _, id := range running {
		if s, ok := state.Sessions.Get(id); ok {
			s.TransitionTo(session.Reloading)
		}
	}
	if len(running) == 1 {
		return &protocol.Action{Type: protocol.ActionSpawnReload, SessionID: running[0]}
	}
	return &protocol.Action{Type: protocol.ActionReloadAllSessions, Payload: protocol.ReloadAllSessionsPayload{SessionIDs: running}}
}

func updateSpawnSession(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.SpawnSessionPayload](msg)
	if err != nil {
		return nil
	}
	s, createErr := state.Sessions.CreateSession(payload.DeviceID, payload.Name, payload.Config)
	if createErr != nil {
		return nil
	}
	state.Sessions.SelectByIndex(len(state.Sessions.SessionIDsInOrder()) - 1)
	return &protocol.Action{
		Type:      protocol.ActionSpawnSession,
		SessionID: s.ID,
		Payload:   protocol.SpawnSessionActionPayload{DeviceID: payload.DeviceID, Config: payload.Config},
	}
}

func updateAttachSession(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.AttachSessionPayload](msg)
	if err != nil {
		return nil
	}
	s, createErr := state.Sessions.CreateSession(payload.DeviceID, "", nil)
	if createErr != nil {
		return nil
	}
	s.SetAppID(payload.AppID)
	state.Sessions.SelectByIndex(len(state.Sessions.SessionIDsInOrder()) - 1)
	return nil
}

func updateCloseCurrentSession(state *AppState, _ protocol.Message) *protocol.Action {
	sel, ok := state.Sessions.Selected()
	if !ok {
		return nil
	}
	sel.TransitionTo(session.Stopping)
	return &protocol.Action{Type: protocol.ActionSpawnStop, SessionID: sel.ID}
}

func updateSwitchByIndex(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.SessionSwitchByIndexPayload](msg)
	if err != nil {
		return nil
	}
	state.Sessions.SelectByIndex(payload.Index)
	return nil
}

func updateSessionRenamed(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.SessionRenamedPayload](msg)
	if err != nil {
		return nil
	}
	if s, ok := state.Sessions.Get(msg.SessionID); ok {
		s.Name = payload.Name
	}
	return nil
}

func updateOpenDialog(state *AppState, msg protocol.Message) *protocol.Action {
	payload, err := protocol.GetPayload[protocol.OpenDialogPayload](msg)
	if err != nil {
		return nil
	}
	switch payload.Dialog {
	case protocol.DialogNewSession:
		state.Mode = ModeNewSessionDialog
	case protocol.DialogSettings:
		state.Mode = ModeSettings
	case protocol.DialogDevTools:
		state.Mode = ModeDevTools
	case protocol.DialogConfirmQuit:
		state.Mode = ModeConfirmQuit
	}
	return nil
}

func updateDialog(state *AppState, msg protocol.Message) *protocol.Action {
	switch msg.Type {
	case protocol.MsgDialogCancel:
		state.Mode = ModeNormal
	case protocol.MsgDialogConfirm:
		if state.Mode == ModeConfirmQuit {
			state.Quitting = true
			state.Mode = ModeNormal
			return &protocol.Action{Type: protocol.ActionSpawnStop}
		}
		state.Mode = ModeNormal
	}
	return nil
}
