package engine

import (
	"context"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/ratelimit"
)

// devToolsRatePerSecond/devToolsBurst bound how often one session may
// issue a DevTools fetch or overlay toggle; a runaway widget inspector
// poll loop must not be able to saturate the dispatcher's worker pool or
// hammer the VM Service connection.
const (
	devToolsRatePerSecond = 5.0
	devToolsBurst         = 10
)

// Supervisor spawns and signals flutter run --machine subprocesses
// (internal/supervisor).
type Supervisor interface {
	Spawn(ctx context.Context, sessionID protocol.SessionID, deviceID string, cfg *protocol.LaunchConfig) error
	Reload(sessionID protocol.SessionID) error
	Restart(sessionID protocol.SessionID) error
	Stop(sessionID protocol.SessionID) error
}

// VMServiceClient manages per-session Dart VM Service WebSocket
// connections (internal/vmservice).
type VMServiceClient interface {
	Connect(ctx context.Context, sessionID protocol.SessionID, wsURI string) error
	Disconnect(sessionID protocol.SessionID) error
	InvalidateIsolateCache(sessionID protocol.SessionID)
}

// DevTools fetches widget/layout diagnostics and flips service-extension
// overlays (internal/devtools).
type DevTools interface {
	FetchWidgetTree(ctx context.Context, sessionID protocol.SessionID) error
	FetchLayoutData(ctx context.Context, sessionID protocol.SessionID) error
	ToggleOverlay(ctx context.Context, sessionID protocol.SessionID, extension string, enabled bool) error
	OpenBrowser(ctx context.Context, url, browser string) error
	DisposeGroups(ctx context.Context, sessionID protocol.SessionID) error
}

// DeviceDiscoverer enumerates attached and bootable devices
// (internal/supervisor, which shells out to `flutter devices`).
type DeviceDiscoverer interface {
	Discover(ctx context.Context) ([]protocol.DeviceDescriptor, error)
	Boot(ctx context.Context, deviceID string) error
}

// Dispatcher hydrates a pure Action with live collaborator handles and
// executes it, reporting results back onto the engine's message channel
// (spec §3: "runtime-only handles ... are filled in by a hydration step
// after update returns").
type Dispatcher struct {
	supervisor Supervisor
	vmservice  VMServiceClient
	devtools   DevTools
	devices    DeviceDiscoverer
	messages   chan protocol.Message

	devToolsLimiter *ratelimit.Limiter
}

// NewDispatcher wires a dispatcher against its collaborators and the
// shared message channel workers report back into.
func NewDispatcher(supervisor Supervisor, vmservice VMServiceClient, devtools DevTools, devices DeviceDiscoverer, messages chan protocol.Message) *Dispatcher {
	return &Dispatcher{
		supervisor:      supervisor,
		vmservice:       vmservice,
		devtools:        devtools,
		devices:         devices,
		messages:        messages,
		devToolsLimiter: ratelimit.New(devToolsRatePerSecond, devToolsBurst, ratelimit.DefaultMaxSessions),
	}
}

// Dispatch executes one action asynchronously, so a worker failure never
// crashes the single-threaded update loop. Nothing is propagated to the
// caller. A failed spawn is reported back as a SessionExited message with
// code -1, and failed widget-tree and layout fetches as their FetchFailed
// messages; other worker errors are discarded.
func (d *Dispatcher) Dispatch(ctx context.Context, action protocol.Action) {
	go d.execute(ctx, action)
}

func (d *Dispatcher) execute(ctx context.Context, action protocol.Action) {
	switch action.Type {
	case protocol.ActionSpawnSession:
		payload, err := protocol.GetActionPayload[protocol.SpawnSessionActionPayload](action)
		if err != nil || d.supervisor == nil {
			return
		}
		if err := d.supervisor.Spawn(ctx, action.SessionID, payload.DeviceID, payload.Config); err != nil {
			d.report(action.SessionID, protocol.MsgSessionExited, protocol.SessionExitedPayload{Code: -1})
		}
	case protocol.ActionConnectVmService:
		if d.vmservice == nil {
			return
		}
		payload, err := protocol.GetActionPayload[protocol.ConnectVmServiceActionPayload](action)
		if err != nil {
			return
		}
		_ = d.vmservice.Connect(ctx, action.SessionID, payload.WsURI)
	case protocol.ActionDisconnectVmService:
		d.devToolsLimiter.Forget(action.SessionID)
		if d.vmservice == nil {
			return
		}
		_ = d.vmservice.Disconnect(action.SessionID)
	case protocol.ActionSpawnReload:
		if d.supervisor != nil {
			if err := d.supervisor.Reload(action.SessionID); err == nil {
				d.report(action.SessionID, protocol.MsgSessionReloadCompleted, nil)
			}
		}
	case protocol.ActionSpawnRestart:
		if d.supervisor != nil {
			if err := d.supervisor.Restart(action.SessionID); err == nil {
				d.report(action.SessionID, protocol.MsgSessionRestartCompleted, nil)
			}
		}
	case protocol.ActionSpawnStop:
		if d.supervisor != nil {
			_ = d.supervisor.Stop(action.SessionID)
		}
	case protocol.ActionReloadAllSessions:
		payload, err := protocol.GetActionPayload[protocol.ReloadAllSessionsPayload](action)
		if err != nil || d.supervisor == nil {
			return
		}
		for _, sessionID := range payload.SessionIDs {
			if err := d.supervisor.Reload(sessionID); err == nil {
				d.report(sessionID, protocol.MsgSessionReloadCompleted, nil)
			}
		}
	case protocol.ActionFetchWidgetTree:
		if d.devtools == nil || !d.devToolsLimiter.Allow(action.SessionID) {
			return
		}
		if err := d.devtools.FetchWidgetTree(ctx, action.SessionID); err != nil {
			d.report(action.SessionID, protocol.MsgWidgetTreeFetchFailed, protocol.FetchFailedPayload{Reason: err.Error()})
		}
	case protocol.ActionFetchLayoutData:
		if d.devtools == nil || !d.devToolsLimiter.Allow(action.SessionID) {
			return
		}
		if err := d.devtools.FetchLayoutData(ctx, action.SessionID); err != nil {
			d.report(action.SessionID, protocol.MsgLayoutDataFetchFailed, protocol.FetchFailedPayload{Reason: err.Error()})
		}
	case protocol.ActionToggleDebugOverlay:
		payload, err := protocol.GetActionPayload[protocol.ToggleDebugOverlayPayload](action)
		if err == nil && d.devtools != nil && d.devToolsLimiter.Allow(action.SessionID) {
			_ = d.devtools.ToggleOverlay(ctx, action.SessionID, payload.Extension, payload.Enabled)
		}
	case protocol.ActionDiscoverDevices, protocol.ActionDiscoverBootableDevices:
		if d.devices == nil {
			return
		}
		devices, err := d.devices.Discover(ctx)
		if err == nil {
			d.report("", protocol.MsgDevicesDiscovered, protocol.DevicesDiscoveredPayload{Devices: devices})
		}
	case protocol.ActionBootDevice:
		payload, err := protocol.GetActionPayload[protocol.BootDeviceActionPayload](action)
		if err == nil && d.devices != nil {
			_ = d.devices.Boot(ctx, payload.DeviceID)
		}
	case protocol.ActionOpenBrowserDevTools:
		payload, err := protocol.GetActionPayload[protocol.OpenBrowserDevToolsPayload](action)
		if err == nil && d.devtools != nil {
			_ = d.devtools.OpenBrowser(ctx, payload.URL, payload.Browser)
		}
	case protocol.ActionDisposeDevToolsGroups:
		if d.devtools != nil {
			_ = d.devtools.DisposeGroups(ctx, action.SessionID)
		}
	case protocol.ActionInvalidateIsolateCache:
		if d.vmservice != nil {
			d.vmservice.InvalidateIsolateCache(action.SessionID)
		}
	}
}

func (d *Dispatcher) report(sessionID protocol.SessionID, t protocol.MessageType, payload interface{}) {
	select {
	case d.messages <- protocol.NewMessage(t, sessionID, payload):
	default:
	}
}
