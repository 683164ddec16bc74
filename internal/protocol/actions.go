package protocol

// ActionType enumerates the pure side-effect requests update() may return.
// Every action carries the SessionID it addresses (empty for app-global
// actions like DiscoverDevices) plus whatever data it needs; runtime-only
// handles are filled in by the hydration step after update returns.
type ActionType string

const (
	ActionSpawnSession           ActionType = "spawn_session"
	ActionConnectVmService       ActionType = "connect_vm_service"
	ActionDisconnectVmService    ActionType = "disconnect_vm_service"
	ActionSpawnReload            ActionType = "spawn_reload"
	ActionSpawnRestart           ActionType = "spawn_restart"
	ActionSpawnStop              ActionType = "spawn_stop"
	ActionReloadAllSessions      ActionType = "reload_all_sessions"
	ActionFetchWidgetTree        ActionType = "fetch_widget_tree"
	ActionFetchLayoutData        ActionType = "fetch_layout_data"
	ActionToggleDebugOverlay     ActionType = "toggle_debug_overlay"
	ActionDiscoverDevices        ActionType = "discover_devices"
	ActionDiscoverBootableDevices ActionType = "discover_bootable_devices"
	ActionBootDevice             ActionType = "boot_device"
	ActionOpenBrowserDevTools    ActionType = "open_browser_devtools"
	ActionDisposeDevToolsGroups  ActionType = "dispose_devtools_groups"
	ActionInvalidateIsolateCache ActionType = "invalidate_isolate_cache"
)

// Action is the pure request for an effect produced by update. The
// dispatcher hydrates it with live handles before handing it to a worker.
type Action struct {
	Type      ActionType
	SessionID SessionID
	Payload   interface{}
}

// SpawnSessionActionPayload carries everything the supervisor needs to launch a
// flutter process.
type SpawnSessionActionPayload struct {
	DeviceID string
	Config   *LaunchConfig
}

// ToggleDebugOverlayPayload names which service-extension overlay to flip.
type ToggleDebugOverlayPayload struct {
	Extension string
	Enabled   bool
}

// OpenBrowserDevToolsPayload carries the URL and preferred browser binary.
type OpenBrowserDevToolsPayload struct {
	URL     string
	Browser string
}

// BootDeviceActionPayload names the device to boot.
type BootDeviceActionPayload struct {
	DeviceID string
}

// ReloadAllSessionsPayload names every session a coalesced file-change
// notification should hot-reload.
type ReloadAllSessionsPayload struct {
	SessionIDs []SessionID
}

// ConnectVmServiceActionPayload carries the ws:// URI the daemon reported
// for this session. Unlike runtime handles, the URI is domain state
// decided by update, not something the dispatcher can supply on its own,
// so it must ride in the action rather than be hydrated.
type ConnectVmServiceActionPayload struct {
	WsURI string
}
