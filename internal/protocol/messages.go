package protocol

import "time"

// MessageType enumerates every variant update() accepts. Nothing checks
// at compile time that update's switch covers every variant; update
// ignores a type it has no case for.
type MessageType string

const (
	MsgKey                            MessageType = "key"
	MsgTick                           MessageType = "tick"
	MsgDaemon                         MessageType = "daemon"
	MsgSessionExited                  MessageType = "session_exited"
	MsgVmServiceConnected             MessageType = "vm_service_connected"
	MsgVmServiceDisconnected          MessageType = "vm_service_disconnected"
	MsgVmServiceConnectionFailed      MessageType = "vm_service_connection_failed"
	MsgVmServicePerfMonitoringStarted MessageType = "vm_service_perf_monitoring_started"
	MsgVmServiceFrameTiming           MessageType = "vm_service_frame_timing"
	MsgVmServiceMemoryUsage           MessageType = "vm_service_memory_usage"
	MsgVmServiceGcEvent               MessageType = "vm_service_gc_event"
	MsgAppDebugPort                   MessageType = "app_debug_port"
	MsgSessionReloadCompleted         MessageType = "session_reload_completed"
	MsgSessionRestartCompleted        MessageType = "session_restart_completed"
	MsgWidgetTreeFetched              MessageType = "widget_tree_fetched"
	MsgWidgetTreeFetchFailed          MessageType = "widget_tree_fetch_failed"
	MsgLayoutDataFetched              MessageType = "layout_data_fetched"
	MsgLayoutDataFetchFailed          MessageType = "layout_data_fetch_failed"
	MsgRequestWidgetTree              MessageType = "request_widget_tree"
	MsgRequestLayoutData              MessageType = "request_layout_data"
	MsgRequestDevices                 MessageType = "request_devices"
	MsgDevicesDiscovered              MessageType = "devices_discovered"
	MsgBootDevice                     MessageType = "boot_device"
	MsgFileChanged                    MessageType = "file_changed"
	MsgSpawnSession                   MessageType = "spawn_session"
	MsgAttachSession                  MessageType = "attach_session"
	MsgCloseCurrentSession            MessageType = "close_current_session"
	MsgSessionSwitchNext              MessageType = "session_switch_next"
	MsgSessionSwitchPrevious          MessageType = "session_switch_previous"
	MsgSessionSwitchByIndex           MessageType = "session_switch_by_index"
	MsgSessionRenamed                 MessageType = "session_renamed"
	MsgOpenDialog                     MessageType = "open_dialog"
	MsgDialogInput                    MessageType = "dialog_input"
	MsgDialogConfirm                  MessageType = "dialog_confirm"
	MsgDialogCancel                   MessageType = "dialog_cancel"
	MsgAppStop                        MessageType = "app_stop"
)

// Message is the single, closed, cloneable input type update() consumes.
// Payload holds one of the *Payload structs below depending on Type, or nil
// for variants that carry no data (Tick, RequestDevices, AppStop, ...).
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	SessionID SessionID   `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewMessage constructs a message stamped with a fresh id and timestamp.
func NewMessage(t MessageType, sessionID SessionID, payload interface{}) Message {
	return Message{
		ID:        NewID(),
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// DaemonEventKind enumerates the flutter daemon's stdout event vocabulary
// recognized at the subprocess boundary (spec §6).
type DaemonEventKind string

const (
	DaemonConnected   DaemonEventKind = "daemon.connected"
	DaemonAppStart    DaemonEventKind = "app.start"
	DaemonAppStarted  DaemonEventKind = "app.started"
	DaemonAppLog      DaemonEventKind = "app.log"
	DaemonAppProgress DaemonEventKind = "app.progress"
	DaemonAppStop     DaemonEventKind = "app.stop"
	DaemonAppDebug    DaemonEventKind = "app.debugPort"
	DaemonResponse    DaemonEventKind = "response"
	DaemonUnknown     DaemonEventKind = "unknown"
)

// DaemonEventPayload carries one decoded flutter daemon event.
type DaemonEventPayload struct {
	Kind      DaemonEventKind
	AppID     string
	RequestID int
	WsURI     string
	Message   string
	Raw       []byte
}

// KeyPayload wraps an InputKey for MsgKey.
type KeyPayload struct {
	Key InputKey
}

// RawLogPayload carries one unparsed stdout/stderr line en route to the log
// pipeline.
type RawLogPayload struct {
	Line     string
	IsStderr bool
}

// SessionExitedPayload reports subprocess termination.
type SessionExitedPayload struct {
	Pid  int
	Code int
}

// VmEventErrorPayload carries a recoverable VM Service failure reason.
type VmEventErrorPayload struct {
	Reason string
}

// FrameTimingPayload is one frame's build+raster timing sample.
type FrameTimingPayload struct {
	Timestamp  time.Time
	BuildMs    float64
	RasterMs   float64
}

// MemoryUsagePayload is one memory poll sample.
type MemoryUsagePayload struct {
	Timestamp time.Time
	HeapUsage int64
	HeapCap   int64
	ExternalB int64
}

// GcEventPayload is one GC notification from the VM's GC stream.
type GcEventPayload struct {
	Timestamp time.Time
	Kind      string // "Scavenge", "MarkSweep", "MarkCompact"
}

// IsMajorGC reports whether this event is a major collection worth
// retaining in the performance ring buffer (spec §4.6).
func (g GcEventPayload) IsMajorGC() bool {
	return g.Kind == "MarkSweep" || g.Kind == "MarkCompact"
}

// AppDebugPortPayload reports the VM Service WebSocket URI assigned by the
// daemon once the debug port is known.
type AppDebugPortPayload struct {
	WsURI string
}

// WidgetTreeFetchedPayload carries a decoded diagnostics snapshot.
type WidgetTreeFetchedPayload struct {
	Tree interface{}
}

// LayoutDataFetchedPayload carries a decoded layout explorer snapshot.
type LayoutDataFetchedPayload struct {
	Layout interface{}
}

// FetchFailedPayload reports a DevTools fetch failure.
type FetchFailedPayload struct {
	Reason string
}

// DeviceDescriptor identifies one attached/bootable device or emulator.
type DeviceDescriptor struct {
	DeviceID   string
	Name       string
	Platform   string
	IsBootable bool
	IsEmulator bool
}

// DevicesDiscoveredPayload carries the result of a device enumeration.
type DevicesDiscoveredPayload struct {
	Devices []DeviceDescriptor
}

// BootDevicePayload names the bootable device to start.
type BootDevicePayload struct {
	DeviceID string
}

// LaunchConfig describes how a session's flutter process is invoked.
// Values arrive pre-parsed from .fdemon/launch.toml or .vscode/launch.json;
// this package never parses those files itself.
type LaunchConfig struct {
	Name        string
	Mode        string // "debug", "profile", "release"
	Flavor      string
	DartDefines map[string]string
	Args        []string
}

// SpawnSessionPayload requests a new session on a device.
type SpawnSessionPayload struct {
	DeviceID string
	Config   *LaunchConfig
	Name     string
}

// AttachSessionPayload requests attaching to an already-running app.
type AttachSessionPayload struct {
	DeviceID string
	AppID    string
}

// SessionSwitchByIndexPayload selects a tab by its zero-based index.
type SessionSwitchByIndexPayload struct {
	Index int
}

// SessionRenamedPayload renames a session's display name.
type SessionRenamedPayload struct {
	Name string
}

// FileChangedPayload reports one debounced filesystem change.
type FileChangedPayload struct {
	Path string
}

// DialogKind enumerates the small sub-language of modal interactions.
type DialogKind string

const (
	DialogNewSession DialogKind = "new_session"
	DialogSettings   DialogKind = "settings"
	DialogDevTools   DialogKind = "devtools"
	DialogConfirmQuit DialogKind = "confirm_quit"
)

// OpenDialogPayload opens a modal.
type OpenDialogPayload struct {
	Dialog DialogKind
}

// DialogInputPayload carries one character/field update for the active
// dialog.
type DialogInputPayload struct {
	Field string
	Value string
}
