package engine

import (
	"github.com/flutter-demon/fdemon/internal/config"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
)

// UIMode is the app-global modal state (spec §3 AppState).
type UIMode int

const (
	ModeNormal UIMode = iota
	ModeNewSessionDialog
	ModeSettings
	ModeDevTools
	ModeConfirmQuit
)

// StartupPhase tracks the coarse boot sequence so the TUI can render a
// splash/loading state before the first session exists.
type StartupPhase int

const (
	StartupDiscoveringTools StartupPhase = iota
	StartupReady
)

// DevToolsViewState holds the global (not per-session) DevTools panel
// state: the active panel, last-fetched payloads, and the VM connection
// error surfaced to the user.
type DevToolsViewState struct {
	ActivePanel      string
	WidgetTree       interface{}
	LayoutData       interface{}
	OverlaysEnabled  map[string]bool
	VMConnectionErr  string
	WidgetTreeLoading bool
	LayoutDataLoading bool
}

// ToolAvailability snapshots whether the external tools the orchestrator
// shells out to were found on PATH at startup.
type ToolAvailability struct {
	FlutterFound bool
	FlutterPath  string
	DartFound    bool
	DartPath     string
}

// Settings is the pre-parsed project launch configuration the engine
// never loads itself (spec §1 non-goals): one or more named launch
// configs plus the auto-restore / minimal-mode preferences resolved by
// internal/config.
type Settings struct {
	LaunchConfigs []protocol.LaunchConfig
	AutoRestore   bool
	MinimalMode   bool
}

// AppState is the top-level state the engine exclusively owns. It is
// mutated only from within Update (spec §3: "No state is mutated outside
// the update invocation").
type AppState struct {
	Sessions *session.Manager

	Mode     UIMode
	DevTools DevToolsViewState
	Tools    ToolAvailability
	Settings Settings
	Config   *config.Config

	// Devices holds the most recent device enumeration, refreshed by the
	// new-session dialog's MsgRequestDevices round trip. The renderer reads
	// it directly between ticks, same as Sessions.
	Devices []protocol.DeviceDescriptor

	Startup StartupPhase
	Quitting bool
}

// NewAppState constructs a fresh, empty application state.
func NewAppState() *AppState {
	return &AppState{
		Sessions: session.NewManager(),
		Mode:     ModeNormal,
		DevTools: DevToolsViewState{OverlaysEnabled: make(map[string]bool)},
		Startup:  StartupDiscoveringTools,
	}
}
