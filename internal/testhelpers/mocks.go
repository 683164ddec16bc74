package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// FakeSupervisor is a scriptable stand-in for engine.Supervisor.
type FakeSupervisor struct {
	mu sync.Mutex

	SpawnError   error
	ReloadError  error
	RestartError error
	StopError    error

	SpawnCalls   []SpawnCall
	ReloadCalls  []protocol.SessionID
	RestartCalls []protocol.SessionID
	StopCalls    []protocol.SessionID
}

// SpawnCall records one Spawn invocation.
type SpawnCall struct {
	SessionID protocol.SessionID
	DeviceID  string
	Config    *protocol.LaunchConfig
}

func NewFakeSupervisor() *FakeSupervisor { return &FakeSupervisor{} }

func (f *FakeSupervisor) Spawn(ctx context.Context, sessionID protocol.SessionID, deviceID string, cfg *protocol.LaunchConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SpawnCalls = append(f.SpawnCalls, SpawnCall{SessionID: sessionID, DeviceID: deviceID, Config: cfg})
	return f.SpawnError
}

func (f *FakeSupervisor) Reload(sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReloadCalls = append(f.ReloadCalls, sessionID)
	return f.ReloadError
}

func (f *FakeSupervisor) Restart(sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RestartCalls = append(f.RestartCalls, sessionID)
	return f.RestartError
}

func (f *FakeSupervisor) Stop(sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StopCalls = append(f.StopCalls, sessionID)
	return f.StopError
}

// FakeVMServiceClient is a scriptable stand-in for engine.VMServiceClient.
type FakeVMServiceClient struct {
	mu sync.Mutex

	ConnectError    error
	DisconnectError error

	ConnectCalls                []protocol.SessionID
	ConnectWsURIs               []string
	DisconnectCalls             []protocol.SessionID
	InvalidateIsolateCacheCalls []protocol.SessionID
}

func NewFakeVMServiceClient() *FakeVMServiceClient { return &FakeVMServiceClient{} }

func (f *FakeVMServiceClient) Connect(ctx context.Context, sessionID protocol.SessionID, wsURI string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ConnectCalls = append(f.ConnectCalls, sessionID)
	f.ConnectWsURIs = append(f.ConnectWsURIs, wsURI)
	return f.ConnectError
}

func (f *FakeVMServiceClient) Disconnect(sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DisconnectCalls = append(f.DisconnectCalls, sessionID)
	return f.DisconnectError
}

func (f *FakeVMServiceClient) InvalidateIsolateCache(sessionID protocol.SessionID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.InvalidateIsolateCacheCalls = append(f.InvalidateIsolateCacheCalls, sessionID)
}

// FakeDevTools is a scriptable stand-in for engine.DevTools.
type FakeDevTools struct {
	mu sync.Mutex

	FetchWidgetTreeError error
	FetchLayoutDataError error
	ToggleOverlayError   error
	OpenBrowserError     error
	DisposeGroupsError   error

	FetchWidgetTreeCalls []protocol.SessionID
	FetchLayoutDataCalls []protocol.SessionID
	DisposeGroupsCalls   []protocol.SessionID
}

func NewFakeDevTools() *FakeDevTools { return &FakeDevTools{} }

func (f *FakeDevTools) FetchWidgetTree(ctx context.Context, sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchWidgetTreeCalls = append(f.FetchWidgetTreeCalls, sessionID)
	return f.FetchWidgetTreeError
}

func (f *FakeDevTools) FetchLayoutData(ctx context.Context, sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchLayoutDataCalls = append(f.FetchLayoutDataCalls, sessionID)
	return f.FetchLayoutDataError
}

func (f *FakeDevTools) ToggleOverlay(ctx context.Context, sessionID protocol.SessionID, extension string, enabled bool) error {
	return f.ToggleOverlayError
}

func (f *FakeDevTools) OpenBrowser(ctx context.Context, url, browser string) error {
	return f.OpenBrowserError
}

func (f *FakeDevTools) DisposeGroups(ctx context.Context, sessionID protocol.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DisposeGroupsCalls = append(f.DisposeGroupsCalls, sessionID)
	return f.DisposeGroupsError
}

// FakeDeviceDiscoverer is a scriptable stand-in for engine.DeviceDiscoverer.
type FakeDeviceDiscoverer struct {
	mu sync.Mutex

	Devices      []protocol.DeviceDescriptor
	DiscoverError error
	BootError    error

	BootCalls []string
}

func NewFakeDeviceDiscoverer() *FakeDeviceDiscoverer { return &FakeDeviceDiscoverer{} }

func (f *FakeDeviceDiscoverer) Discover(ctx context.Context) ([]protocol.DeviceDescriptor, error) {
	return f.Devices, f.DiscoverError
}

func (f *FakeDeviceDiscoverer) Boot(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BootCalls = append(f.BootCalls, deviceID)
	return f.BootError
}

// FakeMetricsCollector is a scriptable stand-in for engine.MetricsCollector.
type FakeMetricsCollector struct {
	mu sync.Mutex

	MessageCalls     []protocol.MessageType
	DurationCalls    []DurationCall
	ErrorCalls       []ErrorCall
	SessionCountCalls []int
}

// DurationCall records one RecordMessageDuration invocation.
type DurationCall struct {
	MessageType protocol.MessageType
	Duration    time.Duration
}

// ErrorCall records one RecordError invocation.
type ErrorCall struct {
	Operation string
	Error     error
}

func NewFakeMetricsCollector() *FakeMetricsCollector { return &FakeMetricsCollector{} }

func (f *FakeMetricsCollector) RecordMessage(t protocol.MessageType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MessageCalls = append(f.MessageCalls, t)
}

func (f *FakeMetricsCollector) RecordMessageDuration(t protocol.MessageType, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DurationCalls = append(f.DurationCalls, DurationCall{MessageType: t, Duration: d})
}

func (f *FakeMetricsCollector) RecordError(operation string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ErrorCalls = append(f.ErrorCalls, ErrorCall{Operation: operation, Error: err})
}

func (f *FakeMetricsCollector) RecordSessionCount(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SessionCountCalls = append(f.SessionCountCalls, count)
}
