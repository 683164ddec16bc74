package testhelpers

import (
	"context"
	"log/slog"
	"testing"

	"github.com/flutter-demon/fdemon/internal/engine"
	"github.com/flutter-demon/fdemon/internal/logging"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

// EngineBuilder assembles an *engine.Engine wired against fakes, starts
// it, and registers cleanup, so individual tests don't repeat the
// boilerplate.
type EngineBuilder struct {
	t          *testing.T
	config     engine.Config
	supervisor engine.Supervisor
	vmservice  engine.VMServiceClient
	devtools   engine.DevTools
	devices    engine.DeviceDiscoverer
	metrics    engine.MetricsCollector
	logger     *logging.Logger
	events     chan protocol.EngineEvent
}

// NewEngineBuilder seeds a builder with fakes for every collaborator.
func NewEngineBuilder(t *testing.T) *EngineBuilder {
	return &EngineBuilder{
		t:          t,
		config:     engine.DefaultConfig(),
		supervisor: NewFakeSupervisor(),
		vmservice:  NewFakeVMServiceClient(),
		devtools:   NewFakeDevTools(),
		devices:    NewFakeDeviceDiscoverer(),
		metrics:    NewFakeMetricsCollector(),
		logger:     logging.New(slog.LevelError, false),
		events:     make(chan protocol.EngineEvent, 64),
	}
}

// WithConfig overrides the engine configuration.
func (b *EngineBuilder) WithConfig(cfg engine.Config) *EngineBuilder {
	b.config = cfg
	return b
}

// WithSupervisor overrides the supervisor collaborator.
func (b *EngineBuilder) WithSupervisor(s engine.Supervisor) *EngineBuilder {
	b.supervisor = s
	return b
}

// WithVMServiceClient overrides the VM Service collaborator.
func (b *EngineBuilder) WithVMServiceClient(c engine.VMServiceClient) *EngineBuilder {
	b.vmservice = c
	return b
}

// WithDevTools overrides the DevTools collaborator.
func (b *EngineBuilder) WithDevTools(d engine.DevTools) *EngineBuilder {
	b.devtools = d
	return b
}

// WithDeviceDiscoverer overrides the device-discovery collaborator.
func (b *EngineBuilder) WithDeviceDiscoverer(d engine.DeviceDiscoverer) *EngineBuilder {
	b.devices = d
	return b
}

// WithMetrics overrides the metrics collector.
func (b *EngineBuilder) WithMetrics(m engine.MetricsCollector) *EngineBuilder {
	b.metrics = m
	return b
}

// Build constructs the engine and its dispatcher, starts the engine's
// loop, and stops it when the test completes.
func (b *EngineBuilder) Build() (*engine.Engine, <-chan protocol.EngineEvent) {
	b.t.Helper()

	eng := engine.New(b.config, b.events, nil, b.metrics, b.logger)
	dispatcher := engine.NewDispatcher(b.supervisor, b.vmservice, b.devtools, b.devices, eng.MessageChan())
	eng.SetDispatcher(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	b.t.Cleanup(cancel)
	eng.Start(ctx)
	b.t.Cleanup(func() {
		if err := eng.Stop(); err != nil {
			b.t.Errorf("failed to stop engine: %v", err)
		}
	})

	return eng, b.events
}
