package engine

import (
	"context"
	"testing"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineProcessesSpawnSessionEndToEnd(t *testing.T) {
	events := make(chan protocol.EngineEvent, 16)
	e := New(DefaultConfig(), events, nil, nil, nil)
	e.Start(context.Background())
	defer e.Stop()

	e.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{DeviceID: "device-1", Name: "main"}))

	require.Eventually(t, func() bool {
		return e.State().Sessions.Count() == 1
	}, time.Second, 5*time.Millisecond)

	select {
	case evt := <-events:
		assert.Equal(t, protocol.EventSessionCreated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a SessionCreated event")
	}
}

func TestEngineStopDrainsWithinTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ShutdownTimeout = time.Second
	e := New(cfg, nil, nil, nil, nil)
	e.Start(context.Background())

	assert.NoError(t, e.Stop())
}

func TestEngineFlushesSubThresholdBatchOnTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlushTickInterval = 10 * time.Millisecond
	events := make(chan protocol.EngineEvent, 16)
	e := New(cfg, events, nil, nil, nil)
	e.Start(context.Background())
	defer e.Stop()

	e.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{DeviceID: "device-1", Name: "main"}))
	require.Eventually(t, func() bool {
		return e.State().Sessions.Count() == 1
	}, time.Second, 5*time.Millisecond)

	sel, ok := e.State().Sessions.Selected()
	require.True(t, ok)

	// Well under session.MaxPendingBatch: BatchReady would never fire on
	// its own, only the flush-tick should surface this.
	e.Send(protocol.NewMessage(protocol.MsgDaemon, sel.ID, protocol.DaemonEventPayload{Kind: protocol.DaemonAppLog, Message: "L1"}))
	e.Send(protocol.NewMessage(protocol.MsgDaemon, sel.ID, protocol.DaemonEventPayload{Kind: protocol.DaemonAppLog, Message: "L2"}))
	e.Send(protocol.NewMessage(protocol.MsgDaemon, sel.ID, protocol.DaemonEventPayload{Kind: protocol.DaemonAppLog, Message: "L3"}))

	for {
		select {
		case evt := <-events:
			if evt.Type != protocol.EventLogBatch {
				continue
			}
			payload, ok := evt.Payload.(protocol.LogBatchPayload)
			require.True(t, ok)
			assert.Len(t, payload.Entries, 3)
			return
		case <-time.After(time.Second):
			t.Fatal("expected a LogBatch event from the flush-tick")
		}
	}
}

func TestEngineHealthReportsSessionCount(t *testing.T) {
	e := New(DefaultConfig(), nil, nil, nil, nil)
	e.Start(context.Background())
	defer e.Stop()

	e.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{DeviceID: "device-1", Name: "main"}))
	require.Eventually(t, func() bool {
		return e.State().Sessions.Count() == 1
	}, time.Second, 5*time.Millisecond)

	health := e.Health()
	assert.Equal(t, 1, health["session_count"])
}
