package testhelpers_test

import (
	"testing"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
	"github.com/flutter-demon/fdemon/internal/testhelpers"
)

// TestExampleSpawnSessionEndToEnd demonstrates wiring an engine against
// fakes and driving it through a spawn.
func TestExampleSpawnSessionEndToEnd(t *testing.T) {
	supervisor := testhelpers.NewFakeSupervisor()

	eng, events := testhelpers.NewEngineBuilder(t).
		WithSupervisor(supervisor).
		Build()

	eng.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{
		DeviceID: "pixel-7",
		Name:     "main",
		Config:   &protocol.LaunchConfig{Mode: "debug"},
	}))

	event := testhelpers.WaitForEvent(events, protocol.EventSessionCreated, 2*time.Second)
	if event == nil {
		t.Fatal("expected a session_created event")
	}

	if len(supervisor.SpawnCalls) != 1 {
		t.Fatalf("expected 1 spawn call, got %d", len(supervisor.SpawnCalls))
	}
	if supervisor.SpawnCalls[0].DeviceID != "pixel-7" {
		t.Errorf("expected device pixel-7, got %s", supervisor.SpawnCalls[0].DeviceID)
	}
}

// TestExampleSpawnFailureReportsExited demonstrates scripting a
// collaborator failure and observing the resulting message.
func TestExampleSpawnFailureReportsExited(t *testing.T) {
	supervisor := testhelpers.NewFakeSupervisor()
	supervisor.SpawnError = assertErr

	eng, _ := testhelpers.NewEngineBuilder(t).
		WithSupervisor(supervisor).
		Build()

	eng.Send(protocol.NewMessage(protocol.MsgSpawnSession, "", protocol.SpawnSessionPayload{
		DeviceID: "pixel-7",
		Config:   &protocol.LaunchConfig{},
	}))

	time.Sleep(100 * time.Millisecond)
	if len(supervisor.SpawnCalls) != 1 {
		t.Fatalf("expected 1 spawn call, got %d", len(supervisor.SpawnCalls))
	}
	sel, ok := eng.State().Sessions.Selected()
	if !ok {
		t.Fatal("expected the spawned session to be selected")
	}
	if sel.Phase() != session.Stopped {
		t.Errorf("expected Stopped after the reported exit, got %s", sel.Phase())
	}
}

var assertErr = &exampleError{"device unavailable"}

type exampleError struct{ msg string }

func (e *exampleError) Error() string { return e.msg }

// TestExampleBuildSession demonstrates the session builder options.
func TestExampleBuildSession(t *testing.T) {
	s := testhelpers.TestSession(
		testhelpers.WithPhase(session.Running),
		testhelpers.WithAppID("app-1"),
	)

	if s.Phase() != session.Running {
		t.Errorf("expected Running, got %s", s.Phase())
	}
	if s.AppID != "app-1" {
		t.Errorf("expected app-1, got %s", s.AppID)
	}
}
