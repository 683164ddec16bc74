// Package testhelpers provides builders, fakes, and assertion helpers for
// exercising the engine, session, and collaborator packages without a real
// flutter/dart toolchain.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/flutter-demon/fdemon/internal/session"
)

// TestSession builds a session with sensible defaults, customizable via
// options.
func TestSession(opts ...SessionOption) *session.Session {
	s := session.New(protocol.NewSessionID(), "test-device", "test-session", &protocol.LaunchConfig{Mode: "debug"})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionOption customizes a TestSession.
type SessionOption func(*session.Session)

// WithPhase transitions the session to phase (illegal transitions from
// Starting, the session's initial phase, are silently ignored, matching
// production semantics).
func WithPhase(phase session.Phase) SessionOption {
	return func(s *session.Session) { s.TransitionTo(phase) }
}

// WithAppID sets the session's daemon-assigned app id.
func WithAppID(appID string) SessionOption {
	return func(s *session.Session) { s.SetAppID(appID) }
}

// TestSessionOnDevice builds a session pinned to a specific device id,
// useful for exercising the manager's device-duplicate guard.
func TestSessionOnDevice(deviceID string) *session.Session {
	return session.New(protocol.NewSessionID(), deviceID, "test-session", &protocol.LaunchConfig{})
}

// TestContext creates a context with a generous deadline that is
// cancelled when the test completes.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}

// DrainMessages drains whatever is waiting on ch within timeout.
func DrainMessages(ch <-chan protocol.Message, timeout time.Duration) []protocol.Message {
	var collected []protocol.Message
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-ch:
			collected = append(collected, msg)
		case <-deadline:
			return collected
		}
	}
}

// WaitForEvent waits for the first event of the given type on ch, or
// returns nil if timeout elapses first.
func WaitForEvent(ch <-chan protocol.EngineEvent, eventType protocol.EventType, timeout time.Duration) *protocol.EngineEvent {
	deadline := time.After(timeout)
	for {
		select {
		case event := <-ch:
			if event.Type == eventType {
				return &event
			}
		case <-deadline:
			return nil
		}
	}
}
