package session

import (
	"testing"

	"github.com/flutter-demon/fdemon/internal/logpipeline"
	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return New(protocol.NewSessionID(), "device-1", "main", nil)
}

func TestNewSessionStartsInStarting(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, Starting, s.Phase())
}

func TestIllegalTransitionIsIgnored(t *testing.T) {
	s := newTestSession()
	ok := s.TransitionTo(Reloading)
	assert.False(t, ok)
	assert.Equal(t, Starting, s.Phase())
}

func TestLegalTransitionSequence(t *testing.T) {
	s := newTestSession()
	require.True(t, s.TransitionTo(Running))
	require.True(t, s.TransitionTo(Reloading))
	require.True(t, s.TransitionTo(Running))
	require.True(t, s.TransitionTo(Stopping))
	require.True(t, s.TransitionTo(Stopped))
	assert.Equal(t, Stopped, s.Phase())
}

func TestMarkStoppedPreservesAppID(t *testing.T) {
	s := newTestSession()
	s.SetAppID("app-42")
	require.True(t, s.TransitionTo(Running))
	require.True(t, s.MarkStopped())
	assert.Equal(t, "app-42", s.AppID)
}

func TestFlushBatchMovesEntriesIntoRingBuffer(t *testing.T) {
	s := newTestSession()
	s.AddLog(logpipeline.LogEntry{Message: "one"})
	s.AddLog(logpipeline.LogEntry{Message: "two"})
	assert.Equal(t, 2, s.PendingBatchLen())

	flushed := s.FlushBatch()
	assert.Len(t, flushed, 2)
	assert.Equal(t, 0, s.PendingBatchLen())
	assert.Equal(t, 2, s.Logs.Len())
}

func TestFlushBatchEmptyReturnsNil(t *testing.T) {
	s := newTestSession()
	assert.Nil(t, s.FlushBatch())
}

func TestBatchReadyThreshold(t *testing.T) {
	s := newTestSession()
	for i := 0; i < MaxPendingBatch-1; i++ {
		s.AddLog(logpipeline.LogEntry{})
	}
	assert.False(t, s.BatchReady())
	s.AddLog(logpipeline.LogEntry{})
	assert.True(t, s.BatchReady())
}

func TestFlushExceptionOnExitQueuesPartialBlock(t *testing.T) {
	s := newTestSession()
	s.Pipeline.Feed("══╡ EXCEPTION CAUGHT BY WIDGETS LIBRARY ╞═══", false)
	s.Pipeline.Feed("partial description", false)

	s.FlushExceptionOnExit()
	assert.Equal(t, 1, s.PendingBatchLen())
}

func TestSnapshotReflectsPhaseAndAppID(t *testing.T) {
	s := newTestSession()
	s.SetAppID("app-1")
	require.True(t, s.TransitionTo(Running))

	snap := s.Snapshot()
	assert.Equal(t, "Running", snap.Phase)
	assert.Equal(t, "app-1", snap.AppID)
	assert.Equal(t, s.ID, snap.ID)
}
