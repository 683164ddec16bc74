package session

import (
	"testing"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSessionAssignsTabOrderAndSelection(t *testing.T) {
	m := NewManager()

	s1, err := m.CreateSession("device-1", "one", nil)
	require.NoError(t, err)
	s2, err := m.CreateSession("device-2", "two", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, []protocol.SessionID{s1.ID, s2.ID}, m.SessionIDsInOrder())

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, s1.ID, sel.ID)
}

func TestDeviceDuplicateGuardRejectsActiveSession(t *testing.T) {
	m := NewManager()
	_, err := m.CreateSession("device-1", "one", nil)
	require.NoError(t, err)

	_, err = m.CreateSession("device-1", "two", nil)
	assert.Error(t, err)
}

func TestDeviceDuplicateGuardAllowsReuseAfterStop(t *testing.T) {
	m := NewManager()
	s1, err := m.CreateSession("device-1", "one", nil)
	require.NoError(t, err)
	require.True(t, s1.TransitionTo(Running))
	require.True(t, s1.MarkStopped())

	_, err = m.CreateSession("device-1", "two", nil)
	assert.NoError(t, err)
}

func TestCapacityEvictionRemovesOldestStopped(t *testing.T) {
	m := NewManager()
	var ids []protocol.SessionID
	for i := 0; i < MaxSessions; i++ {
		s, err := m.CreateSession(deviceName(i), "s", nil)
		require.NoError(t, err)
		require.True(t, s.TransitionTo(Running))
		require.True(t, s.MarkStopped())
		ids = append(ids, s.ID)
	}
	require.Equal(t, MaxSessions, m.Count())

	tenth, err := m.CreateSession("device-10", "tenth", nil)
	require.NoError(t, err)

	assert.Equal(t, MaxSessions, m.Count())
	_, stillThere := m.Get(ids[0])
	assert.False(t, stillThere, "oldest stopped session should have been evicted")

	got, ok := m.Get(tenth.ID)
	require.True(t, ok)
	assert.Equal(t, tenth.ID, got.ID)
}

func TestCapacityFailsWhenAllActive(t *testing.T) {
	m := NewManager()
	for i := 0; i < MaxSessions; i++ {
		_, err := m.CreateSession(deviceName(i), "s", nil)
		require.NoError(t, err)
	}

	_, err := m.CreateSession("device-overflow", "overflow", nil)
	assert.Error(t, err)
}

func TestRemoveSessionClampsSelection(t *testing.T) {
	m := NewManager()
	s1, _ := m.CreateSession("device-1", "one", nil)
	_, _ = m.CreateSession("device-2", "two", nil)
	s3, _ := m.CreateSession("device-3", "three", nil)

	m.SelectByIndex(2)
	m.RemoveSession(s3.ID)
	assert.Equal(t, 1, m.SelectedIndex())

	m.RemoveSession(s1.ID)
	assert.Equal(t, 0, m.SelectedIndex())
}

func TestSelectNextPreviousWrap(t *testing.T) {
	m := NewManager()
	_, _ = m.CreateSession("device-1", "one", nil)
	_, _ = m.CreateSession("device-2", "two", nil)

	assert.True(t, m.SelectNext())
	assert.Equal(t, 1, m.SelectedIndex())
	assert.True(t, m.SelectNext())
	assert.Equal(t, 0, m.SelectedIndex())

	assert.True(t, m.SelectPrevious())
	assert.Equal(t, 1, m.SelectedIndex())
}

func deviceName(i int) string {
	return "device-" + string(rune('a'+i))
}
