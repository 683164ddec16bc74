package session

import (
	"fmt"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// MaxSessions bounds the manager's live session count (spec §3).
const MaxSessions = 9

// Manager owns the ordered set of sessions, the tab-selection cursor, and
// the device-duplicate / capacity-eviction policies (spec §4.3).
type Manager struct {
	sessions      map[protocol.SessionID]*Session
	order         []protocol.SessionID
	selectedIndex int
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{
		sessions:      make(map[protocol.SessionID]*Session),
		selectedIndex: 0,
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int { return len(m.order) }

// Get looks up a session by id.
func (m *Manager) Get(id protocol.SessionID) (*Session, bool) {
	s, ok := m.sessions[id]
	return s, ok
}

// Selected returns the currently selected session, if any.
func (m *Manager) Selected() (*Session, bool) {
	if len(m.order) == 0 {
		return nil, false
	}
	return m.sessions[m.order[m.selectedIndex]], true
}

// SelectedIndex returns the current selection cursor.
func (m *Manager) SelectedIndex() int { return m.selectedIndex }

// SessionIDsInOrder returns the tab order.
func (m *Manager) SessionIDsInOrder() []protocol.SessionID {
	out := make([]protocol.SessionID, len(m.order))
	copy(out, m.order)
	return out
}

// FindActiveByDeviceID returns the session bound to deviceID whose phase
// is not Stopped, so a stopped tab never blocks device reuse (spec §4.3).
func (m *Manager) FindActiveByDeviceID(deviceID string) (protocol.SessionID, bool) {
	for _, id := range m.order {
		s := m.sessions[id]
		if s.DeviceID == deviceID && s.Phase() != Stopped {
			return id, true
		}
	}
	return "", false
}

// CreateSession creates and registers a new session for deviceID. If the
// manager is at capacity, the oldest Stopped session is evicted first; if
// none exists, creation fails. A device already bound to a non-Stopped
// session is rejected.
func (m *Manager) CreateSession(deviceID, name string, cfg *protocol.LaunchConfig) (*Session, error) {
	if _, active := m.FindActiveByDeviceID(deviceID); active {
		return nil, fmt.Errorf("device %s already has an active session", deviceID)
	}

	if len(m.order) >= MaxSessions {
		if !m.evictOldestStopped() {
			return nil, fmt.Errorf("session manager at capacity (%d) with no stopped session to evict", MaxSessions)
		}
	}

	id := protocol.NewSessionID()
	s := New(id, deviceID, name, cfg)
	m.sessions[id] = s
	m.order = append(m.order, id)

	if len(m.order) == 1 {
		m.selectedIndex = 0
	}
	return s, nil
}

// evictOldestStopped removes the oldest Stopped session, returning whether
// one was found and removed.
func (m *Manager) evictOldestStopped() bool {
	for _, id := range m.order {
		if m.sessions[id].Phase() == Stopped {
			m.removeAt(m.indexOf(id))
			return true
		}
	}
	return false
}

// RemoveSession removes a session by id, clamping the selection cursor
// into range.
func (m *Manager) RemoveSession(id protocol.SessionID) bool {
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.removeAt(idx)
	return true
}

func (m *Manager) indexOf(id protocol.SessionID) int {
	for i, v := range m.order {
		if v == id {
			return i
		}
	}
	return -1
}

func (m *Manager) removeAt(idx int) {
	id := m.order[idx]
	delete(m.sessions, id)
	m.order = append(m.order[:idx], m.order[idx+1:]...)

	if len(m.order) == 0 {
		m.selectedIndex = 0
		return
	}
	if m.selectedIndex >= len(m.order) {
		m.selectedIndex = len(m.order) - 1
	} else if idx < m.selectedIndex {
		m.selectedIndex--
	}
}

// SelectByIndex moves the selection cursor to index, if valid.
func (m *Manager) SelectByIndex(index int) bool {
	if index < 0 || index >= len(m.order) {
		return false
	}
	m.selectedIndex = index
	return true
}

// SelectNext advances the selection cursor, wrapping around.
func (m *Manager) SelectNext() bool {
	if len(m.order) == 0 {
		return false
	}
	m.selectedIndex = (m.selectedIndex + 1) % len(m.order)
	return true
}

// SelectPrevious moves the selection cursor back, wrapping around.
func (m *Manager) SelectPrevious() bool {
	if len(m.order) == 0 {
		return false
	}
	m.selectedIndex = (m.selectedIndex - 1 + len(m.order)) % len(m.order)
	return true
}
