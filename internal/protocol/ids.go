// Package protocol defines the wire-level vocabulary shared between the
// engine core and its external collaborators: messages in, actions out,
// engine events broadcast, and the abstract input-key alphabet the TUI
// front-end translates terminal keystrokes into.
package protocol

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new monotonically-sortable identifier, used for
// SessionId values and event/message/correlation ids alike.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// SessionID identifies one Flutter app invocation for its entire lifetime,
// from Starting through Stopped. It is never reused.
type SessionID string

func (id SessionID) String() string { return string(id) }

// IsEmpty reports whether the id is the zero value.
func (id SessionID) IsEmpty() bool { return id == "" }

// NewSessionID mints a fresh session identifier.
func NewSessionID() SessionID { return SessionID(NewID()) }
