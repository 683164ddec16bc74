package protocol

import "time"

// Protocol-level bounds. Domain bounds (ring buffer sizes, session capacity,
// exception block cap) live beside the components that own them.
const (
	// ULIDLength is the expected length of a ULID string.
	ULIDLength = 26

	// MaxSessionNameLength bounds a user-configured session display name.
	MaxSessionNameLength = 50

	// MaxEventTags bounds EventMetadata.Tags to keep broadcast events cheap
	// to clone on the hot log-batch path.
	MaxEventTags = 20

	// DefaultRPCTimeout bounds a single VM Service request/response
	// round-trip before it fails as a recoverable Protocol error.
	DefaultRPCTimeout = 5 * time.Second
)
