package protocol

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentVersion is this engine's protocol version, exchanged with any
// out-of-process consumer of the NDJSON stream during capability
// discovery.
var CurrentVersion = semver.MustParse("1.0.0")

// MinSupportedVersion is the minimum client version this engine accepts.
var MinSupportedVersion = semver.MustParse("1.0.0")

// CapabilityResponse describes what this engine build supports, letting a
// headless consumer adapt to message/event vocabulary differences across
// versions without a renegotiation round-trip per message.
type CapabilityResponse struct {
	ServerVersion    *semver.Version `json:"server_version"`
	MinClientVersion *semver.Version `json:"min_client_version"`
	MessageTypes     []MessageType   `json:"message_types"`
	EventTypes       []EventType     `json:"event_types"`
	Features         map[string]bool `json:"features"`
}

// NegotiateVersion finds the compatible version between a client and this
// server, failing if the client is older than MinSupportedVersion.
func NegotiateVersion(client, server *semver.Version) (*semver.Version, error) {
	if client == nil || server == nil {
		return nil, errors.New("version cannot be nil")
	}
	if client.LessThan(MinSupportedVersion) {
		return nil, fmt.Errorf("client version %s is too old, minimum supported is %s", client, MinSupportedVersion)
	}
	if client.LessThan(server) {
		return client, nil
	}
	return server, nil
}

// GetCapabilities returns this build's advertised capability set.
func GetCapabilities() CapabilityResponse {
	return CapabilityResponse{
		ServerVersion:    CurrentVersion,
		MinClientVersion: MinSupportedVersion,
		MessageTypes: []MessageType{
			MsgKey, MsgTick, MsgDaemon, MsgSessionExited,
			MsgVmServiceConnected, MsgVmServiceDisconnected, MsgVmServiceConnectionFailed,
			MsgSpawnSession, MsgAttachSession, MsgCloseCurrentSession,
		},
		EventTypes: []EventType{
			EventSessionCreated, EventSessionRemoved, EventPhaseChanged,
			EventLogBatch, EventPerformanceStats, EventVmConnectionChanged, EventShutdown,
		},
		Features: map[string]bool{
			"audit_logging":     true,
			"rate_limiting":     true,
			"event_metadata":    true,
			"headless_ndjson":   true,
			"plugin_hooks":      true,
		},
	}
}
