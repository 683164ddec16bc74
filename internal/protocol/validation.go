package protocol

import "fmt"

// sessionNameCharTable and deviceIDCharTable are [256]bool lookups used to
// validate session names and device ids in O(1) per byte without allocating, matching the reference
// protocol package's validator idiom.
var sessionNameCharTable = buildCharTable("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 _.-")
var deviceIDCharTable = buildCharTable("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-")

func buildCharTable(allowed string) [256]bool {
	var table [256]bool
	for i := 0; i < len(allowed); i++ {
		table[allowed[i]] = true
	}
	return table
}

// IsValidSessionName reports whether name is non-empty, within
// MaxSessionNameLength, and composed only of printable name characters.
func IsValidSessionName(name string) bool {
	if name == "" || len(name) > MaxSessionNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !sessionNameCharTable[name[i]] {
			return false
		}
	}
	return true
}

// IsValidDeviceID reports whether deviceID looks like a flutter device
// identifier (no whitespace, no shell metacharacters).
func IsValidDeviceID(deviceID string) bool {
	if deviceID == "" || len(deviceID) > 128 {
		return false
	}
	for i := 0; i < len(deviceID); i++ {
		if !deviceIDCharTable[deviceID[i]] {
			return false
		}
	}
	return true
}

// ValidateSpawnSession checks a SpawnSessionPayload's device id and
// optional session name. The engine's spawn path does not call it, so
// MsgSpawnSession payloads reach ActionSpawnSession unvalidated.
func ValidateSpawnSession(p SpawnSessionPayload) error {
	if !IsValidDeviceID(p.DeviceID) {
		return fmt.Errorf("invalid device id: %q", p.DeviceID)
	}
	if p.Name != "" && !IsValidSessionName(p.Name) {
		return fmt.Errorf("invalid session name: %q", p.Name)
	}
	return nil
}
