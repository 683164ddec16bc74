// Package engine implements the session orchestrator core: a single
// message loop draining one channel through a pure update function,
// handing the resulting action to a dispatcher that hydrates it with live
// collaborator handles (spec §2, §4.9).
package engine

import "time"

// Config tunes the engine's buffering and lifecycle behavior.
type Config struct {
	MessageBufferSize int
	EventBufferSize   int
	ShutdownTimeout   time.Duration
	FlushTickInterval time.Duration
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// DefaultConfig returns sensible defaults, mirroring the reference
// orchestrator's buffering choices.
func DefaultConfig() Config {
	return Config{
		MessageBufferSize:  256,
		EventBufferSize:    1024,
		ShutdownTimeout:    10 * time.Second,
		FlushTickInterval:  100 * time.Millisecond,
		RateLimitPerSecond: 50,
		RateLimitBurst:     10,
	}
}
