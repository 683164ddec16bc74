// Package perf implements the performance monitor (spec §4.6): bounded
// ring buffers of frame timings, memory samples, and major GC events per
// session, with throttled statistics recomputation.
package perf

import "time"

const (
	// FrameCapacity bounds the frame-timing ring buffer.
	FrameCapacity = 300
	// MemoryCapacity bounds the memory-sample ring buffer.
	MemoryCapacity = 300
	// GCCapacity bounds the major-GC-event ring buffer.
	GCCapacity = 50

	// FPSWindow is the sliding window calculate_fps considers.
	FPSWindow = 1 * time.Second
	// FrameBudgetMs is the per-frame budget above which a frame counts as
	// janky (60fps budget).
	FrameBudgetMs = 16.7
	// StatsRecomputeInterval throttles Stats recomputation outside of
	// on-demand calls.
	StatsRecomputeInterval = 1 * time.Second

	// PollInterval is the cadence of the memory+GC polling task.
	PollInterval = 2 * time.Second
)
