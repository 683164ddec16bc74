package perf

import (
	"sync"
	"time"

	"github.com/flutter-demon/fdemon/internal/logpipeline"
	"github.com/flutter-demon/fdemon/internal/protocol"
)

// Stats is the recomputed summary of a session's recent performance.
type Stats struct {
	BufferedFrames int
	AvgFrameMs     float64
	FPS            *float64
	JankPct        float64
	LastMemoryHeap int64
}

// State holds one session's performance ring buffers and last-computed
// Stats. It is safe for concurrent use. Samples polled from the VM Service
// arrive as messages and are added from the engine's update loop.
type State struct {
	mu sync.RWMutex

	frames  *logpipeline.RingBuffer[protocol.FrameTimingPayload]
	memory  *logpipeline.RingBuffer[protocol.MemoryUsagePayload]
	gc      *logpipeline.RingBuffer[protocol.GcEventPayload]

	monitoringActive bool
	stats            Stats
	lastRecompute    time.Time
}

// NewState constructs an empty performance state.
func NewState() *State {
	return &State{
		frames: logpipeline.NewRingBuffer[protocol.FrameTimingPayload](FrameCapacity),
		memory: logpipeline.NewRingBuffer[protocol.MemoryUsagePayload](MemoryCapacity),
		gc:     logpipeline.NewRingBuffer[protocol.GcEventPayload](GCCapacity),
	}
}

// SetMonitoringActive flips the monitoring flag; the session invariant
// ties this to the presence of the perf task handle and shutdown signal
// (spec §8 invariant 2).
func (s *State) SetMonitoringActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitoringActive = active
}

// MonitoringActive reports whether the polling task is currently running.
func (s *State) MonitoringActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.monitoringActive
}

// AddFrame records a frame-timing sample.
func (s *State) AddFrame(f protocol.FrameTimingPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames.Push(f)
}

// AddMemory records a memory sample.
func (s *State) AddMemory(m protocol.MemoryUsagePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Push(m)
	s.stats.LastMemoryHeap = m.HeapUsage
}

// AddGC records a GC event, filtering minor Scavenge events per spec §4.6.
func (s *State) AddGC(g protocol.GcEventPayload) {
	if !g.IsMajorGC() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gc.Push(g)
}

// Recompute updates Stats unconditionally. Callers on the hot path should
// prefer RecomputeThrottled.
func (s *State) Recompute() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked()
}

// RecomputeThrottled recomputes Stats only if StatsRecomputeInterval has
// elapsed since the last recomputation, otherwise returns the cached value.
func (s *State) RecomputeThrottled(now time.Time) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastRecompute) < StatsRecomputeInterval {
		return s.stats
	}
	return s.recomputeLocked()
}

func (s *State) recomputeLocked() Stats {
	frames := s.frames.Items()
	s.stats.BufferedFrames = len(frames)

	if len(frames) > 0 {
		var total float64
		jankCount := 0
		for _, f := range frames {
			frameMs := f.BuildMs + f.RasterMs
			total += frameMs
			if frameMs > FrameBudgetMs {
				jankCount++
			}
		}
		s.stats.AvgFrameMs = total / float64(len(frames))
		s.stats.JankPct = float64(jankCount) / float64(len(frames)) * 100
		s.stats.FPS = calculateFPS(frames)
	} else {
		s.stats.AvgFrameMs = 0
		s.stats.JankPct = 0
		s.stats.FPS = nil
	}

	s.lastRecompute = time.Now()
	return s.stats
}

// calculateFPS implements spec §8 invariant 10: given N >= 2 timestamps
// within FPSWindow spanning T > 0 seconds, fps = (N-1)/T; otherwise unset.
func calculateFPS(frames []protocol.FrameTimingPayload) *float64 {
	if len(frames) < 2 {
		return nil
	}
	latest := frames[len(frames)-1].Timestamp
	cutoff := latest.Add(-FPSWindow)

	var recent []protocol.FrameTimingPayload
	for _, f := range frames {
		if !f.Timestamp.Before(cutoff) {
			recent = append(recent, f)
		}
	}
	if len(recent) < 2 {
		return nil
	}

	elapsed := recent[len(recent)-1].Timestamp.Sub(recent[0].Timestamp).Seconds()
	if elapsed <= 0 {
		return nil
	}

	fps := float64(len(recent)-1) / elapsed
	return &fps
}

// CachedStats returns the last-recomputed statistics without forcing a
// recomputation.
func (s *State) CachedStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
