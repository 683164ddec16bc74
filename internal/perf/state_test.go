package perf

import (
	"testing"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFPSRequiresTwoFrames(t *testing.T) {
	assert.Nil(t, calculateFPS(nil))
	assert.Nil(t, calculateFPS([]protocol.FrameTimingPayload{{Timestamp: time.Now()}}))
}

func TestCalculateFPSExactRatio(t *testing.T) {
	base := time.Now()
	frames := []protocol.FrameTimingPayload{
		{Timestamp: base},
		{Timestamp: base.Add(250 * time.Millisecond)},
		{Timestamp: base.Add(500 * time.Millisecond)},
		{Timestamp: base.Add(750 * time.Millisecond)},
	}
	fps := calculateFPS(frames)
	require.NotNil(t, fps)
	assert.InDelta(t, float64(3)/0.75, *fps, 0.01)
}

func TestCalculateFPSZeroElapsedIsUnset(t *testing.T) {
	ts := time.Now()
	frames := []protocol.FrameTimingPayload{{Timestamp: ts}, {Timestamp: ts}}
	assert.Nil(t, calculateFPS(frames))
}

func TestAddGCFiltersMinorEvents(t *testing.T) {
	s := NewState()
	s.AddGC(protocol.GcEventPayload{Kind: "Scavenge"})
	s.AddGC(protocol.GcEventPayload{Kind: "MarkSweep"})
	s.AddGC(protocol.GcEventPayload{Kind: "MarkCompact"})

	assert.Equal(t, 2, s.gc.Len())
}

func TestRecomputeBufferedFramesIsOccupancyNotTotal(t *testing.T) {
	s := NewState()
	base := time.Now()
	for i := 0; i < FrameCapacity+50; i++ {
		s.AddFrame(protocol.FrameTimingPayload{Timestamp: base.Add(time.Duration(i) * time.Millisecond), BuildMs: 5, RasterMs: 5})
	}
	stats := s.Recompute()
	assert.Equal(t, FrameCapacity, stats.BufferedFrames)
}

func TestMonitoringActiveFlag(t *testing.T) {
	s := NewState()
	assert.False(t, s.MonitoringActive())
	s.SetMonitoringActive(true)
	assert.True(t, s.MonitoringActive())
}
