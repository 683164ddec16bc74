// Package metrics exposes the engine's operational counters/histograms/
// gauges as Prometheus metrics, replacing the reference implementation's
// hand-rolled percentile bookkeeping with real collectors registered
// against a private registry and served over HTTP.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

// Collector implements engine.MetricsCollector against a private
// Prometheus registry (never the global DefaultRegisterer, so multiple
// engines in one process, as in tests, don't collide on metric names).
type Collector struct {
	registry *prometheus.Registry

	messagesTotal   *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	droppedEvents   *prometheus.CounterVec
	frameAvgMs      *prometheus.GaugeVec
	frameJankPct    *prometheus.GaugeVec
}

// New constructs a Collector with every metric registered.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fdemon_messages_total",
			Help: "Total messages processed by the engine, by message type.",
		}, []string{"type"}),
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fdemon_message_duration_seconds",
			Help:    "Time to process one message through update, excluding the asynchronously dispatched action.",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fdemon_errors_total",
			Help: "Collaborator errors, by operation.",
		}, []string{"operation"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fdemon_sessions_active",
			Help: "Number of sessions currently tracked by the session manager.",
		}),
		droppedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fdemon_dropped_events_total",
			Help: "Broadcast events dropped because a subscriber's channel was full.",
		}, []string{"reason"}),
		frameAvgMs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fdemon_session_frame_avg_ms",
			Help: "Average frame render time for a session's recent window.",
		}, []string{"session_id"}),
		frameJankPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fdemon_session_frame_jank_pct",
			Help: "Percentage of recent frames exceeding the jank budget for a session.",
		}, []string{"session_id"}),
	}

	reg.MustRegister(
		c.messagesTotal,
		c.messageDuration,
		c.errorsTotal,
		c.sessionsActive,
		c.droppedEvents,
		c.frameAvgMs,
		c.frameJankPct,
	)
	return c
}

// RecordMessage implements engine.MetricsCollector.
func (c *Collector) RecordMessage(msgType protocol.MessageType) {
	c.messagesTotal.WithLabelValues(string(msgType)).Inc()
}

// RecordMessageDuration implements engine.MetricsCollector.
func (c *Collector) RecordMessageDuration(msgType protocol.MessageType, d time.Duration) {
	c.messageDuration.WithLabelValues(string(msgType)).Observe(d.Seconds())
}

// RecordError implements engine.MetricsCollector.
func (c *Collector) RecordError(operation string, err error) {
	if err == nil {
		return
	}
	c.errorsTotal.WithLabelValues(operation).Inc()
}

// RecordSessionCount implements engine.MetricsCollector.
func (c *Collector) RecordSessionCount(count int) {
	c.sessionsActive.Set(float64(count))
}

// RecordDroppedEvent records a broadcast event dropped because the
// events channel was full (engine.Engine.emit/flushSession send on a
// non-blocking select).
func (c *Collector) RecordDroppedEvent(reason string) {
	c.droppedEvents.WithLabelValues(reason).Inc()
}

// RecordFrameStats records a session's latest recomputed frame
// statistics (internal/perf.Stats), called after a VmServiceFrameTiming
// message updates a session's performance window.
func (c *Collector) RecordFrameStats(sessionID protocol.SessionID, avgFrameMs, jankPct float64) {
	c.frameAvgMs.WithLabelValues(string(sessionID)).Set(avgFrameMs)
	c.frameJankPct.WithLabelValues(string(sessionID)).Set(jankPct)
}

// Handler returns the HTTP handler serving this collector's metrics in
// the Prometheus exposition format, mounted at /metrics when
// fdemon --metrics-addr is set.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
