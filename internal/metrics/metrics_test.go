package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flutter-demon/fdemon/internal/protocol"
)

func TestRecordMessageIncrementsCounter(t *testing.T) {
	c := New()
	c.RecordMessage(protocol.MsgSpawnSession)
	body := scrape(t, c)
	if !strings.Contains(body, `fdemon_messages_total{type="MsgSpawnSession"} 1`) {
		t.Fatalf("expected messages_total counter in output, got:\n%s", body)
	}
}

func TestRecordMessageDurationObservesHistogram(t *testing.T) {
	c := New()
	c.RecordMessageDuration(protocol.MsgSpawnSession, 50*time.Millisecond)
	body := scrape(t, c)
	if !strings.Contains(body, "fdemon_message_duration_seconds_count") {
		t.Fatalf("expected duration histogram in output, got:\n%s", body)
	}
}

func TestRecordErrorSkipsNil(t *testing.T) {
	c := New()
	c.RecordError("spawn", nil)
	body := scrape(t, c)
	if strings.Contains(body, "fdemon_errors_total") {
		t.Fatalf("expected no errors_total series for a nil error, got:\n%s", body)
	}
}

func TestRecordErrorCountsNonNil(t *testing.T) {
	c := New()
	c.RecordError("spawn", errTest{})
	body := scrape(t, c)
	if !strings.Contains(body, `fdemon_errors_total{operation="spawn"} 1`) {
		t.Fatalf("expected errors_total counter in output, got:\n%s", body)
	}
}

func TestRecordSessionCountSetsGauge(t *testing.T) {
	c := New()
	c.RecordSessionCount(3)
	body := scrape(t, c)
	if !strings.Contains(body, "fdemon_sessions_active 3") {
		t.Fatalf("expected sessions_active gauge in output, got:\n%s", body)
	}
}

func TestRecordDroppedEventIncrementsCounter(t *testing.T) {
	c := New()
	c.RecordDroppedEvent("channel_full")
	body := scrape(t, c)
	if !strings.Contains(body, `fdemon_dropped_events_total{reason="channel_full"} 1`) {
		t.Fatalf("expected dropped_events_total counter in output, got:\n%s", body)
	}
}

func TestRecordFrameStatsSetsGauges(t *testing.T) {
	c := New()
	c.RecordFrameStats(protocol.SessionID("s1"), 16.7, 2.5)
	body := scrape(t, c)
	if !strings.Contains(body, `fdemon_session_frame_avg_ms{session_id="s1"} 16.7`) {
		t.Fatalf("expected frame_avg_ms gauge in output, got:\n%s", body)
	}
	if !strings.Contains(body, `fdemon_session_frame_jank_pct{session_id="s1"} 2.5`) {
		t.Fatalf("expected frame_jank_pct gauge in output, got:\n%s", body)
	}
}

func TestHandlerServesOK(t *testing.T) {
	c := New()
	c.RecordSessionCount(1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fdemon_sessions_active") {
		t.Fatalf("expected metrics body to contain registered series, got:\n%s", rec.Body.String())
	}
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}

type errTest struct{}

func (errTest) Error() string { return "boom" }
