package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSimulation(t *testing.T) {
	m := New()
	m.ObserveSimulation(true)
	m.ObserveSimulation(false)

	if got := testutil.ToFloat64(m.simulations); got != 2 {
		t.Fatalf("expected 2 simulations, got %v", got)
	}
	if got := testutil.ToFloat64(m.poolOverflow); got != 0 {
		t.Fatalf("expected overflow gauge reset to 0, got %v", got)
	}
}

func TestObserveChatSend(t *testing.T) {
	m := New()
	m.ObserveChatSend(ChatOutcomeOK)
	m.ObserveChatSend(ChatOutcomeOK)
	m.ObserveChatSend(ChatOutcomeOffline)

	if got := testutil.ToFloat64(m.chatSends.WithLabelValues(ChatOutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok sends, got %v", got)
	}
	if got := testutil.ToFloat64(m.chatSends.WithLabelValues(ChatOutcomeOffline)); got != 1 {
		t.Fatalf("expected 1 offline send, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSimulation(true)
	m.ObserveChatSend(ChatOutcomeError)
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/allocation", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mandato_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in output")
	}
}
