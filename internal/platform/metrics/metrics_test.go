package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_CountsAndExposes(t *testing.T) {
	t.Parallel()

	rec := New()
	rec.ObserveSourceCall("STRUCTURED", "search", "ok", 120*time.Millisecond)
	rec.ObserveSourceCall("STRUCTURED", "search", "ok", 80*time.Millisecond)
	rec.IncTransition("IDLE", "NAME_QUERY", "AWAITING_SELECTION")
	rec.SetActiveSessions(3)
	rec.AddExpiredSessions(2)
	rec.AddExpiredSessions(0)

	if got := testutil.ToFloat64(rec.sourceRequests.WithLabelValues("STRUCTURED", "search", "ok")); got != 2 {
		t.Fatalf("unexpected source request count: got=%v want=2", got)
	}
	if got := testutil.ToFloat64(rec.activeSessions); got != 3 {
		t.Fatalf("unexpected active sessions: got=%v want=3", got)
	}
	if got := testutil.ToFloat64(rec.expiredSessions); got != 2 {
		t.Fatalf("unexpected expired sessions: got=%v want=2", got)
	}

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(body), "player_scout_conversation_transitions_total") {
		t.Fatalf("transition metric missing from exposition")
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	t.Parallel()

	var rec *Recorder
	rec.ObserveSourceCall("SCRAPED", "profile", "error", time.Second)
	rec.IncHandlerFault()
	rec.SetCircuitOpen("SCRAPED", true)
	if rec.Registry() != nil {
		t.Fatalf("nil recorder must not expose a registry")
	}
}
