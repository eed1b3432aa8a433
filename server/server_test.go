package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onnwee/giftwatch/chat"
	"github.com/onnwee/giftwatch/telemetry"
)

type staticStatus struct{ snap chat.Snapshot }

func (s staticStatus) Snapshot() chat.Snapshot { return s.snap }

func TestHealthz(t *testing.T) {
	telemetry.Init()
	mux := NewMux(staticStatus{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("healthz body = %q", rr.Body.String())
	}
	if rr.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing correlation id header")
	}
}

func TestStatus(t *testing.T) {
	telemetry.Init()
	mux := NewMux(staticStatus{snap: chat.Snapshot{
		State:              "running",
		ChannelsConfigured: 3,
		ChannelsJoined:     2,
		Reconnects:         5,
	}})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var snap chat.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode status body: %v", err)
	}
	if snap.State != "running" || snap.ChannelsJoined != 2 || snap.Reconnects != 5 {
		t.Errorf("status snapshot = %+v", snap)
	}
}

func TestStatusWithoutSession(t *testing.T) {
	telemetry.Init()
	mux := NewMux(nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status without session = %d, want 503", rr.Code)
	}
}

func TestCorrelationIDReused(t *testing.T) {
	telemetry.Init()
	mux := NewMux(staticStatus{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "given-id")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Correlation-ID"); got != "given-id" {
		t.Errorf("correlation id = %q, want caller's id reused", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	telemetry.Init()
	mux := NewMux(staticStatus{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("metrics status = %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("metrics body empty")
	}
}
