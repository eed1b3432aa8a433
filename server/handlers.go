package server

import (
	"encoding/json"
	"net/http"
)

type handlers struct {
	status StatusSource
}

// handleHealthz responds to liveness probes. The process is healthy as long
// as it is serving; chat connectivity shows up in /status instead, because a
// reconnect in progress is normal operation, not unhealth.
func (h *handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleStatus reports the session snapshot as JSON.
func (h *handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.status == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no session"})
		return
	}
	_ = json.NewEncoder(w).Encode(h.status.Snapshot())
}
