package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Prober runs one liveness check. *Checker implements it.
type Prober interface {
	Check(ctx context.Context) *Result
}

// Handler returns an http.HandlerFunc that runs a check per request and
// responds with the Result as JSON: 200 on success, 503 on failure.
func Handler(p Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := p.Check(r.Context())

		status := http.StatusOK
		if !res.Success {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, res)
	}
}

// LivenessHandler returns an http.HandlerFunc that always responds OK.
// It reports that the process is running without touching the database.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, map[string]string{"status": StatusHealthy})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// wantsJSON checks if the client wants JSON response.
func wantsJSON(r *http.Request) bool {
	// Check query parameter first (easier for debugging)
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
