// Package web provides HTTP handlers for the entrawatch serve-mode API.
package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
)

// SnapshotFunc returns the current snapshot.
type SnapshotFunc func() check.Snapshot

// SnapshotHandler returns the full snapshot as JSON.
func SnapshotHandler(getSnapshot SnapshotFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := getSnapshot()
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// HealthzHandler returns 200 with body "ok" while evaluations are
// fresh. A snapshot older than maxAge, or none at all, yields 503 so an
// orchestrator can restart a wedged collection loop. Zero maxAge
// disables the staleness check.
func HealthzHandler(getSnapshot SnapshotFunc, maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := getSnapshot()
		w.Header().Set("Content-Type", "text/plain")

		if snap.At.IsZero() {
			http.Error(w, "no evaluation completed yet", http.StatusServiceUnavailable)
			return
		}
		if maxAge > 0 && time.Since(snap.At) > maxAge {
			http.Error(w, "last evaluation is stale", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck // best-effort response
	}
}
