package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/entrawatch/internal/check"
	"github.com/ppiankov/entrawatch/internal/history"
)

func seededStore(t *testing.T) *history.Store {
	t.Helper()
	hs, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { hs.Close() }) //nolint:errcheck

	base := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snap := check.Snapshot{
			At: base.Add(time.Duration(i) * time.Hour),
			Outcomes: []check.ServiceOutcome{
				{
					Section: "entra_sync",
					Service: "Entra connect sync",
					Outcome: check.Outcome{
						State:   check.StateOK,
						Summary: "Last sync: 10 minutes ago",
						Metric:  &check.Metric{Name: "entra_sync_elapsed_time", Value: 600},
					},
				},
			},
		}
		if err := hs.Save(snap); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	return hs
}

func TestHistoryHandler(t *testing.T) {
	hs := seededStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", http.NoBody)
	w := httptest.NewRecorder()

	HistoryHandler(hs)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var summaries []history.RunSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("got %d summaries, want 2", len(summaries))
	}
}

func TestTrendHandler(t *testing.T) {
	hs := seededStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trend?service=Entra+connect+sync", http.NoBody)
	w := httptest.NewRecorder()

	TrendHandler(hs)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var points []history.TrendPoint
	if err := json.Unmarshal(w.Body.Bytes(), &points); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("got %d points, want 3", len(points))
	}
}

func TestTrendHandler_MissingService(t *testing.T) {
	hs := seededStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trend", http.NoBody)
	w := httptest.NewRecorder()

	TrendHandler(hs)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
