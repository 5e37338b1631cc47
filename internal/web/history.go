package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ppiankov/entrawatch/internal/history"
)

// HistoryHandler returns the most recent run summaries as JSON.
func HistoryHandler(hs *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := hs.List(queryLimit(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summaries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// TrendHandler returns trend data points for a specific service as JSON.
func TrendHandler(hs *history.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := r.URL.Query().Get("service")
		if service == "" {
			http.Error(w, "service query parameter is required", http.StatusBadRequest)
			return
		}

		points, err := hs.Trend(service, queryLimit(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(points); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func queryLimit(r *http.Request) int {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	return limit
}
