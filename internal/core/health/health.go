package health

import (
	"encoding/json"
	"net/http"
)

func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// CacheReporter exposes the size of the upstream response cache.
type CacheReporter interface {
	Len() int
}

// Readiness reports the upstream base URL in use and the cache occupancy.
func Readiness(baseURL string, cache CacheReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type resp struct {
			Status       string `json:"status"`
			Upstream     string `json:"upstream"`
			CacheEntries int    `json:"cache_entries"`
		}
		out := resp{Status: "ready", Upstream: baseURL}
		if cache != nil {
			out.CacheEntries = cache.Len()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}
