package api

import (
	"fmt"
	"net/http"
	"time"
)

// StatsProvider exposes a flat snapshot of service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// statsSections groups snapshot keys for ?section= filtering.
var statsSections = map[string][]string{
	"catalog":    {"platforms", "categories", "proofs", "defaultMinRating"},
	"matchmaker": {"provider", "cacheEnabled", "sessions"},
	"queue":      {"started", "queueLength", "queueSize", "workerCount", "activeWorkers"},
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
}

// NewStatsHandler creates a stats handler. Uptime counts from this call.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now()}
}

// HandleStats returns the snapshot plus uptimeSeconds. With ?section= only
// that group's keys are returned; an unknown section is a bad request.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	stats := h.statsProvider.GetStats()
	if section := r.URL.Query().Get("section"); section != "" {
		keys, ok := statsSections[section]
		if !ok {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("unknown stats section %q", section))
			return
		}
		picked := make(map[string]interface{}, len(keys)+1)
		for _, k := range keys {
			if v, ok := stats[k]; ok {
				picked[k] = v
			}
		}
		stats = picked
	} else {
		copied := make(map[string]interface{}, len(stats)+1)
		for k, v := range stats {
			copied[k] = v
		}
		stats = copied
	}
	stats["uptimeSeconds"] = int64(time.Since(h.startedAt).Seconds())
	writeJSON(w, http.StatusOK, stats)
}
