package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/quillpost/quillpost/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "quillpost_registrations_total{status=\"success\"} %d\n", snap.RegistrationsSucceeded)
	writeMetric(w, "quillpost_registrations_total{status=\"failed\"} %d\n", snap.RegistrationsFailed)
	writeMetric(w, "quillpost_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "quillpost_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	reasons := make([]string, 0, len(snap.AuthFailures))
	for reason := range snap.AuthFailures {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "quillpost_auth_failures_total{reason=%q} %d\n", reason, snap.AuthFailures[reason])
	}

	writeMetric(w, "quillpost_posts_created_total %d\n", snap.PostsCreated)
	writeMetric(w, "quillpost_posts_deleted_total %d\n", snap.PostsDeleted)
	writeMetric(w, "quillpost_posts_cache_hits_total %d\n", snap.PostsCacheHits)
	writeMetric(w, "quillpost_posts_cache_misses_total %d\n", snap.PostsCacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
