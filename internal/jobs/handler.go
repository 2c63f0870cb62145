// HTTP handlers for the careers endpoints.
//
// Routes:
//
//	GET  /api/jobs           → cached listing
//	POST /api/jobs           → forced refresh, then the fresh listing
//	GET  /api/hiring-status  → {isHiring, jobCount, lastUpdated}
package jobs

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Movrr-Official/movrr-sub001/internal/web"
)

// Handler exposes the job cache over HTTP.
type Handler struct {
	cache *Cache

	// hiringOverride forces the hiring flag when non-nil.
	hiringOverride *bool
}

// NewHandler returns a configured Handler.
func NewHandler(cache *Cache, hiringOverride *bool) *Handler {
	return &Handler{cache: cache, hiringOverride: hiringOverride}
}

// RegisterRoutes mounts the careers routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/jobs", h.jobs)
	mux.HandleFunc("/api/hiring-status", h.hiringStatus)
}

func (h *Handler) jobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.cache.GetJobs(r.Context())
		if err != nil {
			writeJobsError(w, "getJobs", err)
			return
		}
		web.OK(w, map[string]any{"jobs": list})

	case http.MethodPost:
		list, err := h.cache.Refresh(r.Context())
		if err != nil {
			writeJobsError(w, "refreshJobs", err)
			return
		}
		web.OK(w, map[string]any{"message": "job listings refreshed", "jobs": list})

	default:
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type hiringStatusResponse struct {
	IsHiring    bool       `json:"isHiring"`
	JobCount    int        `json:"jobCount"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

func (h *Handler) hiringStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list, err := h.cache.GetJobs(r.Context())
	if err != nil {
		writeJobsError(w, "hiringStatus", err)
		return
	}

	resp := hiringStatusResponse{IsHiring: len(list) > 0, JobCount: len(list)}
	if h.hiringOverride != nil {
		resp.IsHiring = *h.hiringOverride
	}
	if last := h.cache.LastFetched(r.Context()); !last.IsZero() {
		resp.LastUpdated = &last
	}
	web.OK(w, resp)
}

// writeJobsError logs the upstream failure with context and returns a
// generic message.
func writeJobsError(w http.ResponseWriter, action string, err error) {
	var fe *FetchError
	if errors.As(err, &fe) {
		slog.Error("ats fetch failed", "action", action, "err", fe.Err)
	} else {
		slog.Error("jobs request failed", "action", action, "err", err)
	}
	web.Error(w, "unable to load job listings", http.StatusInternalServerError)
}
