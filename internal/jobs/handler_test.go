package jobs_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Movrr-Official/movrr-sub001/internal/jobs"
)

func newJobsMux(f jobs.Fetcher, hiringOverride *bool) *http.ServeMux {
	cache := jobs.NewCache(f, jobs.NewMemorySnapshotStore())
	mux := http.NewServeMux()
	jobs.NewHandler(cache, hiringOverride).RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestJobsHandler_GetServesFromCache(t *testing.T) {
	f := &fakeFetcher{results: [][]jobs.Job{listing("a", "b")}}
	mux := newJobsMux(f, nil)

	for i := 0; i < 2; i++ {
		w := doRequest(mux, http.MethodGet, "/api/jobs")
		if w.Code != http.StatusOK {
			t.Fatalf("GET #%d = %d, want 200", i+1, w.Code)
		}
	}
	if f.fetches != 1 {
		t.Errorf("two GETs caused %d fetches, want 1", f.fetches)
	}

	var body struct {
		Jobs []jobs.Job `json:"jobs"`
	}
	w := doRequest(mux, http.MethodGet, "/api/jobs")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Jobs) != 2 {
		t.Errorf("jobs = %d, want 2", len(body.Jobs))
	}
}

func TestJobsHandler_PostForcesRefresh(t *testing.T) {
	f := &fakeFetcher{results: [][]jobs.Job{listing("a"), listing("a", "b")}}
	mux := newJobsMux(f, nil)

	if w := doRequest(mux, http.MethodGet, "/api/jobs"); w.Code != http.StatusOK {
		t.Fatalf("GET = %d", w.Code)
	}

	w := doRequest(mux, http.MethodPost, "/api/jobs")
	if w.Code != http.StatusOK {
		t.Fatalf("POST = %d, want 200", w.Code)
	}
	if f.fetches != 2 {
		t.Errorf("POST must refetch even with a fresh cache, fetches = %d", f.fetches)
	}

	var body struct {
		Message string     `json:"message"`
		Jobs    []jobs.Job `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message == "" || len(body.Jobs) != 2 {
		t.Errorf("unexpected refresh response: %s", w.Body.String())
	}

	// Later GETs reflect the refreshed set without another fetch.
	var after struct {
		Jobs []jobs.Job `json:"jobs"`
	}
	wg := doRequest(mux, http.MethodGet, "/api/jobs")
	if err := json.Unmarshal(wg.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(after.Jobs) != 2 || f.fetches != 2 {
		t.Errorf("GET after refresh: jobs=%d fetches=%d, want 2/2", len(after.Jobs), f.fetches)
	}
}

func TestJobsHandler_UpstreamFailureIsGeneric500(t *testing.T) {
	mux := newJobsMux(&fakeFetcher{err: errors.New("ats exploded: secret details")}, nil)

	w := doRequest(mux, http.MethodGet, "/api/jobs")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected {error: …} body")
	}
	if got := w.Body.String(); strings.Contains(got, "exploded") || strings.Contains(got, "secret") {
		t.Errorf("upstream internals leaked: %s", got)
	}
}

func TestHiringStatus_DerivedFromJobCount(t *testing.T) {
	mux := newJobsMux(&fakeFetcher{results: [][]jobs.Job{listing("a", "b", "c")}}, nil)

	w := doRequest(mux, http.MethodGet, "/api/hiring-status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		IsHiring    bool    `json:"isHiring"`
		JobCount    int     `json:"jobCount"`
		LastUpdated *string `json:"lastUpdated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.IsHiring || body.JobCount != 3 {
		t.Errorf("got isHiring=%v jobCount=%d, want true/3", body.IsHiring, body.JobCount)
	}
	if body.LastUpdated == nil {
		t.Error("lastUpdated should be set after a fetch")
	}
}

func TestHiringStatus_OverrideWins(t *testing.T) {
	off := false
	mux := newJobsMux(&fakeFetcher{results: [][]jobs.Job{listing("a")}}, &off)

	w := doRequest(mux, http.MethodGet, "/api/hiring-status")
	var body struct {
		IsHiring bool `json:"isHiring"`
		JobCount int  `json:"jobCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.IsHiring {
		t.Error("override=false must win over a non-empty listing")
	}
	if body.JobCount != 1 {
		t.Errorf("jobCount = %d, want the real count 1", body.JobCount)
	}
}

func TestJobsHandler_RejectsOtherMethods(t *testing.T) {
	mux := newJobsMux(&fakeFetcher{}, nil)

	if w := doRequest(mux, http.MethodDelete, "/api/jobs"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE /api/jobs = %d, want 405", w.Code)
	}
	if w := doRequest(mux, http.MethodPost, "/api/hiring-status"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/hiring-status = %d, want 405", w.Code)
	}
}
