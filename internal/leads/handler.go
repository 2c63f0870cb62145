// HTTP handlers for form capture.
//
// Routes:
//
//	POST /api/applications  → multipart job application (resume upload)
//	POST /api/contact       → JSON contact lead
package leads

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Movrr-Official/movrr-sub001/internal/web"
)

// Handler exposes form capture over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the form routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/applications", h.applications)
	mux.HandleFunc("/api/contact", h.contact)
}

func (h *Handler) applications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	app, err := ParseApplicationForm(r)
	if err != nil {
		writeLeadsError(w, "parseApplication", err)
		return
	}

	if _, err := h.svc.SubmitApplication(r.Context(), app); err != nil {
		writeLeadsError(w, "submitApplication", err)
		return
	}

	web.OK(w, map[string]any{
		"success": true,
		"message": "Application received — thanks for applying to Movrr.",
	})
}

func (h *Handler) contact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var lead Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, err := h.svc.SaveLead(r.Context(), &lead); err != nil {
		writeLeadsError(w, "saveLead", err)
		return
	}

	web.OK(w, map[string]any{
		"success": true,
		"message": "Thanks — we'll get back to you shortly.",
	})
}

// ParseApplicationForm decodes the multipart careers form into an
// Application. The resume part is read fully but bounded; oversized uploads
// fail validation rather than exhausting memory.
func ParseApplicationForm(r *http.Request) (*Application, error) {
	if err := r.ParseMultipartForm(maxResumeBytes + 1<<20); err != nil {
		return nil, &ValidationError{Msg: "request must be multipart/form-data"}
	}

	app := &Application{
		JobID:       r.FormValue("jobId"),
		Name:        r.FormValue("name"),
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		LinkedIn:    r.FormValue("linkedin"),
		Portfolio:   r.FormValue("portfolio"),
		CoverLetter: r.FormValue("coverLetter"),
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		// Validation reports the missing file with the other field checks.
		return app, nil
	}
	defer file.Close()

	resume, err := io.ReadAll(io.LimitReader(file, maxResumeBytes+1))
	if err != nil {
		return nil, &ValidationError{Msg: "could not read the resume upload"}
	}
	app.Resume = resume
	app.ResumeName = header.Filename
	return app, nil
}

// writeLeadsError maps storage errors to responses; database details never
// reach the client.
func writeLeadsError(w http.ResponseWriter, action string, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		web.Error(w, ve.Msg, http.StatusBadRequest)
		return
	}
	slog.Error("form capture failed", "action", action, "err", err)
	web.Error(w, "submission failed, please try again later", http.StatusInternalServerError)
}
