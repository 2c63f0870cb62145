// HTTP handlers for the signup flows.
//
// Routes:
//
//	POST /api/subscribe     → newsletter signup
//	POST /api/waitlist      → launch waitlist signup
//	POST /api/early-access  → early-access signup
package subscribe

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Movrr-Official/movrr-sub001/internal/web"
)

// Handler exposes the signup flows over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the signup routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/subscribe", h.newsletter)
	mux.HandleFunc("/api/waitlist", h.waitlist)
	mux.HandleFunc("/api/early-access", h.earlyAccess)
}

// signupResponse is the shared success shape of all three flows.
type signupResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *Confirmation `json:"data"`
}

func (h *Handler) newsletter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in NewsletterSignup
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	conf, err := h.svc.SubscribeNewsletter(r.Context(), in)
	if err != nil {
		writeSignupError(w, err)
		return
	}
	web.OK(w, signupResponse{Success: true, Message: "You're subscribed to the Movrr newsletter.", Data: conf})
}

func (h *Handler) waitlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in WaitlistSignup
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	conf, err := h.svc.JoinWaitlist(r.Context(), in)
	if err != nil {
		writeSignupError(w, err)
		return
	}
	web.OK(w, signupResponse{Success: true, Message: "You're on the waitlist — we'll be in touch.", Data: conf})
}

func (h *Handler) earlyAccess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		web.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var in EarlyAccessSignup
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		web.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	conf, err := h.svc.SubscribeEarlyAccess(r.Context(), in)
	if err != nil {
		writeSignupError(w, err)
		return
	}
	web.OK(w, signupResponse{Success: true, Message: "Early access request received.", Data: conf})
}

// writeSignupError maps service errors to responses. Remote failures become a
// generic message — provider internals never reach the client.
func writeSignupError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		web.Error(w, ve.Msg, http.StatusBadRequest)
		return
	}
	web.Error(w, "subscription failed, please try again later", http.StatusInternalServerError)
}
