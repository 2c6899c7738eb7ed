package handler

import (
	"net/http"

	"relief-portal-go/internal/session"
)

type sessionResponse struct {
	State    string            `json:"state"`
	Identity *session.Identity `json:"identity"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type tokenRequest struct {
	AccessToken string `json:"access_token"`
}

type signupResponse struct {
	sessionResponse
	PendingConfirmation bool `json:"pending_confirmation"`
}

func (h *Handlers) currentSession() sessionResponse {
	response := sessionResponse{State: h.Sessions.State().String()}
	if identity, ok := h.Sessions.Identity(); ok {
		response.Identity = &identity
	}
	return response
}

// GetSession waits for the initial session check so a restored session is
// never reported as anonymous.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Wait(r.Context()); err != nil {
		h.writeServiceError(w, "session.get", err)
		return
	}
	writeJSON(w, http.StatusOK, h.currentSession())
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	if _, err := h.Sessions.Login(r.Context(), req.Email, req.Password); err != nil {
		h.writeServiceError(w, "session.login", err, "email", req.Email)
		return
	}
	writeJSON(w, http.StatusOK, h.currentSession())
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	result, err := h.Sessions.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeServiceError(w, "session.signup", err, "email", req.Email)
		return
	}

	status := http.StatusCreated
	if result.PendingConfirmation {
		status = http.StatusAccepted
	}
	writeJSON(w, status, signupResponse{
		sessionResponse:     h.currentSession(),
		PendingConfirmation: result.PendingConfirmation,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context()); err != nil {
		h.writeServiceError(w, "session.logout", err)
		return
	}
	writeJSON(w, http.StatusOK, h.currentSession())
}

// ReplaceToken applies a session obtained elsewhere, such as a refreshed
// token. An empty token signs out.
func (h *Handlers) ReplaceToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	if err := h.Sessions.HandleSessionChanged(r.Context(), req.AccessToken); err != nil {
		h.writeServiceError(w, "session.replace_token", err)
		return
	}
	writeJSON(w, http.StatusOK, h.currentSession())
}
