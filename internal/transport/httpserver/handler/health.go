package handler

import "net/http"

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"session_ready": h.Sessions.Ready(),
	})
}
