package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/join"
	"relief-portal-go/internal/remote"
	"relief-portal-go/internal/session"
)

// statusClientClosedRequest is nginx's code for a client that went away
// before the response was ready.
const statusClientClosedRequest = 499

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

var validationErrors = []error{
	user.ErrUserIDRequired,
	user.ErrInvalidEmail,
	user.ErrInvalidCoordinates,
	user.ErrDisasterRequired,
	user.ErrKindRequired,
	user.ErrContributionTarget,
	user.ErrInvalidAmount,
}

// writeServiceError maps a portal error onto the response envelope. Caller
// mistakes are logged as business errors, everything else as internal.
func (h *Handlers) writeServiceError(w http.ResponseWriter, op string, err error, args ...any) {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			h.log.BusinessError(op+": invalid request", err, args...)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	var (
		sessionErr *session.Error
		joinErr    *join.ResolutionError
		readErr    *remote.ReadError
		writeErr   *remote.WriteError
	)
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		h.log.BusinessError(op+": not authenticated", err, args...)
		writeError(w, http.StatusUnauthorized, "not_authenticated", "sign in required")
	case errors.As(err, &sessionErr):
		h.log.BusinessError(op+": session rejected", err, args...)
		status := sessionErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusUnauthorized
		}
		writeError(w, status, "session_rejected", sessionErr.Message)
	case errors.Is(err, remote.ErrNotFound):
		h.log.BusinessError(op+": not found", err, args...)
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &joinErr):
		h.log.InternalError(op+": join failed", err, append(args, "relation", joinErr.Relation, "step", string(joinErr.Step))...)
		writeError(w, http.StatusBadGateway, "join_failed", err.Error())
	case errors.As(err, &readErr):
		h.log.InternalError(op+": remote read failed", err, append(args, "table", readErr.Table, "status", readErr.Status)...)
		writeError(w, http.StatusBadGateway, "remote_read_failed", readErr.Message)
	case errors.As(err, &writeErr):
		h.log.InternalError(op+": remote write failed", err, append(args, "table", writeErr.Table, "status", writeErr.Status)...)
		status := http.StatusBadGateway
		if writeErr.Status == http.StatusForbidden || writeErr.Status == http.StatusConflict {
			status = writeErr.Status
		}
		writeError(w, status, "remote_write_failed", writeErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		h.log.InternalError(op+": timed out", err, args...)
		writeError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, context.Canceled):
		h.log.Debug(op+": request cancelled", args...)
		writeError(w, statusClientClosedRequest, "request_cancelled", "request cancelled")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
