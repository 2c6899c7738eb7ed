package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func idParam(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	if strings.ContainsAny(id, ",()\"") {
		return "", fmt.Errorf("invalid id")
	}
	return id, nil
}
