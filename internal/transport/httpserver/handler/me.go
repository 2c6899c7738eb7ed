package handler

import (
	"net/http"

	"relief-portal-go/internal/domain/user"
)

type profileRequest struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type aidRequestRequest struct {
	DisasterID  string `json:"disaster_id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
}

type contributionRequest struct {
	DonationID  string  `json:"donation_id"`
	VolunteerID string  `json:"volunteer_id"`
	Amount      float64 `json:"amount"`
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Portal.Profile(r.Context())
	if err != nil {
		h.writeServiceError(w, "me.get_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	profile, err := h.Portal.UpdateProfile(r.Context(), user.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.writeServiceError(w, "me.update_profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) ListAidRequests(w http.ResponseWriter, r *http.Request) {
	items, err := h.Portal.AidRequests(r.Context())
	if err != nil {
		h.writeServiceError(w, "me.list_aid_requests", err)
		return
	}
	writeList(w, items)
}

func (h *Handlers) CreateAidRequest(w http.ResponseWriter, r *http.Request) {
	var req aidRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	created, err := h.Portal.SubmitAidRequest(r.Context(), user.AidRequestInput{
		DisasterID:  req.DisasterID,
		Kind:        req.Kind,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, "me.create_aid_request", err, "disaster_id", req.DisasterID)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) ListContributions(w http.ResponseWriter, r *http.Request) {
	items, err := h.Portal.Contributions(r.Context())
	if err != nil {
		h.writeServiceError(w, "me.list_contributions", err)
		return
	}
	writeList(w, items)
}

func (h *Handlers) CreateContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	created, err := h.Portal.RecordContribution(r.Context(), user.ContributionInput{
		DonationID:  req.DonationID,
		VolunteerID: req.VolunteerID,
		Amount:      req.Amount,
	})
	if err != nil {
		h.writeServiceError(w, "me.create_contribution", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
