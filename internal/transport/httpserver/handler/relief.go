package handler

import (
	"context"
	"net/http"

	"relief-portal-go/internal/domain/relief"
)

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type shareResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

type budgetResponse struct {
	Available bool            `json:"available"`
	Total     float64         `json:"total"`
	Shares    []shareResponse `json:"shares"`
}

type ratioResponse struct {
	Available bool     `json:"available"`
	Percent   *float64 `json:"percent"`
}

type donationResponse struct {
	relief.Donation
	Budget   budgetResponse `json:"budget"`
	Progress ratioResponse  `json:"progress"`
}

type volunteerResponse struct {
	relief.Volunteer
	Fill ratioResponse `json:"fill"`
}

type disasterOverviewResponse struct {
	Disaster   relief.Disaster     `json:"disaster"`
	Donations  []relief.Donation   `json:"donations"`
	Volunteers []volunteerResponse `json:"volunteers"`
}

type organizationOverviewResponse struct {
	Organization relief.Organization `json:"organization"`
	Donations    []relief.Donation   `json:"donations"`
	Volunteers   []volunteerResponse `json:"volunteers"`
}

type sponsorOverviewResponse struct {
	Sponsor       relief.Sponsor        `json:"sponsor"`
	Donations     []relief.Donation     `json:"donations"`
	Volunteers    []volunteerResponse   `json:"volunteers"`
	Organizations []relief.Organization `json:"organizations"`
}

func toRatioResponse(ratio relief.Ratio) ratioResponse {
	if !ratio.Available {
		return ratioResponse{}
	}
	percent := ratio.Percent
	return ratioResponse{Available: true, Percent: &percent}
}

func toDonationResponse(detail relief.DonationDetail) donationResponse {
	shares := make([]shareResponse, 0, len(detail.Budget.Shares))
	for _, share := range detail.Budget.Shares {
		shares = append(shares, shareResponse{Category: share.Category, Amount: share.Amount, Percent: share.Percent})
	}
	return donationResponse{
		Donation: detail.Donation,
		Budget: budgetResponse{
			Available: detail.Budget.Available,
			Total:     detail.Budget.Total,
			Shares:    shares,
		},
		Progress: toRatioResponse(detail.Progress),
	}
}

func toVolunteerResponses(items []relief.Volunteer) []volunteerResponse {
	response := make([]volunteerResponse, 0, len(items))
	for _, item := range items {
		response = append(response, volunteerResponse{Volunteer: item, Fill: toRatioResponse(item.Impact.Fill())})
	}
	return response
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Items: items, Total: len(items)})
}

// listHandler serves a collection that takes no parameters.
func listHandler[T any](h *Handlers, op string, fetch func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fetch(r.Context())
		if err != nil {
			h.writeServiceError(w, op, err)
			return
		}
		writeList(w, items)
	}
}

// relationHandler serves a collection hanging off the {id} in the path.
func relationHandler[T any](h *Handlers, op string, fetch func(context.Context, string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		items, err := fetch(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, op, err, "id", id)
			return
		}
		writeList(w, items)
	}
}

func entityHandler[T any, R any](h *Handlers, op string, fetch func(context.Context, string) (T, error), render func(T) R) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		item, err := fetch(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, op, err, "id", id)
			return
		}
		writeJSON(w, http.StatusOK, render(item))
	}
}

func asIs[T any](item T) T {
	return item
}

func (h *Handlers) ListDisasters() http.HandlerFunc {
	return listHandler(h, "disasters.list", h.Portal.Disasters)
}

func (h *Handlers) GetDisaster() http.HandlerFunc {
	return entityHandler(h, "disasters.get", h.Portal.Disaster, asIs[*relief.Disaster])
}

func (h *Handlers) DisasterDonations() http.HandlerFunc {
	return relationHandler(h, "disasters.donations", h.Portal.DisasterDonations)
}

func (h *Handlers) DisasterVolunteers() http.HandlerFunc {
	return relationHandler(h, "disasters.volunteers", func(ctx context.Context, id string) ([]volunteerResponse, error) {
		items, err := h.Portal.DisasterVolunteers(ctx, id)
		return toVolunteerResponses(items), err
	})
}

func (h *Handlers) DisasterOverview() http.HandlerFunc {
	return entityHandler(h, "disasters.overview", h.Portal.DisasterOverview, func(o *relief.DisasterOverview) disasterOverviewResponse {
		return disasterOverviewResponse{Disaster: o.Disaster, Donations: o.Donations, Volunteers: toVolunteerResponses(o.Volunteers)}
	})
}

func (h *Handlers) ListDonations() http.HandlerFunc {
	return listHandler(h, "donations.list", h.Portal.Donations)
}

func (h *Handlers) GetDonation() http.HandlerFunc {
	return entityHandler(h, "donations.get", h.Portal.Donation, func(detail *relief.DonationDetail) donationResponse {
		return toDonationResponse(*detail)
	})
}

func (h *Handlers) DonationBudget() http.HandlerFunc {
	return entityHandler(h, "donations.budget", h.Portal.Donation, func(detail *relief.DonationDetail) budgetResponse {
		return toDonationResponse(*detail).Budget
	})
}

func (h *Handlers) DonationSponsors() http.HandlerFunc {
	return relationHandler(h, "donations.sponsors", h.Portal.DonationSponsors)
}

func (h *Handlers) ListVolunteers() http.HandlerFunc {
	return listHandler(h, "volunteers.list", func(ctx context.Context) ([]volunteerResponse, error) {
		items, err := h.Portal.Volunteers(ctx)
		return toVolunteerResponses(items), err
	})
}

func (h *Handlers) GetVolunteer() http.HandlerFunc {
	return entityHandler(h, "volunteers.get", h.Portal.Volunteer, func(v *relief.Volunteer) volunteerResponse {
		return volunteerResponse{Volunteer: *v, Fill: toRatioResponse(v.Impact.Fill())}
	})
}

func (h *Handlers) VolunteerSponsors() http.HandlerFunc {
	return relationHandler(h, "volunteers.sponsors", h.Portal.VolunteerSponsors)
}

func (h *Handlers) ListOrganizations() http.HandlerFunc {
	return listHandler(h, "organizations.list", h.Portal.Organizations)
}

func (h *Handlers) GetOrganization() http.HandlerFunc {
	return entityHandler(h, "organizations.get", h.Portal.Organization, asIs[*relief.Organization])
}

func (h *Handlers) OrganizationDonations() http.HandlerFunc {
	return relationHandler(h, "organizations.donations", h.Portal.OrganizationDonations)
}

func (h *Handlers) OrganizationVolunteers() http.HandlerFunc {
	return relationHandler(h, "organizations.volunteers", func(ctx context.Context, id string) ([]volunteerResponse, error) {
		items, err := h.Portal.OrganizationVolunteers(ctx, id)
		return toVolunteerResponses(items), err
	})
}

func (h *Handlers) OrganizationOverview() http.HandlerFunc {
	return entityHandler(h, "organizations.overview", h.Portal.OrganizationOverview, func(o *relief.OrganizationOverview) organizationOverviewResponse {
		return organizationOverviewResponse{Organization: o.Organization, Donations: o.Donations, Volunteers: toVolunteerResponses(o.Volunteers)}
	})
}

func (h *Handlers) ListSponsors() http.HandlerFunc {
	return listHandler(h, "sponsors.list", h.Portal.Sponsors)
}

func (h *Handlers) GetSponsor() http.HandlerFunc {
	return entityHandler(h, "sponsors.get", h.Portal.Sponsor, asIs[*relief.Sponsor])
}

func (h *Handlers) SponsorDonations() http.HandlerFunc {
	return relationHandler(h, "sponsors.donations", h.Portal.SponsorDonations)
}

func (h *Handlers) SponsorVolunteers() http.HandlerFunc {
	return relationHandler(h, "sponsors.volunteers", func(ctx context.Context, id string) ([]volunteerResponse, error) {
		items, err := h.Portal.SponsorVolunteers(ctx, id)
		return toVolunteerResponses(items), err
	})
}

func (h *Handlers) SponsorOrganizations() http.HandlerFunc {
	return relationHandler(h, "sponsors.organizations", h.Portal.SponsorOrganizations)
}

func (h *Handlers) SponsorOverview() http.HandlerFunc {
	return entityHandler(h, "sponsors.overview", h.Portal.SponsorOverview, func(o *relief.SponsorOverview) sponsorOverviewResponse {
		return sponsorOverviewResponse{
			Sponsor:       o.Sponsor,
			Donations:     o.Donations,
			Volunteers:    toVolunteerResponses(o.Volunteers),
			Organizations: o.Organizations,
		}
	})
}
