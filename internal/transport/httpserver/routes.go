package httpserver

import (
	"net/http"
	"time"

	"relief-portal-go/internal/config"
	"relief-portal-go/internal/transport/httpserver/handler"
	"relief-portal-go/internal/transport/httpserver/middleware"
	"relief-portal-go/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Get("/disasters", handlers.ListDisasters())
		r.Get("/disasters/{id}", handlers.GetDisaster())
		r.Get("/disasters/{id}/overview", handlers.DisasterOverview())
		r.Get("/disasters/{id}/donations", handlers.DisasterDonations())
		r.Get("/disasters/{id}/volunteers", handlers.DisasterVolunteers())

		r.Get("/donations", handlers.ListDonations())
		r.Get("/donations/{id}", handlers.GetDonation())
		r.Get("/donations/{id}/budget", handlers.DonationBudget())
		r.Get("/donations/{id}/sponsors", handlers.DonationSponsors())

		r.Get("/volunteers", handlers.ListVolunteers())
		r.Get("/volunteers/{id}", handlers.GetVolunteer())
		r.Get("/volunteers/{id}/sponsors", handlers.VolunteerSponsors())

		r.Get("/organizations", handlers.ListOrganizations())
		r.Get("/organizations/{id}", handlers.GetOrganization())
		r.Get("/organizations/{id}/overview", handlers.OrganizationOverview())
		r.Get("/organizations/{id}/donations", handlers.OrganizationDonations())
		r.Get("/organizations/{id}/volunteers", handlers.OrganizationVolunteers())

		r.Get("/sponsors", handlers.ListSponsors())
		r.Get("/sponsors/{id}", handlers.GetSponsor())
		r.Get("/sponsors/{id}/overview", handlers.SponsorOverview())
		r.Get("/sponsors/{id}/donations", handlers.SponsorDonations())
		r.Get("/sponsors/{id}/volunteers", handlers.SponsorVolunteers())
		r.Get("/sponsors/{id}/organizations", handlers.SponsorOrganizations())

		r.Get("/session", handlers.GetSession)
		r.Post("/session/login", handlers.Login)
		r.Post("/session/signup", handlers.Signup)
		r.Post("/session/logout", handlers.Logout)
		r.Put("/session/token", handlers.ReplaceToken)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(handlers.Sessions))

			r.Get("/me/profile", handlers.GetProfile)
			r.Put("/me/profile", handlers.UpdateProfile)
			r.Get("/me/aid-requests", handlers.ListAidRequests)
			r.Post("/me/aid-requests", handlers.CreateAidRequest)
			r.Get("/me/contributions", handlers.ListContributions)
			r.Post("/me/contributions", handlers.CreateContribution)
		})
	})

	return r
}
