// Package portal is the read and write surface the gateway serves: domain
// services behind the query cache, with user-scoped data gated by the
// session.
package portal

import (
	"context"

	"relief-portal-go/internal/cache"
	"relief-portal-go/internal/domain/relief"
	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/session"
	"relief-portal-go/pkg/logger"
)

type Portal struct {
	cache   *cache.Cache
	session *session.Manager
	relief  *relief.Service
	users   *user.Service
	log     logger.Logger
}

func New(c *cache.Cache, sessions *session.Manager, reliefService *relief.Service, users *user.Service, log logger.Logger) *Portal {
	if log == nil {
		log = logger.Nop()
	}
	return &Portal{
		cache:   c,
		session: sessions,
		relief:  reliefService,
		users:   users,
		log:     log.With("component", "portal"),
	}
}

func (p *Portal) Session() *session.Manager {
	return p.session
}

// Refresh marks every cached entry under prefix stale.
func (p *Portal) Refresh(prefix ...string) int {
	return p.cache.Invalidate(cache.Key(prefix))
}

func (p *Portal) Disasters(ctx context.Context) ([]relief.Disaster, error) {
	return cache.Fetch(ctx, p.cache, listKey(entityDisaster), p.relief.ListDisasters)
}

func (p *Portal) Disaster(ctx context.Context, id string) (*relief.Disaster, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDisaster, id), func(ctx context.Context) (*relief.Disaster, error) {
		return p.relief.GetDisaster(ctx, id)
	})
}

func (p *Portal) DisasterDonations(ctx context.Context, id string) ([]relief.Donation, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDisaster, id, "donations"), func(ctx context.Context) ([]relief.Donation, error) {
		return p.relief.DonationsForDisaster(ctx, id)
	})
}

func (p *Portal) DisasterVolunteers(ctx context.Context, id string) ([]relief.Volunteer, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDisaster, id, "volunteers"), func(ctx context.Context) ([]relief.Volunteer, error) {
		return p.relief.VolunteersForDisaster(ctx, id)
	})
}

func (p *Portal) DisasterOverview(ctx context.Context, id string) (*relief.DisasterOverview, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDisaster, id, "overview"), func(ctx context.Context) (*relief.DisasterOverview, error) {
		return p.relief.DisasterOverview(ctx, id)
	})
}

func (p *Portal) Donations(ctx context.Context) ([]relief.Donation, error) {
	return cache.Fetch(ctx, p.cache, listKey(entityDonation), p.relief.ListDonations)
}

func (p *Portal) Donation(ctx context.Context, id string) (*relief.DonationDetail, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDonation, id), func(ctx context.Context) (*relief.DonationDetail, error) {
		return p.relief.DonationDetail(ctx, id)
	})
}

func (p *Portal) DonationSponsors(ctx context.Context, id string) ([]relief.Sponsor, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityDonation, id, "sponsors"), func(ctx context.Context) ([]relief.Sponsor, error) {
		return p.relief.SponsorsForDonation(ctx, id)
	})
}

func (p *Portal) Volunteers(ctx context.Context) ([]relief.Volunteer, error) {
	return cache.Fetch(ctx, p.cache, listKey(entityVolunteer), p.relief.ListVolunteers)
}

func (p *Portal) Volunteer(ctx context.Context, id string) (*relief.Volunteer, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityVolunteer, id), func(ctx context.Context) (*relief.Volunteer, error) {
		return p.relief.GetVolunteer(ctx, id)
	})
}

func (p *Portal) VolunteerSponsors(ctx context.Context, id string) ([]relief.Sponsor, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityVolunteer, id, "sponsors"), func(ctx context.Context) ([]relief.Sponsor, error) {
		return p.relief.SponsorsForVolunteer(ctx, id)
	})
}

func (p *Portal) Organizations(ctx context.Context) ([]relief.Organization, error) {
	return cache.Fetch(ctx, p.cache, listKey(entityOrganization), p.relief.ListOrganizations)
}

func (p *Portal) Organization(ctx context.Context, id string) (*relief.Organization, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityOrganization, id), func(ctx context.Context) (*relief.Organization, error) {
		return p.relief.GetOrganization(ctx, id)
	})
}

func (p *Portal) OrganizationDonations(ctx context.Context, id string) ([]relief.Donation, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityOrganization, id, "donations"), func(ctx context.Context) ([]relief.Donation, error) {
		return p.relief.DonationsForOrganization(ctx, id)
	})
}

func (p *Portal) OrganizationVolunteers(ctx context.Context, id string) ([]relief.Volunteer, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityOrganization, id, "volunteers"), func(ctx context.Context) ([]relief.Volunteer, error) {
		return p.relief.VolunteersForOrganization(ctx, id)
	})
}

func (p *Portal) OrganizationOverview(ctx context.Context, id string) (*relief.OrganizationOverview, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entityOrganization, id, "overview"), func(ctx context.Context) (*relief.OrganizationOverview, error) {
		return p.relief.OrganizationOverview(ctx, id)
	})
}

func (p *Portal) Sponsors(ctx context.Context) ([]relief.Sponsor, error) {
	return cache.Fetch(ctx, p.cache, listKey(entitySponsor), p.relief.ListSponsors)
}

func (p *Portal) Sponsor(ctx context.Context, id string) (*relief.Sponsor, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entitySponsor, id), func(ctx context.Context) (*relief.Sponsor, error) {
		return p.relief.GetSponsor(ctx, id)
	})
}

func (p *Portal) SponsorDonations(ctx context.Context, id string) ([]relief.Donation, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entitySponsor, id, "donations"), func(ctx context.Context) ([]relief.Donation, error) {
		return p.relief.DonationsForSponsor(ctx, id)
	})
}

func (p *Portal) SponsorVolunteers(ctx context.Context, id string) ([]relief.Volunteer, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entitySponsor, id, "volunteers"), func(ctx context.Context) ([]relief.Volunteer, error) {
		return p.relief.VolunteersForSponsor(ctx, id)
	})
}

func (p *Portal) SponsorOrganizations(ctx context.Context, id string) ([]relief.Organization, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entitySponsor, id, "organizations"), func(ctx context.Context) ([]relief.Organization, error) {
		return p.relief.OrganizationsForSponsor(ctx, id)
	})
}

func (p *Portal) SponsorOverview(ctx context.Context, id string) (*relief.SponsorOverview, error) {
	return cache.Fetch(ctx, p.cache, entityKey(entitySponsor, id, "overview"), func(ctx context.Context) (*relief.SponsorOverview, error) {
		return p.relief.SponsorOverview(ctx, id)
	})
}
