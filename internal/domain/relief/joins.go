package relief

import (
	"context"

	"relief-portal-go/internal/join"
	"relief-portal-go/internal/remote"

	"golang.org/x/sync/errgroup"
)

func (s *Service) DonationsForDisaster(ctx context.Context, disasterID string) ([]Donation, error) {
	return join.Resolve(ctx, s.store, DisasterDonations, disasterID, s.DonationsByIDs, donationID)
}

func (s *Service) VolunteersForDisaster(ctx context.Context, disasterID string) ([]Volunteer, error) {
	return join.Resolve(ctx, s.store, DisasterVolunteers, disasterID, s.VolunteersByIDs, volunteerID)
}

func (s *Service) DonationsForSponsor(ctx context.Context, sponsorID string) ([]Donation, error) {
	return join.Resolve(ctx, s.store, SponsorDonations, sponsorID, s.DonationsByIDs, donationID)
}

func (s *Service) VolunteersForSponsor(ctx context.Context, sponsorID string) ([]Volunteer, error) {
	return join.Resolve(ctx, s.store, SponsorVolunteers, sponsorID, s.VolunteersByIDs, volunteerID)
}

func (s *Service) DonationsForOrganization(ctx context.Context, organizationID string) ([]Donation, error) {
	return join.Resolve(ctx, s.store, OrganizationDonations, organizationID, s.DonationsByIDs, donationID)
}

func (s *Service) VolunteersForOrganization(ctx context.Context, organizationID string) ([]Volunteer, error) {
	return join.Resolve(ctx, s.store, OrganizationVolunteers, organizationID, s.VolunteersByIDs, volunteerID)
}

func (s *Service) SponsorsForDonation(ctx context.Context, donationID string) ([]Sponsor, error) {
	return join.Resolve(ctx, s.store, DonationSponsors, donationID, s.SponsorsByIDs, sponsorID)
}

func (s *Service) SponsorsForVolunteer(ctx context.Context, volunteerID string) ([]Sponsor, error) {
	return join.Resolve(ctx, s.store, VolunteerSponsors, volunteerID, s.SponsorsByIDs, sponsorID)
}

// OrganizationsForSponsor reaches organizations through both the sponsor's
// donation links and volunteer links; an organization found on both paths is
// returned once.
func (s *Service) OrganizationsForSponsor(ctx context.Context, sponsorID string) ([]Organization, error) {
	hops := []join.Hop{
		{Link: SponsorDonations, Targets: s.organizationIDsOf(TableDonations)},
		{Link: SponsorVolunteers, Targets: s.organizationIDsOf(TableVolunteers)},
	}
	return join.ResolveVia(ctx, s.store, "sponsor_organizations", sponsorID, hops, s.OrganizationsByIDs, organizationID)
}

func (s *Service) organizationIDsOf(table string) func(context.Context, []string) ([]string, error) {
	return func(ctx context.Context, ids []string) ([]string, error) {
		type orgRef struct {
			OrganizationID remote.ID `json:"org_id" gorm:"column:org_id"`
		}

		refs, err := selectRows[orgRef](ctx, s.store, remote.From(table).Select("org_id").In("id", ids))
		if err != nil {
			return nil, err
		}

		result := make([]string, 0, len(refs))
		for _, ref := range refs {
			result = append(result, ref.OrganizationID.String())
		}
		return join.Unique(result), nil
	}
}

// DisasterOverview loads a disaster with its campaigns. Any failing read
// fails the whole overview.
func (s *Service) DisasterOverview(ctx context.Context, disasterID string) (*DisasterOverview, error) {
	var overview DisasterOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		disaster, err := s.GetDisaster(gctx, disasterID)
		if err != nil {
			return err
		}
		overview.Disaster = *disaster
		return nil
	})
	g.Go(func() error {
		donations, err := s.DonationsForDisaster(gctx, disasterID)
		overview.Donations = donations
		return err
	})
	g.Go(func() error {
		volunteers, err := s.VolunteersForDisaster(gctx, disasterID)
		overview.Volunteers = volunteers
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *Service) OrganizationOverview(ctx context.Context, organizationID string) (*OrganizationOverview, error) {
	var overview OrganizationOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		org, err := s.GetOrganization(gctx, organizationID)
		if err != nil {
			return err
		}
		overview.Organization = *org
		return nil
	})
	g.Go(func() error {
		donations, err := s.DonationsForOrganization(gctx, organizationID)
		overview.Donations = donations
		return err
	})
	g.Go(func() error {
		volunteers, err := s.VolunteersForOrganization(gctx, organizationID)
		overview.Volunteers = volunteers
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

func (s *Service) SponsorOverview(ctx context.Context, sponsorID string) (*SponsorOverview, error) {
	var overview SponsorOverview

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sponsor, err := s.GetSponsor(gctx, sponsorID)
		if err != nil {
			return err
		}
		overview.Sponsor = *sponsor
		return nil
	})
	g.Go(func() error {
		donations, err := s.DonationsForSponsor(gctx, sponsorID)
		overview.Donations = donations
		return err
	})
	g.Go(func() error {
		volunteers, err := s.VolunteersForSponsor(gctx, sponsorID)
		overview.Volunteers = volunteers
		return err
	})
	g.Go(func() error {
		orgs, err := s.OrganizationsForSponsor(gctx, sponsorID)
		overview.Organizations = orgs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
