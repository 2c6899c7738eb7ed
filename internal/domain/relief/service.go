package relief

import (
	"context"
	"fmt"

	"relief-portal-go/internal/remote"
)

type Service struct {
	store   remote.Reader
	storage remote.Storage
	bucket  string
}

func NewService(store remote.Reader, storage remote.Storage, bucket string) *Service {
	return &Service{store: store, storage: storage, bucket: bucket}
}

func (s *Service) ListDisasters(ctx context.Context) ([]Disaster, error) {
	return selectRows[Disaster](ctx, s.store, remote.From(TableDisasters).OrderBy("date", true))
}

func (s *Service) GetDisaster(ctx context.Context, id string) (*Disaster, error) {
	return selectOne[Disaster](ctx, s.store, TableDisasters, id, ErrDisasterNotFound)
}

func (s *Service) ListDonations(ctx context.Context) ([]Donation, error) {
	rows, err := selectRows[Donation](ctx, s.store, remote.From(TableDonations).OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	return s.withDonationImages(rows), nil
}

func (s *Service) GetDonation(ctx context.Context, id string) (*Donation, error) {
	donation, err := selectOne[Donation](ctx, s.store, TableDonations, id, ErrDonationNotFound)
	if err != nil {
		return nil, err
	}
	donation.ImageURL = s.assetURL(donation.Image)
	return donation, nil
}

func (s *Service) DonationsByIDs(ctx context.Context, ids []string) ([]Donation, error) {
	rows, err := selectRows[Donation](ctx, s.store, remote.From(TableDonations).In("id", ids))
	if err != nil {
		return nil, err
	}
	return s.withDonationImages(rows), nil
}

// DonationDetail adds the budget breakdown and funding progress to a donation.
func (s *Service) DonationDetail(ctx context.Context, id string) (*DonationDetail, error) {
	donation, err := s.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DonationDetail{
		Donation: *donation,
		Budget:   Breakdown(donation.BudgetAllocation),
		Progress: Progress(donation.Raised, donation.Goal),
	}, nil
}

func (s *Service) ListVolunteers(ctx context.Context) ([]Volunteer, error) {
	return selectRows[Volunteer](ctx, s.store, remote.From(TableVolunteers).OrderBy("name", false))
}

func (s *Service) GetVolunteer(ctx context.Context, id string) (*Volunteer, error) {
	return selectOne[Volunteer](ctx, s.store, TableVolunteers, id, ErrVolunteerNotFound)
}

func (s *Service) VolunteersByIDs(ctx context.Context, ids []string) ([]Volunteer, error) {
	return selectRows[Volunteer](ctx, s.store, remote.From(TableVolunteers).In("id", ids))
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := selectRows[Organization](ctx, s.store, remote.From(TableOrganizations).OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	return s.withOrganizationLogos(rows), nil
}

func (s *Service) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	org, err := selectOne[Organization](ctx, s.store, TableOrganizations, id, ErrOrganizationNotFound)
	if err != nil {
		return nil, err
	}
	normalizeOrganization(org)
	org.LogoURL = s.assetURL(org.Logo)
	return org, nil
}

func (s *Service) OrganizationsByIDs(ctx context.Context, ids []string) ([]Organization, error) {
	rows, err := selectRows[Organization](ctx, s.store, remote.From(TableOrganizations).In("id", ids))
	if err != nil {
		return nil, err
	}
	return s.withOrganizationLogos(rows), nil
}

func (s *Service) ListSponsors(ctx context.Context) ([]Sponsor, error) {
	rows, err := selectRows[Sponsor](ctx, s.store, remote.From(TableSponsors).OrderBy("name", false))
	if err != nil {
		return nil, err
	}
	return s.withSponsorLogos(rows), nil
}

func (s *Service) GetSponsor(ctx context.Context, id string) (*Sponsor, error) {
	sponsor, err := selectOne[Sponsor](ctx, s.store, TableSponsors, id, ErrSponsorNotFound)
	if err != nil {
		return nil, err
	}
	sponsor.LogoURL = s.assetURL(sponsor.Logo)
	return sponsor, nil
}

func (s *Service) SponsorsByIDs(ctx context.Context, ids []string) ([]Sponsor, error) {
	rows, err := selectRows[Sponsor](ctx, s.store, remote.From(TableSponsors).In("id", ids))
	if err != nil {
		return nil, err
	}
	return s.withSponsorLogos(rows), nil
}

func (s *Service) withDonationImages(rows []Donation) []Donation {
	for i := range rows {
		rows[i].ImageURL = s.assetURL(rows[i].Image)
	}
	return rows
}

func (s *Service) withOrganizationLogos(rows []Organization) []Organization {
	for i := range rows {
		normalizeOrganization(&rows[i])
		rows[i].LogoURL = s.assetURL(rows[i].Logo)
	}
	return rows
}

func (s *Service) withSponsorLogos(rows []Sponsor) []Sponsor {
	for i := range rows {
		rows[i].LogoURL = s.assetURL(rows[i].Logo)
	}
	return rows
}

func (s *Service) assetURL(path string) string {
	if s.storage == nil || path == "" {
		return ""
	}
	return s.storage.PublicURL(s.bucket, path)
}

// normalizeOrganization turns the stored tag list into a set.
func normalizeOrganization(org *Organization) {
	if org.Tags == nil {
		org.Tags = []string{}
		return
	}
	seen := make(map[string]struct{}, len(org.Tags))
	tags := org.Tags[:0]
	for _, tag := range org.Tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	org.Tags = tags
}

// selectRows never returns a nil slice on success.
func selectRows[T any](ctx context.Context, store remote.Reader, query remote.Query) ([]T, error) {
	rows := make([]T, 0)
	if err := store.Select(ctx, query, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func selectOne[T any](ctx context.Context, store remote.Reader, table, id string, notFound error) (*T, error) {
	rows, err := selectRows[T](ctx, store, remote.From(table).Eq("id", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, notFound)
	}
	return &rows[0], nil
}
