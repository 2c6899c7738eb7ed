package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"relief-portal-go/internal/remote"

	"github.com/google/uuid"
)

type Service struct {
	store remote.Store
	now   func() time.Time
}

func NewService(store remote.Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	profiles := make([]Profile, 0, 1)
	if err := s.store.Select(ctx, remote.From(TableProfiles).Eq("id", userID), &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%s %s: %w", TableProfiles, userID, ErrProfileNotFound)
	}
	return &profiles[0], nil
}

// UpdateProfile writes the user's profile and recomputes whether it is
// complete enough to take part in aid requests.
func (s *Service) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*Profile, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	email := strings.TrimSpace(input.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, ErrInvalidCoordinates
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90 || *input.Longitude < -180 || *input.Longitude > 180) {
		return nil, ErrInvalidCoordinates
	}

	now := s.now().UTC()
	profile := Profile{
		ID:        remote.ID(userID),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		UpdatedAt: &now,
	}
	profile.ProfileComplete = isComplete(profile)

	if err := s.store.Upsert(ctx, TableProfiles, "id", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) ListAidRequests(ctx context.Context, userID string) ([]AidRequest, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	requests := make([]AidRequest, 0)
	query := remote.From(TableAidRequests).Eq("user_id", userID).OrderBy("created_at", true)
	if err := s.store.Select(ctx, query, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []AidRequest{}
	}
	return requests, nil
}

func (s *Service) SubmitAidRequest(ctx context.Context, userID string, input AidRequestInput) (*AidRequest, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	disasterID := strings.TrimSpace(input.DisasterID)
	if disasterID == "" {
		return nil, ErrDisasterRequired
	}
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind == "" {
		return nil, ErrKindRequired
	}

	request := AidRequest{
		ID:          remote.ID(uuid.NewString()),
		UserID:      remote.ID(userID),
		DisasterID:  remote.ID(disasterID),
		Kind:        kind,
		Description: strings.TrimSpace(input.Description),
		Status:      AidStatusOpen,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, TableAidRequests, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

func (s *Service) ListContributions(ctx context.Context, userID string) ([]Contribution, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	contributions := make([]Contribution, 0)
	query := remote.From(TableContributions).Eq("user_id", userID).OrderBy("created_at", true)
	if err := s.store.Select(ctx, query, &contributions); err != nil {
		return nil, err
	}
	if contributions == nil {
		contributions = []Contribution{}
	}
	return contributions, nil
}

func (s *Service) RecordContribution(ctx context.Context, userID string, input ContributionInput) (*Contribution, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	donationID := strings.TrimSpace(input.DonationID)
	volunteerID := strings.TrimSpace(input.VolunteerID)
	if (donationID == "") == (volunteerID == "") {
		return nil, ErrContributionTarget
	}
	if input.Amount < 0 || (donationID != "" && input.Amount == 0) {
		return nil, ErrInvalidAmount
	}

	contribution := Contribution{
		ID:          remote.ID(uuid.NewString()),
		UserID:      remote.ID(userID),
		DonationID:  remote.ID(donationID),
		VolunteerID: remote.ID(volunteerID),
		Amount:      input.Amount,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Insert(ctx, TableContributions, &contribution); err != nil {
		return nil, err
	}
	return &contribution, nil
}

func isComplete(profile Profile) bool {
	return profile.FirstName != "" &&
		profile.LastName != "" &&
		profile.Email != "" &&
		profile.Phone != "" &&
		profile.Latitude != nil &&
		profile.Longitude != nil
}
