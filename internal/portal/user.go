package portal

import (
	"context"
	"errors"

	"relief-portal-go/internal/cache"
	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/remote"
	"relief-portal-go/internal/session"
)

// userScoped reads through the cache under the signed-in user's scope.
// The session gate is held for the whole read, so a sign out waits for it
// and then evicts whatever it stored.
func userScoped[T any](ctx context.Context, p *Portal, entity string, fetch func(context.Context, session.Identity) (T, error)) (T, error) {
	var result T
	err := p.session.WithIdentity(ctx, func(identity session.Identity) error {
		value, err := cache.Fetch(ctx, p.cache, cache.UserKey(identity.ID, entity), func(ctx context.Context) (T, error) {
			return fetch(ctx, identity)
		})
		result = value
		return err
	})
	return result, err
}

// Profile returns the user's profile. Accounts that never saved one get a
// blank profile carrying their sign-in email.
func (p *Portal) Profile(ctx context.Context) (*user.Profile, error) {
	return userScoped(ctx, p, entityProfile, func(ctx context.Context, identity session.Identity) (*user.Profile, error) {
		profile, err := p.users.GetProfile(ctx, identity.ID)
		if errors.Is(err, user.ErrProfileNotFound) {
			return &user.Profile{ID: remote.ID(identity.ID), Email: identity.Email}, nil
		}
		return profile, err
	})
}

func (p *Portal) AidRequests(ctx context.Context) ([]user.AidRequest, error) {
	return userScoped(ctx, p, entityAidRequests, func(ctx context.Context, identity session.Identity) ([]user.AidRequest, error) {
		return p.users.ListAidRequests(ctx, identity.ID)
	})
}

func (p *Portal) Contributions(ctx context.Context) ([]user.Contribution, error) {
	return userScoped(ctx, p, entityContributions, func(ctx context.Context, identity session.Identity) ([]user.Contribution, error) {
		return p.users.ListContributions(ctx, identity.ID)
	})
}

// writes collects cache changes made while the session gate is held.
// Subscribers hear about them once the gate is released.
type writes struct {
	cache *cache.Cache
	held  []*cache.Notifications
}

func (w *writes) invalidate(prefix cache.Key) {
	_, n := w.cache.InvalidateDeferred(prefix)
	w.held = append(w.held, n)
}

func (w *writes) set(key cache.Key, value any) {
	w.held = append(w.held, w.cache.SetDeferred(key, value))
}

func (w *writes) deliver() {
	for _, n := range w.held {
		n.Deliver()
	}
}

func (p *Portal) UpdateProfile(ctx context.Context, input user.ProfileInput) (*user.Profile, error) {
	var result *user.Profile
	changes := &writes{cache: p.cache}
	defer changes.deliver()

	err := p.session.WithIdentity(ctx, func(identity session.Identity) error {
		profile, err := p.users.UpdateProfile(ctx, identity.ID, input)
		if err != nil {
			return err
		}
		changes.invalidate(cache.UserScope(identity.ID))
		changes.set(cache.UserKey(identity.ID, entityProfile), profile)
		result = profile
		return nil
	})
	return result, err
}

func (p *Portal) SubmitAidRequest(ctx context.Context, input user.AidRequestInput) (*user.AidRequest, error) {
	var result *user.AidRequest
	changes := &writes{cache: p.cache}
	defer changes.deliver()

	err := p.session.WithIdentity(ctx, func(identity session.Identity) error {
		request, err := p.users.SubmitAidRequest(ctx, identity.ID, input)
		if err != nil {
			return err
		}
		changes.invalidate(cache.UserScope(identity.ID))
		result = request
		return nil
	})
	return result, err
}

// RecordContribution also marks the target campaign stale since its
// totals change on the server. Disaster, sponsor and organization entries
// embed campaigns, so their relations and overviews go stale as well.
func (p *Portal) RecordContribution(ctx context.Context, input user.ContributionInput) (*user.Contribution, error) {
	var result *user.Contribution
	changes := &writes{cache: p.cache}
	defer changes.deliver()

	err := p.session.WithIdentity(ctx, func(identity session.Identity) error {
		contribution, err := p.users.RecordContribution(ctx, identity.ID, input)
		if err != nil {
			return err
		}
		changes.invalidate(cache.UserScope(identity.ID))
		if contribution.DonationID != "" {
			changes.invalidate(entityKey(entityDonation, contribution.DonationID.String()))
			changes.invalidate(listKey(entityDonation))
		}
		if contribution.VolunteerID != "" {
			changes.invalidate(entityKey(entityVolunteer, contribution.VolunteerID.String()))
			changes.invalidate(listKey(entityVolunteer))
		}
		for _, entity := range []string{entityDisaster, entitySponsor, entityOrganization} {
			changes.invalidate(cache.NewKey(entity))
		}
		result = contribution
		return nil
	})
	return result, err
}
