package portal

import (
	"context"
	"errors"
	"testing"
	"time"

	"relief-portal-go/internal/cache"
	"relief-portal-go/internal/domain/relief"
	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/remote"
	"relief-portal-go/internal/remote/remotetest"
	"relief-portal-go/internal/session"
	"relief-portal-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

var accounts = map[string]session.Identity{
	"token-u": {ID: "u", Email: "u@example.com"},
	"token-v": {ID: "v", Email: "v@example.com"},
}

func (fakeAuth) SignIn(ctx context.Context, email, password string) (session.Credentials, error) {
	for token, identity := range accounts {
		if identity.Email == email && password == "pw" {
			return session.Credentials{AccessToken: token, Identity: identity}, nil
		}
	}
	return session.Credentials{}, &session.Error{Message: "Invalid login credentials"}
}

func (fakeAuth) SignUp(ctx context.Context, email, password, name string) (session.Credentials, error) {
	return session.Credentials{}, &session.Error{Message: "signups disabled"}
}

func (fakeAuth) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (fakeAuth) User(ctx context.Context, accessToken string) (session.Identity, error) {
	identity, ok := accounts[accessToken]
	if !ok {
		return session.Identity{}, &session.Error{Message: "invalid JWT"}
	}
	return identity, nil
}

type fixture struct {
	portal  *Portal
	store   *remotetest.Store
	cache   *cache.Cache
	session *session.Manager
}

func newFixture(t *testing.T, token string) fixture {
	t.Helper()
	store := remotetest.NewStore()
	c := cache.New(cache.Options{}, logger.Nop())
	sessions := session.NewManager(fakeAuth{}, c, logger.Nop())
	require.NoError(t, sessions.Start(context.Background(), token))

	reliefService := relief.NewService(store, remote.NewPublicStorage("https://example.supabase.co"), "assets")
	p := New(c, sessions, reliefService, user.NewService(store), logger.Nop())
	return fixture{portal: p, store: store, cache: c, session: sessions}
}

func TestPublicReadsAreCached(t *testing.T) {
	f := newFixture(t, "")
	f.store.Seed(relief.TableDisasters, map[string]any{"id": 1, "name": "River flood"})

	first, err := f.portal.Disasters(context.Background())
	require.NoError(t, err)
	second, err := f.portal.Disasters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.store.Calls(relief.TableDisasters))

	assert.Equal(t, 1, f.portal.Refresh("disasters"))
	_, err = f.portal.Disasters(context.Background())
	require.NoError(t, err)
}

func TestRelationEntriesShareEntityPrefix(t *testing.T) {
	f := newFixture(t, "")
	f.store.Seed(relief.TableSponsors, map[string]any{"id": 1, "name": "Acme"})

	_, err := f.portal.Sponsor(context.Background(), "1")
	require.NoError(t, err)
	_, err = f.portal.SponsorDonations(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 2, f.portal.Refresh("sponsor", "1"))
}

func TestUserReadsRequireSession(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.portal.Profile(context.Background())
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	assert.Empty(t, f.store.Queries())
}

func TestProfileFallsBackToBlank(t *testing.T) {
	f := newFixture(t, "token-u")

	profile, err := f.portal.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remote.ID("u"), profile.ID)
	assert.Equal(t, "u@example.com", profile.Email)
	assert.False(t, profile.ProfileComplete)
}

func TestLogoutEvictsUserDataBeforeNextUser(t *testing.T) {
	f := newFixture(t, "token-u")
	f.store.Seed(user.TableProfiles,
		map[string]any{"id": "u", "first_name": "Uma"},
		map[string]any{"id": "v", "first_name": "Vic"},
	)

	profile, err := f.portal.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Uma", profile.FirstName)

	require.NoError(t, f.session.Logout(context.Background()))
	_, ok := f.cache.Peek(cache.UserKey("u", entityProfile))
	assert.False(t, ok)

	_, err = f.session.Login(context.Background(), "v@example.com", "pw")
	require.NoError(t, err)

	profile, err = f.portal.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Vic", profile.FirstName)
}

func TestUpdateProfileRefreshesCachedProfile(t *testing.T) {
	f := newFixture(t, "token-u")

	_, err := f.portal.Profile(context.Background())
	require.NoError(t, err)

	updated, err := f.portal.UpdateProfile(context.Background(), user.ProfileInput{FirstName: "Uma", Email: "u@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Uma", updated.FirstName)

	calls := f.store.Calls(user.TableProfiles)
	profile, err := f.portal.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Uma", profile.FirstName)
	assert.Equal(t, calls, f.store.Calls(user.TableProfiles))
}

func TestWriteFailureLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t, "token-u")
	f.store.FailWrites(user.TableAidRequests, &remote.WriteError{Table: user.TableAidRequests, Status: 403, Message: "denied"})

	requests, err := f.portal.AidRequests(context.Background())
	require.NoError(t, err)
	require.Empty(t, requests)

	_, err = f.portal.SubmitAidRequest(context.Background(), user.AidRequestInput{DisasterID: "1", Kind: "food"})
	var writeErr *remote.WriteError
	require.True(t, errors.As(err, &writeErr))

	entry, ok := f.cache.Peek(cache.UserKey("u", entityAidRequests))
	require.True(t, ok)
	assert.Equal(t, cache.StatusFulfilled, entry.Status)
}

func TestSubmitAidRequestInvalidatesUserScope(t *testing.T) {
	f := newFixture(t, "token-u")

	_, err := f.portal.AidRequests(context.Background())
	require.NoError(t, err)

	_, err = f.portal.SubmitAidRequest(context.Background(), user.AidRequestInput{DisasterID: "1", Kind: "food"})
	require.NoError(t, err)

	entry, ok := f.cache.Peek(cache.UserKey("u", entityAidRequests))
	require.True(t, ok)
	assert.NotEqual(t, cache.StatusFulfilled, entry.Status)
}

func TestRecordContributionMarksDonationStale(t *testing.T) {
	f := newFixture(t, "token-u")
	f.store.Seed(relief.TableDonations, map[string]any{"id": 5, "name": "Clean water", "goal": 100})

	_, err := f.portal.Donation(context.Background(), "5")
	require.NoError(t, err)

	_, err = f.portal.RecordContribution(context.Background(), user.ContributionInput{DonationID: "5", Amount: 20})
	require.NoError(t, err)

	entry, ok := f.cache.Peek(entityKey(entityDonation, "5"))
	require.True(t, ok)
	assert.Equal(t, cache.StatusEmpty, entry.Status)
	assert.True(t, entry.HasData)
}

func TestRecordContributionMarksCampaignRelationsStale(t *testing.T) {
	f := newFixture(t, "token-u")
	f.store.Seed(relief.TableDonations, map[string]any{"id": 5, "name": "Clean water", "goal": 100})
	f.store.Seed(relief.DisasterDonations.Table, map[string]any{"disaster_id": 7, "donation_id": 5})
	f.store.Seed(relief.TableSponsors, map[string]any{"id": 1, "name": "Acme"})
	f.cache.Set(cache.NewKey("disasters"), []relief.Disaster{})

	donations, err := f.portal.DisasterDonations(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, donations, 1)
	_, err = f.portal.Sponsor(context.Background(), "1")
	require.NoError(t, err)

	_, err = f.portal.RecordContribution(context.Background(), user.ContributionInput{DonationID: "5", Amount: 20})
	require.NoError(t, err)

	for _, key := range []cache.Key{entityKey(entityDisaster, "7", "donations"), entityKey(entitySponsor, "1")} {
		entry, ok := f.cache.Peek(key)
		require.True(t, ok, key.String())
		assert.Equal(t, cache.StatusEmpty, entry.Status, key.String())
		assert.True(t, entry.HasData, key.String())
	}

	list, ok := f.cache.Peek(cache.NewKey("disasters"))
	require.True(t, ok)
	assert.Equal(t, cache.StatusFulfilled, list.Status)
}

func TestProfileSubscriberReadsDuringSessionChanges(t *testing.T) {
	f := newFixture(t, "token-u")
	f.store.Seed(user.TableProfiles,
		map[string]any{"id": "u", "first_name": "Uma"},
		map[string]any{"id": "v", "first_name": "Vic"},
	)
	_, err := f.portal.Profile(context.Background())
	require.NoError(t, err)
	f.cache.Set(cache.UserKey("v", entityProfile), &user.Profile{ID: "v", FirstName: "stale"})

	reads := make(chan error, 4)
	readProfile := func(cache.Event) {
		_, err := f.portal.Profile(context.Background())
		reads <- err
	}
	defer f.cache.Subscribe(cache.UserKey("u", entityProfile), readProfile)()
	defer f.cache.Subscribe(cache.UserKey("v", entityProfile), readProfile)()

	done := make(chan error, 1)
	go func() {
		if err := f.session.Logout(context.Background()); err != nil {
			done <- err
			return
		}
		_, err := f.session.Login(context.Background(), "v@example.com", "pw")
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session change blocked on a profile subscriber")
	}

	assert.ErrorIs(t, <-reads, session.ErrNotAuthenticated)
	assert.NoError(t, <-reads)
}
