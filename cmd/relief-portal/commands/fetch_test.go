package commands

import (
	"context"
	"testing"

	"relief-portal-go/internal/cache"
	"relief-portal-go/internal/domain/relief"
	"relief-portal-go/internal/domain/user"
	"relief-portal-go/internal/portal"
	"relief-portal-go/internal/remote"
	"relief-portal-go/internal/remote/remotetest"
	"relief-portal-go/internal/session"
	"relief-portal-go/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noAuth struct{}

func (noAuth) SignIn(ctx context.Context, email, password string) (session.Credentials, error) {
	return session.Credentials{}, &session.Error{Message: "disabled"}
}

func (noAuth) SignUp(ctx context.Context, email, password, name string) (session.Credentials, error) {
	return session.Credentials{}, &session.Error{Message: "disabled"}
}

func (noAuth) SignOut(ctx context.Context, accessToken string) error {
	return nil
}

func (noAuth) User(ctx context.Context, accessToken string) (session.Identity, error) {
	return session.Identity{}, &session.Error{Message: "disabled"}
}

func newPortal(t *testing.T) (*portal.Portal, *remotetest.Store) {
	t.Helper()
	store := remotetest.NewStore()
	c := cache.New(cache.Options{}, logger.Nop())
	sessions := session.NewManager(noAuth{}, c, logger.Nop())
	require.NoError(t, sessions.Start(context.Background(), ""))
	reliefService := relief.NewService(store, remote.NewPublicStorage("https://example.supabase.co"), "assets")
	return portal.New(c, sessions, reliefService, user.NewService(store), logger.Nop()), store
}

func TestLookupListAndRecord(t *testing.T) {
	p, store := newPortal(t)
	store.Seed(relief.TableSponsors, map[string]any{"id": 3, "name": "Acme"})

	result, err := lookup(context.Background(), p, "Sponsors", "", "")
	require.NoError(t, err)
	assert.Len(t, result, 1)

	result, err = lookup(context.Background(), p, "sponsors", "3", "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", result.(*relief.Sponsor).Name)

	result, err = lookup(context.Background(), p, "sponsors", "3", "organizations")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestLookupRejectsBadArguments(t *testing.T) {
	p, _ := newPortal(t)

	_, err := lookup(context.Background(), p, "tents", "", "")
	assert.ErrorContains(t, err, "unknown resource")

	_, err = lookup(context.Background(), p, "profile", "1", "")
	assert.ErrorContains(t, err, "does not take an id")

	_, err = lookup(context.Background(), p, "donations", "", "sponsors")
	assert.ErrorContains(t, err, "needs an id")

	_, err = lookup(context.Background(), p, "donations", "5", "volunteers")
	assert.ErrorContains(t, err, "no relation")
}

func TestLookupUserResourceNeedsSession(t *testing.T) {
	p, _ := newPortal(t)

	_, err := lookup(context.Background(), p, "aid-requests", "", "")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}
