package session

import "context"

// Provider is the remote identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Credentials, error)
	SignUp(ctx context.Context, email, password, name string) (Credentials, error)
	SignOut(ctx context.Context, accessToken string) error
	User(ctx context.Context, accessToken string) (Identity, error)
}
