package session

import "time"

type State int

const (
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Credentials is what the auth provider hands back after a sign in. An
// empty AccessToken means the account exists but has no session yet.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Identity     Identity
}

type Transition struct {
	From     State
	To       State
	Previous Identity
	Current  Identity
}

type SignupResult struct {
	Identity            Identity
	PendingConfirmation bool
}
