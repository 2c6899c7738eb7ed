package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"relief-portal-go/internal/session"
	"relief-portal-go/pkg/logger"
)

// Auth is the GoTrue password flow of a Supabase project.
type Auth struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
	now     func() time.Time
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`

	// Sign up without a session returns the bare user object.
	userResponse
}

func NewAuth(opts Options, log logger.Logger) *Auth {
	if log == nil {
		log = logger.Nop()
	}
	return &Auth{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		client:  httpClient(opts),
		log:     log.With("component", "auth"),
		now:     time.Now,
	}
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (session.Credentials, error) {
	payload := map[string]string{"email": email, "password": password}

	var resp sessionResponse
	if err := a.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", payload, &resp); err != nil {
		return session.Credentials{}, err
	}
	return a.credentials(resp), nil
}

func (a *Auth) SignUp(ctx context.Context, email, password, name string) (session.Credentials, error) {
	payload := map[string]interface{}{"email": email, "password": password}
	if name != "" {
		payload["data"] = map[string]string{"name": name}
	}

	var resp sessionResponse
	if err := a.call(ctx, http.MethodPost, "/auth/v1/signup", "", payload, &resp); err != nil {
		return session.Credentials{}, err
	}
	return a.credentials(resp), nil
}

func (a *Auth) SignOut(ctx context.Context, accessToken string) error {
	return a.call(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

// User resolves the identity behind an access token.
func (a *Auth) User(ctx context.Context, accessToken string) (session.Identity, error) {
	var payload userResponse
	if err := a.call(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &payload); err != nil {
		return session.Identity{}, err
	}

	identity := identityFrom(payload)
	if identity.ID == "" {
		return session.Identity{}, &session.Error{Message: "user response carried no id", Status: http.StatusOK}
	}
	return identity, nil
}

func (a *Auth) credentials(resp sessionResponse) session.Credentials {
	user := resp.userResponse
	if resp.User != nil {
		user = *resp.User
	}

	creds := session.Credentials{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		Identity:     identityFrom(user),
	}
	switch {
	case resp.ExpiresAt > 0:
		creds.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		creds.ExpiresAt = a.now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	return creds
}

func (a *Auth) call(ctx context.Context, method, path, token string, payload, dest interface{}) error {
	if a.baseURL == "" || a.apiKey == "" {
		return ErrNotConfigured
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("auth: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("apikey", a.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		status, _, message := decodeError(resp)
		a.log.Debug("auth: request rejected", "path", path, "status", status)
		return &session.Error{Message: message, Status: status}
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("auth: decode response: %w", err)
	}
	return nil
}

func identityFrom(payload userResponse) session.Identity {
	return session.Identity{
		ID:        firstNonEmpty(payload.ID, payload.Sub, payload.User.ID, payload.User.Sub),
		Email:     payload.Email,
		Name:      firstNonEmpty(stringFromMap(payload.UserMetadata, "name"), stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(payload.UserMetadata, "avatar_url"),
	}
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, ok := value.(string)
	if !ok {
		return ""
	}
	return parsed
}
