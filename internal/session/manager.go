package session

import (
	"context"
	"strings"
	"sync"

	"relief-portal-go/internal/cache"
	"relief-portal-go/pkg/logger"
)

// Cache is the part of the query cache a session transition touches.
type Cache interface {
	InvalidateDeferred(prefix cache.Key) (int, *cache.Notifications)
	RemoveDeferred(prefix cache.Key) (int, *cache.Notifications)
}

// Manager owns the current identity. Transitions are serialized; while one
// is applied no user-scoped read can run, so a read never sees the old
// user's cache with the new user's identity or the reverse.
type Manager struct {
	provider Provider
	cache    Cache
	log      logger.Logger

	transition sync.Mutex
	gate       sync.RWMutex

	mu       sync.Mutex
	state    State
	identity Identity
	token    string
	started  bool
	ready    chan struct{}

	subMu   sync.Mutex
	subs    map[int]func(Transition)
	nextSub int
}

func NewManager(provider Provider, c Cache, log logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		provider: provider,
		cache:    c,
		log:      log.With("component", "session"),
		state:    StateInitializing,
		ready:    make(chan struct{}),
		subs:     make(map[int]func(Transition)),
	}
}

// Start resolves the initial state. A non-empty token is checked with the
// provider; any failure there leaves the session anonymous.
func (m *Manager) Start(ctx context.Context, token string) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	resolved := m.state != StateInitializing
	m.mu.Unlock()
	if resolved {
		return nil
	}

	token = strings.TrimSpace(token)
	if token == "" {
		m.apply(StateAnonymous, Identity{}, "")
		return nil
	}

	identity, err := m.provider.User(ctx, token)
	if err != nil {
		m.log.Warn("session: restore failed", "error", err)
		m.apply(StateAnonymous, Identity{}, "")
		return nil
	}
	m.apply(StateAuthenticated, identity, token)
	return nil
}

// Wait blocks until the initial state is known.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Ready() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Identity() (Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity, m.state == StateAuthenticated
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// WithIdentity runs fn as the current user. No transition is applied until
// fn returns.
func (m *Manager) WithIdentity(ctx context.Context, fn func(Identity) error) error {
	if err := m.Wait(ctx); err != nil {
		return err
	}

	m.gate.RLock()
	defer m.gate.RUnlock()

	identity, ok := m.Identity()
	if !ok {
		return ErrNotAuthenticated
	}
	return fn(identity)
}

func (m *Manager) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Identity{}, &Error{Message: ErrEmailRequired.Error(), Status: 400, Err: ErrEmailRequired}
	}
	if password == "" {
		return Identity{}, &Error{Message: ErrPasswordRequired.Error(), Status: 400, Err: ErrPasswordRequired}
	}

	m.transition.Lock()
	defer m.transition.Unlock()

	creds, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, asSessionError(err)
	}
	if creds.AccessToken == "" || creds.Identity.ID == "" {
		return Identity{}, &Error{Message: "sign in returned no session"}
	}

	m.apply(StateAuthenticated, creds.Identity, creds.AccessToken)
	m.log.Info("session: signed in", "user_id", creds.Identity.ID)
	return creds.Identity, nil
}

// Signup registers a new account. When the provider requires email
// confirmation no session is issued and the state does not change.
func (m *Manager) Signup(ctx context.Context, email, password, name string) (SignupResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return SignupResult{}, &Error{Message: ErrEmailRequired.Error(), Status: 400, Err: ErrEmailRequired}
	}
	if password == "" {
		return SignupResult{}, &Error{Message: ErrPasswordRequired.Error(), Status: 400, Err: ErrPasswordRequired}
	}

	m.transition.Lock()
	defer m.transition.Unlock()

	creds, err := m.provider.SignUp(ctx, email, password, strings.TrimSpace(name))
	if err != nil {
		return SignupResult{}, asSessionError(err)
	}
	if creds.AccessToken == "" {
		m.log.Info("session: signup pending confirmation", "email", email)
		return SignupResult{Identity: creds.Identity, PendingConfirmation: true}, nil
	}

	m.apply(StateAuthenticated, creds.Identity, creds.AccessToken)
	m.log.Info("session: signed up", "user_id", creds.Identity.ID)
	return SignupResult{Identity: creds.Identity}, nil
}

// Logout always ends the local session. A provider failure is logged only.
func (m *Manager) Logout(ctx context.Context) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	m.mu.Lock()
	state, token := m.state, m.token
	m.mu.Unlock()
	if state == StateAnonymous {
		return nil
	}

	if token != "" {
		if err := m.provider.SignOut(ctx, token); err != nil {
			m.log.Warn("session: remote sign out failed", "error", err)
		}
	}
	m.apply(StateAnonymous, Identity{}, "")
	return nil
}

// HandleSessionChanged re-evaluates the session after an external change,
// such as a token refresh or a sign out in another client.
func (m *Manager) HandleSessionChanged(ctx context.Context, token string) error {
	m.transition.Lock()
	defer m.transition.Unlock()

	token = strings.TrimSpace(token)
	if token == "" {
		m.apply(StateAnonymous, Identity{}, "")
		return nil
	}

	identity, err := m.provider.User(ctx, token)
	if err != nil {
		m.log.Warn("session: external session rejected", "error", err)
		m.apply(StateAnonymous, Identity{}, "")
		return err
	}
	m.apply(StateAuthenticated, identity, token)
	return nil
}

// Subscribe registers fn for every state or identity change.
func (m *Manager) Subscribe(fn func(Transition)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// apply must be called with m.transition held. The departing user's entries
// are removed before the new state is published; the arriving user's
// entries are marked stale. Cache subscribers hear about both only after the
// gate is released, so they can read through WithIdentity.
func (m *Manager) apply(to State, identity Identity, token string) {
	var removed, invalidated *cache.Notifications

	m.gate.Lock()

	m.mu.Lock()
	from, previous := m.state, m.identity
	m.mu.Unlock()

	sameUser := from == StateAuthenticated && to == StateAuthenticated && previous.ID == identity.ID
	if from == StateAuthenticated && !sameUser && m.cache != nil {
		var count int
		count, removed = m.cache.RemoveDeferred(cache.UserScope(previous.ID))
		m.log.Debug("session: evicted user entries", "user_id", previous.ID, "entries", count)
	}

	m.mu.Lock()
	m.state = to
	m.identity = identity
	m.token = token
	m.mu.Unlock()

	if to == StateAuthenticated && !sameUser && m.cache != nil {
		_, invalidated = m.cache.InvalidateDeferred(cache.UserScope(identity.ID))
	}

	m.gate.Unlock()

	if from == StateInitializing {
		close(m.ready)
	}
	removed.Deliver()
	invalidated.Deliver()

	if from == to && previous == identity {
		return
	}
	m.notify(Transition{From: from, To: to, Previous: previous, Current: identity})
}

func (m *Manager) notify(t Transition) {
	m.subMu.Lock()
	subscribers := make([]func(Transition), 0, len(m.subs))
	for _, fn := range m.subs {
		subscribers = append(subscribers, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subscribers {
		fn(t)
	}
}
