// Package session is the single authority on who is signed in. It keeps the in-memory session in
// step with the credential store and always writes the store before changing what it reports.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Manager struct {
	client *apiclient.Client
	store  credentials.Store
	logger zerolog.Logger

	stateLock sync.RWMutex
	state     State

	subsLock  sync.Mutex
	nextSubID int
	subs      map[int]func(State)

	removeListeners []func()
}

type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager over the client's credential store. The session starts empty and loading.
func New(client *apiclient.Client, options ...Option) (*Manager, error) {
	if client == nil {
		return nil, errors.New("[session.New] client is required")
	}

	m := &Manager{
		client: client,
		store:  client.Store(),
		logger: log.Logger,
		state:  State{IsLoading: true},
		subs:   make(map[int]func(State)),
	}

	for _, opt := range options {
		opt(m)
	}

	m.removeListeners = []func(){
		client.OnSessionExpired(m.clearMemory),
		client.OnTokenRefreshed(m.tokenRefreshed),
	}
	return m, nil
}

// Close detaches the manager from its client
func (m *Manager) Close() {
	for _, remove := range m.removeListeners {
		remove()
	}
	m.removeListeners = nil
}

func (m *Manager) State() State {
	m.stateLock.RLock()
	defer m.stateLock.RUnlock()
	return m.state.clone()
}

// Subscribe calls fn with the new state after every change
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.subsLock.Lock()
	defer m.subsLock.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	return func() {
		m.subsLock.Lock()
		defer m.subsLock.Unlock()
		delete(m.subs, id)
	}
}

// Hydrate restores a stored session and confirms it with the server. Meant to run once at start-up.
// A session the server rejects is torn down. Loading ends whatever the outcome.
func (m *Manager) Hydrate(ctx context.Context) error {
	defer m.apply(func(s *State) { s.IsLoading = false })

	token, hasToken := m.store.Get(credentials.KeyAccessToken)
	user, hasUser := credentials.GetUser(m.store)
	if !hasToken || token == "" || !hasUser {
		return nil
	}

	unvalidated := m.State()
	m.apply(func(s *State) {
		s.AccessToken = token
		s.User = user
	})

	var profile users.Profile
	if err := m.client.Get(ctx, apiclient.MePath, &profile); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The snapshot was never confirmed, so it must not go on reporting as signed in
			m.apply(func(s *State) {
				s.AccessToken = unvalidated.AccessToken
				s.User = unvalidated.User
			})
			return ctxErr
		}
		m.logger.Info().Err(err).Msg("stored session rejected")
		m.Logout()
		return newError("hydrate", err, msgHydrateFailed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := credentials.SetUser(m.store, profile); err != nil {
		m.logger.Warn().Err(err).Msg("persisting refreshed profile")
		return nil
	}
	m.apply(func(s *State) { s.User = &profile })
	return nil
}

// Login signs in. On any failure the store and the session are left exactly as they were.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	var resp authmodel.AuthResponse
	err := m.client.Post(ctx, apiclient.LoginPath, authmodel.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newError("login", err, msgLoginFailed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return &Error{Op: "login", Message: msgLoginFailed, Err: errors.New("login response carried no access_token")}
	}

	userJSON, err := marshalProfile(resp.User)
	if err != nil {
		return &Error{Op: "login", Message: msgLoginFailed, Err: err}
	}
	if err := m.writeStore([]entry{
		{key: credentials.KeyAccessToken, value: resp.AccessToken},
		{key: credentials.KeyRefreshToken, value: resp.RefreshToken},
		{key: credentials.KeyUser, value: userJSON},
	}); err != nil {
		return &Error{Op: "login", Message: msgStorageFailed, Err: err}
	}

	user := resp.User
	m.apply(func(s *State) {
		s.AccessToken = resp.AccessToken
		s.User = &user
	})
	m.logger.Info().Str("user_id", user.ID).Msg("signed in")
	return nil
}

// Register creates an account. When the server grants a session straight away the tokens are
// stored, the profile fetched and the session started; otherwise the session is untouched and
// the response tells the caller what happens next.
func (m *Manager) Register(ctx context.Context, req authmodel.RegisterRequest) (*authmodel.RegisterResponse, error) {
	var resp authmodel.RegisterResponse
	if err := m.client.Post(ctx, apiclient.RegisterPath, req, &resp); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError("register", err, msgRegisterFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		return &resp, nil
	}

	previous := m.snapshotStore()
	// A refresh token left over from another account must not survive next to the new access token
	tokens := []entry{
		{key: credentials.KeyAccessToken, value: *resp.AccessToken},
		{key: credentials.KeyRefreshToken, remove: true},
	}
	if resp.RefreshToken != nil && *resp.RefreshToken != "" {
		tokens[1] = entry{key: credentials.KeyRefreshToken, value: *resp.RefreshToken}
	}
	if err := m.writeStore(tokens); err != nil {
		return nil, &Error{Op: "register", Message: msgStorageFailed, Err: err}
	}

	var profile users.Profile
	err := m.client.Get(ctx, apiclient.MePath, &profile)
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		err = credentials.SetUser(m.store, profile)
	}
	if err != nil {
		// An expired session has already been torn down; anything else puts the old values back
		if !errors.Is(err, apiclient.ErrSessionExpired) {
			m.restoreStore(previous)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError("register", err, msgRegisterFailed)
	}

	m.apply(func(s *State) {
		s.AccessToken = *resp.AccessToken
		s.User = &profile
	})
	m.logger.Info().Str("user_id", profile.ID).Msg("registered and signed in")
	return &resp, nil
}

// Logout clears the store and the session. It never contacts the server and is safe to repeat.
func (m *Manager) Logout() {
	if err := credentials.ClearAll(m.store); err != nil {
		m.logger.Warn().Err(err).Msg("clearing credentials on logout")
	}
	m.clearMemory()
}

// UpdateUser replaces the stored and reported user snapshot
func (m *Manager) UpdateUser(profile users.Profile) error {
	if err := credentials.SetUser(m.store, profile); err != nil {
		return &Error{Op: "update_user", Message: msgStorageFailed, Err: err}
	}
	m.apply(func(s *State) { s.User = &profile })
	return nil
}

// RefreshToken obtains a new access token now. A failed refresh ends the session.
func (m *Manager) RefreshToken(ctx context.Context) error {
	if _, err := m.client.Refresh(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return newError("refresh", err, msgRefreshFailed)
	}
	return nil
}

// Resync reloads the session from the store, picking up changes made by another process.
// The state is settled afterwards, so IsLoading is false.
func (m *Manager) Resync() {
	token, hasToken := m.store.Get(credentials.KeyAccessToken)
	user, hasUser := credentials.GetUser(m.store)
	m.apply(func(s *State) {
		s.IsLoading = false
		if hasToken && token != "" && hasUser {
			s.AccessToken = token
			s.User = user
			return
		}
		s.AccessToken = ""
		s.User = nil
	})
}

func (m *Manager) clearMemory() {
	m.apply(func(s *State) {
		s.AccessToken = ""
		s.User = nil
	})
}

// tokenRefreshed follows a refresh the client has already stored
func (m *Manager) tokenRefreshed(accessToken string) {
	m.apply(func(s *State) {
		if s.AccessToken != "" {
			s.AccessToken = accessToken
		}
	})
}

func (m *Manager) apply(mutate func(s *State)) {
	m.stateLock.Lock()
	before := m.state
	mutate(&m.state)
	changed := before != m.state
	current := m.state.clone()
	m.stateLock.Unlock()

	if !changed {
		return
	}

	m.subsLock.Lock()
	subs := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subsLock.Unlock()

	for _, fn := range subs {
		fn(current.clone())
	}
}
