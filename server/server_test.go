package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/authmodel"
	churchrepofakes "github.com/jrsteele09/churchai-session/churches/repofakes"
	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/jrsteele09/churchai-session/internal/config"
	"github.com/jrsteele09/churchai-session/server"
	"github.com/jrsteele09/churchai-session/session"
	"github.com/jrsteele09/churchai-session/users"
	fakeuserrepo "github.com/jrsteele09/churchai-session/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@churchai.app"
	adminPassword = "Admin12345"
	allowedOrigin = "https://app.churchai.org"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	server *httptest.Server
	clock  *clock
	repos  auth.Repos
}

func setup(t *testing.T, env map[string]string) *fixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("SYSTEM_ADMIN_EMAIL", adminEmail)
	t.Setenv("SYSTEM_ADMIN_PASSWORD", adminPassword)
	t.Setenv("DEMO_CHURCH_CODE", "CENTRAL01")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "720h")
	t.Setenv("RATE_LIMITING", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", allowedOrigin)
	for k, v := range env {
		t.Setenv(k, v)
	}

	f := &fixture{
		clock: &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		repos: auth.Repos{
			Users:    fakeuserrepo.NewFakeUserRepo(),
			Churches: churchrepofakes.NewFakeChurchRepo(),
		},
	}
	srv, err := server.New(config.New(), f.repos, server.WithNowTime(f.clock.Now))
	require.NoError(t, err)
	f.server = httptest.NewServer(srv)
	t.Cleanup(f.server.Close)
	return f
}

type sessionFixture struct {
	store     *credentials.MemoryStore
	navigator *apiclient.LocationNavigator
	client    *apiclient.Client
	manager   *session.Manager
}

func (f *fixture) newSession(t *testing.T) *sessionFixture {
	t.Helper()
	sf := &sessionFixture{
		store:     credentials.NewMemoryStore(),
		navigator: apiclient.NewLocationNavigator("/dashboard"),
	}
	var err error
	sf.client, err = apiclient.New(f.server.URL+server.APIBasePath, sf.store, apiclient.WithNavigator(sf.navigator), apiclient.WithTimeout(10*time.Second))
	require.NoError(t, err)
	sf.manager, err = session.New(sf.client)
	require.NoError(t, err)
	t.Cleanup(sf.manager.Close)
	return sf
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLoginAndMe(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)
	ctx := context.Background()

	require.NoError(t, sf.manager.Login(ctx, "ADMIN@churchai.app", adminPassword))
	state := sf.manager.State()
	require.True(t, state.IsAuthenticated())
	require.Equal(t, users.RoleSuperAdmin, state.User.Role)

	var profile users.Profile
	require.NoError(t, sf.client.Get(ctx, apiclient.MePath, &profile))
	require.Equal(t, adminEmail, profile.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)

	err := sf.manager.Login(context.Background(), adminEmail, "Incorrecta1")
	var sessErr *session.Error
	require.ErrorAs(t, err, &sessErr)
	require.Equal(t, http.StatusUnauthorized, sessErr.StatusCode)
	require.Equal(t, auth.DetailInvalidCredentials, sessErr.Message)
	require.Empty(t, sf.store.Snapshot())
	require.Empty(t, sf.navigator.History())
}

func TestRegister(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	member := authmodel.RegisterRequest{
		Email:                "ana@iglesia.org",
		Password:             "Secreta123",
		FirstName:            "Ana",
		LastName:             "López",
		RegistrationType:     users.RegistrationMember,
		ChurchInvitationCode: "central01",
	}

	t.Run("member joins the demo church and is signed in", func(t *testing.T) {
		sf := f.newSession(t)
		resp, err := sf.manager.Register(ctx, member)
		require.NoError(t, err)
		require.Equal(t, users.StatusPendingApproval, resp.Status)

		state := sf.manager.State()
		require.True(t, state.IsAuthenticated())
		require.Equal(t, "ana@iglesia.org", state.User.Email)
		require.Equal(t, users.StatusPendingApproval, state.User.Status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		sf := f.newSession(t)
		_, err := sf.manager.Register(ctx, member)
		var sessErr *session.Error
		require.ErrorAs(t, err, &sessErr)
		require.Equal(t, http.StatusBadRequest, sessErr.StatusCode)
		require.Equal(t, auth.DetailEmailTaken, sessErr.Message)
	})

	t.Run("unknown invitation code", func(t *testing.T) {
		sf := f.newSession(t)
		req := member
		req.Email = "juan@iglesia.org"
		req.ChurchInvitationCode = "NOEXISTE"
		_, err := sf.manager.Register(ctx, req)
		require.True(t, apiclient.IsStatus(err, http.StatusNotFound))
		require.Equal(t, auth.DetailInvalidChurchCode, apiclient.Message(err, ""))
	})
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)
	ctx := context.Background()
	require.NoError(t, sf.manager.Login(ctx, adminEmail, adminPassword))
	firstToken := sf.manager.State().AccessToken

	f.clock.Advance(20 * time.Minute)

	var profile users.Profile
	require.NoError(t, sf.client.Get(ctx, apiclient.MePath, &profile))
	require.Equal(t, adminEmail, profile.Email)

	state := sf.manager.State()
	require.True(t, state.IsAuthenticated())
	require.NotEqual(t, firstToken, state.AccessToken)
	stored, _ := sf.store.Get(credentials.KeyAccessToken)
	require.Equal(t, state.AccessToken, stored)
	require.Empty(t, sf.navigator.History())
}

func TestExpiredRefreshTokenEndsSession(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)
	ctx := context.Background()
	require.NoError(t, sf.manager.Login(ctx, adminEmail, adminPassword))

	f.clock.Advance(31 * 24 * time.Hour)

	err := sf.client.Get(ctx, apiclient.MePath, nil)
	require.ErrorIs(t, err, apiclient.ErrSessionExpired)
	require.Equal(t, auth.DetailInvalidRefreshToken, apiclient.Message(err, ""))

	require.False(t, sf.manager.State().IsAuthenticated())
	require.Empty(t, sf.store.Snapshot())
	require.Equal(t, []string{apiclient.LoginLocation}, sf.navigator.History())
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)
	ctx := context.Background()
	require.NoError(t, sf.manager.Login(ctx, adminEmail, adminPassword))
	revoked := sf.manager.State().AccessToken

	var msg authmodel.MessageResponse
	require.NoError(t, sf.client.Post(ctx, apiclient.LogoutPath, nil, &msg))
	require.True(t, msg.Success)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+server.RouteAuthMe, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+revoked)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	require.Equal(t, auth.DetailCredentialsNotVerified, decode[authmodel.ErrorResponse](t, resp).Detail)
}

func TestMe_WithoutBearer(t *testing.T) {
	f := setup(t, nil)
	resp, err := http.Get(f.server.URL + server.RouteAuthMe)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Not authenticated", decode[authmodel.ErrorResponse](t, resp).Detail)
}

func TestRequestValidation(t *testing.T) {
	f := setup(t, nil)

	tests := []struct {
		name     string
		path     string
		body     string
		wantLocs [][]string
		wantType string
	}{
		{
			name:     "missing login fields",
			path:     server.RouteAuthLogin,
			body:     `{}`,
			wantLocs: [][]string{{"body", "email"}, {"body", "password"}},
			wantType: "required",
		},
		{
			name:     "wrong type",
			path:     server.RouteAuthRefresh,
			body:     `{"refresh_token": 42}`,
			wantLocs: [][]string{{"body", "refresh_token"}},
			wantType: "invalid_type",
		},
		{
			name:     "nested validator field",
			path:     server.RouteAuthRegister,
			body:     `{"email": "pastor@iglesia.org", "password": "Secreta123", "first_name": "Luis", "last_name": "Pérez", "registration_type": "pastor_new_church", "pastor_info": {"denomination": "", "years_in_ministry": 5}}`,
			wantLocs: [][]string{{"body", "pastor_info", "denomination"}},
			wantType: "value_error",
		},
		{
			name:     "not json",
			path:     server.RouteAuthLogin,
			body:     `email=ana`,
			wantLocs: [][]string{{"body"}},
			wantType: "json_invalid",
		},
		{
			name:     "bad email from the validator",
			path:     server.RouteAuthRegister,
			body:     `{"email": "no-es-un-email", "password": "Secreta123", "first_name": "Ana", "last_name": "López", "registration_type": "member"}`,
			wantLocs: [][]string{{"body", "email"}},
			wantType: "value_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, tt.path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			body := decode[authmodel.ValidationErrorResponse](t, resp)
			var locs [][]string
			for _, d := range body.Detail {
				locs = append(locs, d.Loc)
				require.Equal(t, tt.wantType, d.Type)
				require.NotEmpty(t, d.Msg)
			}
			require.ElementsMatch(t, tt.wantLocs, locs)
		})
	}
}

func TestRateLimiting(t *testing.T) {
	f := setup(t, map[string]string{
		"RATE_LIMITING":    "true",
		"LOGIN_RATE_LIMIT": "0.01",
		"LOGIN_BURST":      "2",
	})
	body := `{"email": "nadie@iglesia.org", "password": "Secreta123"}`

	for i := 0; i < 2; i++ {
		resp := f.post(t, server.RouteAuthLogin, body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := f.post(t, server.RouteAuthLogin, body)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))

	// Refresh is not throttled
	resp = f.post(t, server.RouteAuthRefresh, `{"refresh_token": "x"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCors(t *testing.T) {
	f := setup(t, nil)

	t.Run("preflight for an allowed origin", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, f.server.URL+server.RouteAuthLogin, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", allowedOrigin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
		require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.server.URL+server.RouteAuthHealth, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://evil.example.org")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthAndMetrics(t *testing.T) {
	f := setup(t, nil)

	resp, err := http.Get(f.server.URL + server.RouteAuthHealth)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", decode[authmodel.HealthResponse](t, resp).Status)

	f.post(t, server.RouteAuthLogin, `{"email": "nadie@iglesia.org", "password": "Secreta123"}`)

	resp, err = http.Get(f.server.URL + server.RouteMetrics)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	metrics := string(raw)

	require.Contains(t, metrics, `churchai_auth_http_requests_total{route="GET /api/v1/auth/health",status="200"} 1`)
	require.Contains(t, metrics, `churchai_auth_http_requests_total{route="POST /api/v1/auth/login",status="401"} 1`)
	require.Contains(t, metrics, `churchai_auth_events_total{event="login_failed"} 1`)
	require.Contains(t, metrics, "go_goroutines")
}

func TestVerifyEmail(t *testing.T) {
	f := setup(t, nil)
	sf := f.newSession(t)
	_, err := sf.manager.Register(context.Background(), authmodel.RegisterRequest{
		Email:                "rut@iglesia.org",
		Password:             "Secreta123",
		FirstName:            "Rut",
		LastName:             "Moabita",
		RegistrationType:     users.RegistrationMember,
		ChurchInvitationCode: "central01",
	})
	require.NoError(t, err)

	registered, err := f.repos.Users.GetByEmail("rut@iglesia.org")
	require.NoError(t, err)
	require.False(t, registered.IsEmailVerified)
	verificationToken := registered.EmailVerificationToken
	require.NotEmpty(t, verificationToken)

	resp := f.post(t, server.RouteAuthVerifyEmail, `{"token":"otro-token"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, auth.DetailInvalidVerification, decode[authmodel.ErrorResponse](t, resp).Detail)

	resp = f.post(t, server.RouteAuthVerifyEmail, `{}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.post(t, server.RouteAuthVerifyEmail, `{"token":"`+verificationToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msg := decode[authmodel.MessageResponse](t, resp)
	require.True(t, msg.Success)
	require.Equal(t, "Email verificado exitosamente", msg.Message)

	stored, err := f.repos.Users.GetByEmail("rut@iglesia.org")
	require.NoError(t, err)
	require.True(t, stored.IsEmailVerified)
	require.Empty(t, stored.EmailVerificationToken)

	resp = f.post(t, server.RouteAuthVerifyEmail, `{"token":"`+verificationToken+`"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
