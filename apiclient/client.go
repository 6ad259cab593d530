// Package apiclient is the request pipeline every API call goes through. It attaches the stored
// bearer token and, when a request is rejected with 401, refreshes the access token once and resends.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 30 * time.Second

// Auth endpoints, relative to the base URL
const (
	LoginPath    = "/v1/auth/login"
	RegisterPath = "/v1/auth/register"
	RefreshPath  = "/v1/auth/refresh"
	LogoutPath   = "/v1/auth/logout"
	MePath       = "/v1/auth/me"
)

// maxAttempts is the first send plus the single resend after a refresh
const maxAttempts = 2

const refreshFlightKey = "refresh"

type Client struct {
	baseURL    string
	store      credentials.Store
	httpClient *http.Client
	timeout    time.Duration
	navigator  Navigator
	logger     zerolog.Logger

	refreshGroup singleflight.Group

	listenersLock      sync.RWMutex
	nextListenerID     int
	expiredListeners   map[int]func()
	refreshedListeners map[int]func(accessToken string)
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every request, including the refresh call
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithNavigator(navigator Navigator) Option {
	return func(c *Client) {
		c.navigator = navigator
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL string, store credentials.Store, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[apiclient.New] store is required")
	}

	c := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		store:              store,
		timeout:            DefaultTimeout,
		logger:             log.Logger,
		expiredListeners:   make(map[int]func()),
		refreshedListeners: make(map[int]func(string)),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

func (c *Client) Store() credentials.Store {
	return c.store
}

// OnSessionExpired registers fn to run when a failed refresh has cleared the stored credentials
func (c *Client) OnSessionExpired(fn func()) (remove func()) {
	c.listenersLock.Lock()
	defer c.listenersLock.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.expiredListeners[id] = fn
	return func() {
		c.listenersLock.Lock()
		defer c.listenersLock.Unlock()
		delete(c.expiredListeners, id)
	}
}

// OnTokenRefreshed registers fn to receive each new access token after it has been stored
func (c *Client) OnTokenRefreshed(fn func(accessToken string)) (remove func()) {
	c.listenersLock.Lock()
	defer c.listenersLock.Unlock()
	id := c.nextListenerID
	c.nextListenerID++
	c.refreshedListeners[id] = fn
	return func() {
		c.listenersLock.Lock()
		defer c.listenersLock.Unlock()
		delete(c.refreshedListeners, id)
	}
}

// Get sends a GET and decodes a successful JSON response into out (which may be nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Post sends body as JSON and decodes a successful JSON response into out (which may be nil)
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Do sends req with the stored bearer token. Non-2xx responses come back as *APIError.
// A 401 triggers one refresh and one resend, except on the login, register and refresh endpoints.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	bearer, _ := c.store.Get(credentials.KeyAccessToken)
	return c.send(ctx, req, bearer, 1)
}

func (c *Client) send(ctx context.Context, req Request, bearer string, attempt int) (*Response, error) {
	resp, err := c.roundTrip(ctx, req, bearer)
	if err != nil {
		return nil, err
	}
	if resp.ok() {
		return resp, nil
	}

	apiErr := newAPIError(resp)
	if resp.StatusCode != http.StatusUnauthorized || attempt >= maxAttempts || !refreshable(req.Path) {
		return nil, apiErr
	}

	newToken, err := c.refreshAfter(ctx, bearer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.send(ctx, req, newToken, attempt+1)
}

// Refresh exchanges the stored refresh token for a new access token. Concurrent callers share
// one refresh call. The shared call is not cancelled by any one caller; a caller whose ctx ends
// first gets ctx.Err(). A failed refresh clears the stored credentials and ends the session.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refreshAfter(ctx, "")
}

// refreshAfter refreshes unless the stored access token has already moved on from rejected
func (c *Client) refreshAfter(ctx context.Context, rejected string) (string, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		if rejected != "" {
			if current, ok := c.store.Get(credentials.KeyAccessToken); ok && current != "" && current != rejected {
				return current, nil
			}
		}
		return c.refresh(detached)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	refreshToken, ok := c.store.Get(credentials.KeyRefreshToken)
	if !ok || refreshToken == "" {
		c.expireSession(ErrNoRefreshToken)
		return "", joinSessionExpired(ErrNoRefreshToken)
	}

	accessToken, err := c.requestAccessToken(ctx, refreshToken)
	if err != nil {
		c.expireSession(err)
		return "", joinSessionExpired(err)
	}

	if err := c.store.Set(credentials.KeyAccessToken, accessToken); err != nil {
		return "", errors.Wrap(err, "[Client.refresh] store access token")
	}

	c.logger.Debug().Msg("access token refreshed")
	c.listenersLock.RLock()
	listeners := make([]func(string), 0, len(c.refreshedListeners))
	for _, fn := range c.refreshedListeners {
		listeners = append(listeners, fn)
	}
	c.listenersLock.RUnlock()
	for _, fn := range listeners {
		fn(accessToken)
	}
	return accessToken, nil
}

// requestAccessToken calls the refresh endpoint without a bearer header
func (c *Client) requestAccessToken(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.roundTrip(ctx, Request{
		Method: http.MethodPost,
		Path:   RefreshPath,
		Body:   map[string]string{"refresh_token": refreshToken},
	}, "")
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", newAPIError(resp)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh response carried no access_token")
	}
	return body.AccessToken, nil
}

// expireSession is the single automatic teardown: clear storage, tell listeners, send the user to login
func (c *Client) expireSession(cause error) {
	c.logger.Info().Err(cause).Msg("session expired")

	if err := credentials.ClearAll(c.store); err != nil {
		c.logger.Warn().Err(err).Msg("clearing credentials after failed refresh")
	}

	c.listenersLock.RLock()
	listeners := make([]func(), 0, len(c.expiredListeners))
	for _, fn := range c.expiredListeners {
		listeners = append(listeners, fn)
	}
	c.listenersLock.RUnlock()
	for _, fn := range listeners {
		fn()
	}

	if c.navigator != nil && !isLoginLocation(c.navigator.Location()) {
		c.navigator.Navigate(LoginLocation)
	}
}

func (c *Client) roundTrip(ctx context.Context, req Request, bearer string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error encoding request body")
		}
		body = bytes.NewReader(raw)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "error building request")
	}
	for name, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, context.Canceled
		}
		c.logger.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("request failed")
		return nil, &ConnectionError{Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       raw,
	}, nil
}

// refreshable excludes the endpoints whose 401 means bad credentials, not an expired token
func refreshable(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	switch path {
	case LoginPath, RegisterPath, RefreshPath:
		return false
	}
	return true
}

func joinSessionExpired(err error) error {
	return &sessionExpiredError{cause: err}
}

type sessionExpiredError struct {
	cause error
}

func (e *sessionExpiredError) Error() string {
	return ErrSessionExpired.Error() + ": " + e.cause.Error()
}

func (e *sessionExpiredError) Unwrap() []error {
	return []error{ErrSessionExpired, e.cause}
}
