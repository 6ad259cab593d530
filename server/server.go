package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/internal/config"
	"github.com/jrsteele09/churchai-session/token"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.Service
	tokens   *token.Manager
	repos    auth.Repos
	limiter  *ipRateLimiter
	metrics  *metrics
	schemas  requestSchemas
	registry *prometheus.Registry
	nowTime  func() time.Time
}

type Option func(*Server)

// WithNowTime sets the clock used for tokens, rate limiting and account timestamps
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithRegistry serves metrics from reg instead of a private registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

func New(cfg config.Config, repos auth.Repos, options ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s.tokens = token.New(
		token.NewHMACSigner(cfg.GetJWTSecret()),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()),
		token.WithNowFunc(s.nowTime),
	)

	authService, err := auth.NewService(repos, s.tokens, auth.WithNowTime(s.nowTime))
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to create auth service")
	}
	s.auth = authService

	s.limiter = newIPRateLimiter(rate.Limit(cfg.GetLoginRateLimit()), cfg.GetLoginBurst(), s.nowTime)

	if s.metrics, err = newMetrics(s.registry); err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to register metrics")
	}

	if s.schemas, err = compileSchemas(); err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to compile request schemas")
	}

	// Seed the super admin and the demo church
	if err := s.InitialiseSystem(); err != nil {
		return nil, errors.Wrap(err, "[server.New] failed to initialise the system")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

var methodColors = map[string]*color.Color{
	http.MethodGet:     color.New(color.FgGreen),
	http.MethodPost:    color.New(color.FgBlue),
	http.MethodPut:     color.New(color.FgCyan),
	http.MethodDelete:  color.New(color.FgYellow),
	http.MethodPatch:   color.New(color.FgMagenta),
	http.MethodOptions: color.New(color.FgHiBlack),
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		c, ok := methodColors[method]
		if !ok {
			c = color.New(color.FgHiBlack)
		}
		log.Info().Msgf("[%s] %s", c.Sprintf(" %-7s", method), path)
	}
}
