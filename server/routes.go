package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// SESSION
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware(s.RequireAuth())...))

	// ACCOUNT
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler("POST "+RouteAuthVerifyEmail, ChainMiddleware(s.VerifyEmailHandler(), s.APIMiddleware(s.RateLimitMiddleware)...))

	// OPERATIONS
	s.RegisterRouteHandler("GET "+RouteAuthHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(metricsHandler.ServeHTTP, s.RecoverMiddleware))

	// Preflight requests never reach a handler; CorsMiddleware answers them
	s.RegisterRouteHandler("OPTIONS "+RouteAPIPrefix, ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...))
}
