package server

// APIBasePath is where the versioned API is mounted. Clients use it as their base URL suffix.
const APIBasePath = "/api"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Session
	RouteAuthLogin    = APIBasePath + "/v1/auth/login"
	RouteAuthRegister = APIBasePath + "/v1/auth/register"
	RouteAuthRefresh  = APIBasePath + "/v1/auth/refresh"
	RouteAuthLogout   = APIBasePath + "/v1/auth/logout"

	// Auth Routes - Account
	RouteAuthMe             = APIBasePath + "/v1/auth/me"
	RouteAuthChangePassword = APIBasePath + "/v1/auth/change-password"
	RouteAuthVerifyEmail    = APIBasePath + "/v1/auth/verify-email"

	// Operational Routes
	RouteAuthHealth = APIBasePath + "/v1/auth/health"
	RouteMetrics    = "/metrics"

	// CORS preflight for everything under the API
	RouteAPIPrefix = APIBasePath + "/"
)
